// Package event defines the canonical event variants synthesized by
// the server subsystem and dispatched by the bot to plugins, rules,
// hooks and transport subscribers.
package event

// Canonical event names, as used by the rule engine and plugin
// dispatch (spec.md §3.2).
const (
	OnCommand    = "onCommand"
	OnConnect    = "onConnect"
	OnDisconnect = "onDisconnect"
	OnInvite     = "onInvite"
	OnJoin       = "onJoin"
	OnKick       = "onKick"
	OnMe         = "onMe"
	OnMessage    = "onMessage"
	OnMode       = "onMode"
	OnNames      = "onNames"
	OnNick       = "onNick"
	OnNotice     = "onNotice"
	OnPart       = "onPart"
	OnTopic      = "onTopic"
	OnWhois      = "onWhois"
)

// ValidNames lists every valid event name, used by the rule engine to
// reject unknown names at construction and edit time.
var ValidNames = map[string]bool{
	OnCommand: true, OnConnect: true, OnDisconnect: true, OnInvite: true,
	OnJoin: true, OnKick: true, OnMe: true, OnMessage: true, OnMode: true,
	OnNames: true, OnNick: true, OnNotice: true, OnPart: true, OnTopic: true,
	OnWhois: true,
}

// Event is the common surface every canonical variant satisfies: its
// own name, the server it originated on, and the (channel, origin)
// pair the rule engine matches against. Variants with no notion of
// channel/origin (onConnect, onDisconnect, onNames, onWhois) return
// empty strings for the side that doesn't apply.
type Event interface {
	Name() string
	Server() string
	Channel() string
	Origin() string
}

type base struct {
	ServerName string `json:"server"`
}

func (b base) Server() string { return b.ServerName }

// Connect is emitted once the server completes its handshake (001).
type Connect struct {
	base
}

func (Connect) Name() string    { return OnConnect }
func (Connect) Channel() string { return "" }
func (Connect) Origin() string  { return "" }

// Disconnect is emitted when a server connection is lost or closed.
type Disconnect struct {
	base
}

func (Disconnect) Name() string    { return OnDisconnect }
func (Disconnect) Channel() string { return "" }
func (Disconnect) Origin() string  { return "" }

// Invite is emitted when the bot is invited to a channel.
type Invite struct {
	base
	OriginNick string `json:"origin"`
	ChannelName string `json:"channel"`
	Target     string `json:"target"`
}

func (Invite) Name() string      { return OnInvite }
func (i Invite) Channel() string { return i.ChannelName }
func (i Invite) Origin() string  { return i.OriginNick }

// Join is emitted when someone joins a channel the bot is on.
type Join struct {
	base
	OriginNick  string `json:"origin"`
	ChannelName string `json:"channel"`
}

func (Join) Name() string      { return OnJoin }
func (j Join) Channel() string { return j.ChannelName }
func (j Join) Origin() string  { return j.OriginNick }

// Kick is emitted when someone is kicked from a channel.
type Kick struct {
	base
	OriginNick  string `json:"origin"`
	ChannelName string `json:"channel"`
	Target      string `json:"target"`
	Reason      string `json:"reason"`
}

func (Kick) Name() string      { return OnKick }
func (k Kick) Channel() string { return k.ChannelName }
func (k Kick) Origin() string  { return k.OriginNick }

// Message is a channel or private message (private messages are
// projected with Channel == Origin, per spec.md's Open Question
// resolution to collapse queries into onMessage/onCommand).
type Message struct {
	base
	OriginNick  string `json:"origin"`
	ChannelName string `json:"channel"`
	Text        string `json:"message"`
}

func (Message) Name() string      { return OnMessage }
func (m Message) Channel() string { return m.ChannelName }
func (m Message) Origin() string  { return m.OriginNick }

// Command is synthesized from a Message whose text begins with
// "<command-prefix><plugin-id>"; Text has that leading token
// stripped. It is derived per-plugin at dispatch time (spec.md §4.5),
// not by the server, so it is never broadcast on its own — the bot
// broadcasts the underlying Message and synthesizes Command only for
// the plugin whose id matched.
type Command struct {
	base
	OriginNick  string `json:"origin"`
	ChannelName string `json:"channel"`
	Text        string `json:"message"`
}

func (Command) Name() string      { return OnCommand }
func (c Command) Channel() string { return c.ChannelName }
func (c Command) Origin() string  { return c.OriginNick }

// Me is a CTCP ACTION ("/me waves").
type Me struct {
	base
	OriginNick  string `json:"origin"`
	ChannelName string `json:"channel"`
	Text        string `json:"message"`
}

func (Me) Name() string      { return OnMe }
func (m Me) Channel() string { return m.ChannelName }
func (m Me) Origin() string  { return m.OriginNick }

// Mode is emitted on a channel or user MODE change.
type Mode struct {
	base
	OriginNick  string `json:"origin"`
	ChannelName string `json:"channel"`
	ModeString  string `json:"mode"`
	Limit       string `json:"limit,omitempty"`
	User        string `json:"user,omitempty"`
	Mask        string `json:"mask,omitempty"`
}

func (Mode) Name() string      { return OnMode }
func (m Mode) Channel() string { return m.ChannelName }
func (m Mode) Origin() string  { return m.OriginNick }

// Names is emitted once a NAMES reply (353/366) finishes.
type Names struct {
	base
	ChannelName string   `json:"channel"`
	Nicknames   []string `json:"names"`
}

func (Names) Name() string      { return OnNames }
func (n Names) Channel() string { return n.ChannelName }
func (Names) Origin() string    { return "" }

// Nick is emitted when any known user (including the bot) changes
// nickname.
type Nick struct {
	base
	OriginNick string `json:"origin"`
	New        string `json:"nickname"`
}

func (Nick) Name() string   { return OnNick }
func (Nick) Channel() string { return "" }
func (n Nick) Origin() string { return n.OriginNick }

// Notice is a NOTICE message, channel or private.
type Notice struct {
	base
	OriginNick  string `json:"origin"`
	ChannelName string `json:"channel"`
	Text        string `json:"message"`
}

func (Notice) Name() string      { return OnNotice }
func (n Notice) Channel() string { return n.ChannelName }
func (n Notice) Origin() string  { return n.OriginNick }

// Part is emitted when someone leaves a channel.
type Part struct {
	base
	OriginNick  string `json:"origin"`
	ChannelName string `json:"channel"`
	Reason      string `json:"reason"`
}

func (Part) Name() string      { return OnPart }
func (p Part) Channel() string { return p.ChannelName }
func (p Part) Origin() string  { return p.OriginNick }

// Topic is emitted when a channel topic changes.
type Topic struct {
	base
	OriginNick  string `json:"origin"`
	ChannelName string `json:"channel"`
	Text        string `json:"topic"`
}

func (Topic) Name() string      { return OnTopic }
func (t Topic) Channel() string { return t.ChannelName }
func (t Topic) Origin() string  { return t.OriginNick }

// Whois aggregates a WHOIS reply sequence (311/319/318) into one
// event, per the supplemented feature recovered from the teacher's
// partial WHOIS tracking generalized to the full spec shape.
type Whois struct {
	base
	Nick     string   `json:"nick"`
	User     string   `json:"user"`
	Host     string   `json:"host"`
	RealName string   `json:"realname"`
	Channels []string `json:"channels"`
}

func (Whois) Name() string    { return OnWhois }
func (Whois) Channel() string { return "" }
func (Whois) Origin() string  { return "" }

func newBase(server string) base { return base{ServerName: server} }

// NewConnect builds an onConnect event for server.
func NewConnect(server string) Connect { return Connect{base: newBase(server)} }

// NewDisconnect builds an onDisconnect event for server.
func NewDisconnect(server string) Disconnect { return Disconnect{base: newBase(server)} }

// NewInvite builds an onInvite event.
func NewInvite(server, origin, channel, target string) Invite {
	return Invite{base: newBase(server), OriginNick: origin, ChannelName: channel, Target: target}
}

// NewJoin builds an onJoin event.
func NewJoin(server, origin, channel string) Join {
	return Join{base: newBase(server), OriginNick: origin, ChannelName: channel}
}

// NewKick builds an onKick event.
func NewKick(server, origin, channel, target, reason string) Kick {
	return Kick{base: newBase(server), OriginNick: origin, ChannelName: channel, Target: target, Reason: reason}
}

// NewMessage builds an onMessage event.
func NewMessage(server, origin, channel, text string) Message {
	return Message{base: newBase(server), OriginNick: origin, ChannelName: channel, Text: text}
}

// NewCommand builds an onCommand event derived from a Message.
func NewCommand(server, origin, channel, text string) Command {
	return Command{base: newBase(server), OriginNick: origin, ChannelName: channel, Text: text}
}

// NewMe builds an onMe (CTCP ACTION) event.
func NewMe(server, origin, channel, text string) Me {
	return Me{base: newBase(server), OriginNick: origin, ChannelName: channel, Text: text}
}

// NewMode builds an onMode event.
func NewMode(server, origin, channel, modeString, limit, user, mask string) Mode {
	return Mode{base: newBase(server), OriginNick: origin, ChannelName: channel, ModeString: modeString, Limit: limit, User: user, Mask: mask}
}

// NewNames builds an onNames event.
func NewNames(server, channel string, nicknames []string) Names {
	return Names{base: newBase(server), ChannelName: channel, Nicknames: nicknames}
}

// NewNick builds an onNick event.
func NewNick(server, origin, newNick string) Nick {
	return Nick{base: newBase(server), OriginNick: origin, New: newNick}
}

// NewNotice builds an onNotice event.
func NewNotice(server, origin, channel, text string) Notice {
	return Notice{base: newBase(server), OriginNick: origin, ChannelName: channel, Text: text}
}

// NewPart builds an onPart event.
func NewPart(server, origin, channel, reason string) Part {
	return Part{base: newBase(server), OriginNick: origin, ChannelName: channel, Reason: reason}
}

// NewTopic builds an onTopic event.
func NewTopic(server, origin, channel, text string) Topic {
	return Topic{base: newBase(server), OriginNick: origin, ChannelName: channel, Text: text}
}

// NewWhois builds an onWhois event aggregating a 311/319/318 sequence.
func NewWhois(server, nick, user, host, realname string, channels []string) Whois {
	return Whois{base: newBase(server), Nick: nick, User: user, Host: host, RealName: realname, Channels: channels}
}
