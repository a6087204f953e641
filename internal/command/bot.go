package command

import (
	"time"

	"github.com/irccd/irccd/internal/plugin"
	"github.com/irccd/irccd/internal/rule"
)

// ServerOps is the subset of a running server a command handler may
// drive or inspect: the plugin capability's action surface plus the
// read-only state fields server-info/server-list report.
type ServerOps interface {
	Name() string
	CurrentNick() string
	State() string
	Channels() map[string]ChannelView
	Message(target, text string)
	Me(target, text string)
	Notice(target, text string)
	Join(channel, key string)
	Part(channel, reason string)
	Kick(channel, target, reason string)
	Invite(channel, target string)
	Mode(target, modes string, args ...string)
	Nick(nick string)
	Topic(channel, text string)
}

// ChannelView is the read-only projection of server.Channel used by
// server-info/server-list responses.
type ChannelView struct {
	Name   string
	Joined bool
}

// ServerSpec carries the §6.1 server fields a server-connect request
// supplies.
type ServerSpec struct {
	Name           string
	Hostname       string
	Port           uint16
	IPv4, IPv6     bool
	SSL, SSLVerify bool
	Password       string
	Nickname       string
	Username       string
	Realname       string
	CTCPVersion    string
	CommandChar    string
	PingTimeout    time.Duration
	ReconnectTries int
	ReconnectDelay time.Duration
}

// Bot is the composition-root surface the command table drives. It is
// defined here (not imported from internal/bot) so internal/bot can
// depend on internal/command without a cycle.
type Bot interface {
	ConnectServer(spec ServerSpec) error
	DisconnectServer(name string) error // "" disconnects every server
	ReconnectServer(name string) error  // "" reconnects every server
	Server(name string) (ServerOps, bool)
	Servers() []ServerOps

	Rules() *rule.Engine

	PluginManager() *plugin.Manager
	LoadPlugin(id, path string) error
	ReloadPlugin(id string) error
	UnloadPlugin(id string) error
}
