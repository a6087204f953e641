package server

import (
	"strings"

	"github.com/irccd/irccd/internal/event"
	"github.com/irccd/irccd/internal/irc"
)

func (s *Server) onWelcome(line irc.Line) {
	nick := firstParam(line.Params)
	s.mu.Lock()
	if nick != "" {
		s.currentNick = nick
	}
	s.reconnectLeft = s.cfg.ReconnectTries
	s.mu.Unlock()
	s.setState(Connected)
	s.emit(event.NewConnect(s.cfg.Name))

	for _, ch := range s.cfg.Channels {
		if ch.Key != "" {
			s.rawf("JOIN %s %s", ch.Name, ch.Key)
		} else {
			s.rawf("JOIN %s", ch.Name)
		}
	}
}

func (s *Server) onPrivmsgOrNotice(line irc.Line, isNotice bool) {
	if len(line.Params) < 2 {
		return
	}
	origin := irc.SplitHostmask(line.Prefix).Nick
	target := line.Params[0]
	text := line.Params[1]

	if payload, ok := irc.IsCTCP(text); ok {
		verb, rest := irc.CTCPCommand(payload)
		switch verb {
		case "ACTION":
			channel := s.messageChannel(target, origin)
			s.emit(event.NewMe(s.cfg.Name, origin, channel, rest))
		case "VERSION":
			if s.cfg.CTCPVersion != "" {
				s.rawf("NOTICE %s :\x01VERSION %s\x01", origin, s.cfg.CTCPVersion)
			}
		case "SOURCE":
			if s.cfg.CTCPSource != "" {
				s.rawf("NOTICE %s :\x01SOURCE %s\x01", origin, s.cfg.CTCPSource)
			}
		}
		return
	}

	channel := s.messageChannel(target, origin)
	if isNotice {
		s.emit(event.NewNotice(s.cfg.Name, origin, channel, text))
		return
	}
	s.emit(event.NewMessage(s.cfg.Name, origin, channel, text))
}

// messageChannel projects a PRIVMSG/NOTICE target to the channel the
// rule engine matches against: the channel itself, or the sender's
// nick for a private query (spec.md's onMessage Channel()==Origin()
// resolution for queries).
func (s *Server) messageChannel(target, origin string) string {
	if irc.IsChannel(target, "#&") {
		return target
	}
	return origin
}

func (s *Server) onJoin(line irc.Line) {
	if len(line.Params) < 1 {
		return
	}
	origin := irc.SplitHostmask(line.Prefix).Nick
	chanName := line.Params[0]

	s.mu.Lock()
	c := s.channel(chanName)
	if irc.EqualFold(origin, s.currentNick) {
		c.Joined = true
	} else {
		c.addMember(origin, nil)
	}
	s.mu.Unlock()

	s.emit(event.NewJoin(s.cfg.Name, origin, chanName))
}

func (s *Server) onPart(line irc.Line) {
	if len(line.Params) < 1 {
		return
	}
	origin := irc.SplitHostmask(line.Prefix).Nick
	chanName := line.Params[0]
	reason := ""
	if len(line.Params) > 1 {
		reason = line.Params[1]
	}

	s.mu.Lock()
	key := strings.ToLower(chanName)
	if irc.EqualFold(origin, s.currentNick) {
		delete(s.channels, key)
	} else if c, ok := s.channels[key]; ok {
		c.removeMember(origin)
	}
	s.mu.Unlock()

	s.emit(event.NewPart(s.cfg.Name, origin, chanName, reason))
}

func (s *Server) onKick(line irc.Line) {
	if len(line.Params) < 2 {
		return
	}
	origin := irc.SplitHostmask(line.Prefix).Nick
	chanName := line.Params[0]
	target := line.Params[1]
	reason := lastParam(line.Params[2:])

	s.mu.Lock()
	key := strings.ToLower(chanName)
	if irc.EqualFold(target, s.currentNick) {
		delete(s.channels, key)
	} else if c, ok := s.channels[key]; ok {
		c.removeMember(target)
	}
	s.mu.Unlock()

	s.emit(event.NewKick(s.cfg.Name, origin, chanName, target, reason))
}

func (s *Server) onQuit(line irc.Line) {
	origin := irc.SplitHostmask(line.Prefix).Nick
	s.mu.Lock()
	for _, c := range s.channels {
		c.removeMember(origin)
	}
	s.mu.Unlock()
}

func (s *Server) onNick(line irc.Line) {
	if len(line.Params) < 1 {
		return
	}
	origin := irc.SplitHostmask(line.Prefix).Nick
	newNick := line.Params[0]

	s.mu.Lock()
	if irc.EqualFold(origin, s.currentNick) {
		s.currentNick = newNick
	}
	for _, c := range s.channels {
		c.renameMember(origin, newNick)
	}
	s.mu.Unlock()

	s.emit(event.NewNick(s.cfg.Name, origin, newNick))
}

func (s *Server) onTopic(line irc.Line) {
	if len(line.Params) < 2 {
		return
	}
	origin := irc.SplitHostmask(line.Prefix).Nick
	chanName := line.Params[0]
	text := line.Params[1]

	s.mu.Lock()
	s.channel(chanName).Topic = text
	s.mu.Unlock()

	s.emit(event.NewTopic(s.cfg.Name, origin, chanName, text))
}

func (s *Server) onMode(line irc.Line) {
	if len(line.Params) < 2 {
		return
	}
	origin := irc.SplitHostmask(line.Prefix).Nick
	target := line.Params[0]
	modeString := line.Params[1]
	args := line.Params[2:]

	if irc.IsChannel(target, "#&") {
		s.mu.Lock()
		c := s.channel(target)
		user, mask, limit := s.applyChannelModes(c, modeString, args)
		s.mu.Unlock()

		s.emit(event.NewMode(s.cfg.Name, origin, target, modeString, limit, user, mask))
		return
	}

	s.emit(event.NewMode(s.cfg.Name, origin, "", modeString, "", target, ""))
}

// applyChannelModes folds a MODE change into a channel's member ranks.
// Membership-rank letters known to s.prefixes consume a nick argument
// and update that member; b/e/I consume a mask, +l a limit and k a
// key. Every non-rank letter is added to or removed from Channel.Modes,
// matching the teacher's shallow MODE tracking generalized to the full
// prefix table.
func (s *Server) applyChannelModes(c *Channel, modeString string, args []string) (user, mask, limit string) {
	add := true
	argi := 0
	nextArg := func() string {
		if argi < len(args) {
			v := args[argi]
			argi++
			return v
		}
		return ""
	}

	for i := 0; i < len(modeString); i++ {
		ch := modeString[i]
		switch ch {
		case '+':
			add = true
		case '-':
			add = false
		default:
			if s.prefixes.Rank(ch) >= 0 {
				nick := nextArg()
				user = nick
				m, ok := c.Members[strings.ToLower(nick)]
				if !ok {
					break
				}
				if add {
					m.Modes = appendMode(m.Modes, ch)
				} else {
					m.Modes = removeMode(m.Modes, ch)
				}
				continue
			}
			switch ch {
			case 'b', 'e', 'I':
				mask = nextArg()
			case 'l':
				if add {
					limit = nextArg()
				}
			case 'k':
				nextArg()
			}
			modesBytes := []byte(c.Modes)
			if add {
				modesBytes = appendMode(modesBytes, ch)
			} else {
				modesBytes = removeMode(modesBytes, ch)
			}
			c.Modes = string(modesBytes)
		}
	}
	return user, mask, limit
}

func appendMode(modes []byte, m byte) []byte {
	for _, x := range modes {
		if x == m {
			return modes
		}
	}
	return append(modes, m)
}

func removeMode(modes []byte, m byte) []byte {
	out := modes[:0]
	for _, x := range modes {
		if x != m {
			out = append(out, x)
		}
	}
	return out
}

func (s *Server) onInvite(line irc.Line) {
	if len(line.Params) < 2 {
		return
	}
	origin := irc.SplitHostmask(line.Prefix).Nick
	target := line.Params[0]
	chanName := line.Params[1]

	if irc.EqualFold(target, s.currentNick) && s.cfg.JoinInvite {
		s.rawf("JOIN %s", chanName)
	}

	s.emit(event.NewInvite(s.cfg.Name, origin, chanName, target))
}

func (s *Server) onISupport(line irc.Line) {
	for _, p := range line.Params {
		if !strings.HasPrefix(p, "PREFIX=") {
			continue
		}
		if t, ok := irc.ParsePrefixToken(strings.TrimPrefix(p, "PREFIX=")); ok {
			s.mu.Lock()
			s.prefixes = t
			s.mu.Unlock()
		}
	}
}

func (s *Server) onNamesReply(line irc.Line) {
	if len(line.Params) < 3 {
		return
	}
	chanName := line.Params[len(line.Params)-2]
	namesField := line.Params[len(line.Params)-1]

	s.mu.Lock()
	c := s.channel(chanName)
	for _, tok := range strings.Fields(namesField) {
		bare, modes := s.prefixes.SplitSymbols(tok)
		c.addMember(bare, modes)
	}
	s.mu.Unlock()
}

func (s *Server) onNamesEnd(line irc.Line) {
	if len(line.Params) < 2 {
		return
	}
	chanName := line.Params[len(line.Params)-2]

	s.mu.RLock()
	c, ok := s.channels[strings.ToLower(chanName)]
	var nicks []string
	if ok {
		nicks = make([]string, 0, len(c.Members))
		for _, m := range c.Members {
			nicks = append(nicks, m.Nick)
		}
	}
	s.mu.RUnlock()

	s.emit(event.NewNames(s.cfg.Name, chanName, nicks))
}

func (s *Server) onWhoisUser(line irc.Line) {
	if len(line.Params) < 6 {
		return
	}
	nick := line.Params[1]
	s.mu.Lock()
	b, ok := s.whois[strings.ToLower(nick)]
	if !ok {
		b = &whoisBuilder{nick: nick}
		s.whois[strings.ToLower(nick)] = b
	}
	b.user = line.Params[2]
	b.host = line.Params[3]
	b.realname = line.Params[5]
	s.mu.Unlock()
}

func (s *Server) onWhoisChannels(line irc.Line) {
	if len(line.Params) < 3 {
		return
	}
	nick := line.Params[1]
	s.mu.Lock()
	b, ok := s.whois[strings.ToLower(nick)]
	if ok {
		b.channels = append(b.channels, strings.Fields(line.Params[2])...)
	}
	s.mu.Unlock()
}

func (s *Server) onWhoisEnd(line irc.Line) {
	if len(line.Params) < 2 {
		return
	}
	nick := line.Params[1]
	key := strings.ToLower(nick)

	s.mu.Lock()
	b, ok := s.whois[key]
	delete(s.whois, key)
	s.mu.Unlock()

	if !ok {
		return
	}
	s.emit(event.NewWhois(s.cfg.Name, b.nick, b.user, b.host, b.realname, b.channels))
}
