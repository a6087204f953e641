package server

import "fmt"

// The methods below are the outbound half of a server's capability
// surface: every action a plugin, rule hook or transport command can
// ask a connected server to perform (spec.md §4.4).

// Message sends a PRIVMSG to a channel or nick.
func (s *Server) Message(target, text string) {
	s.rawf("PRIVMSG %s :%s", target, text)
}

// Me sends a CTCP ACTION to a channel or nick.
func (s *Server) Me(target, text string) {
	s.rawf("PRIVMSG %s :\x01ACTION %s\x01", target, text)
}

// Notice sends a NOTICE to a channel or nick.
func (s *Server) Notice(target, text string) {
	s.rawf("NOTICE %s :%s", target, text)
}

// Join joins a channel, optionally keyed.
func (s *Server) Join(channel, key string) {
	if key != "" {
		s.rawf("JOIN %s %s", channel, key)
		return
	}
	s.rawf("JOIN %s", channel)
}

// Part leaves a channel with an optional reason.
func (s *Server) Part(channel, reason string) {
	if reason != "" {
		s.rawf("PART %s :%s", channel, reason)
		return
	}
	s.rawf("PART %s", channel)
}

// Kick removes a member from a channel with an optional reason.
func (s *Server) Kick(channel, target, reason string) {
	if reason != "" {
		s.rawf("KICK %s %s :%s", channel, target, reason)
		return
	}
	s.rawf("KICK %s %s", channel, target)
}

// Invite invites a nick to a channel.
func (s *Server) Invite(channel, target string) {
	s.rawf("INVITE %s %s", target, channel)
}

// Mode applies a channel or user mode change, with optional arguments.
func (s *Server) Mode(target, modes string, args ...string) {
	if len(args) == 0 {
		s.rawf("MODE %s %s", target, modes)
		return
	}
	line := fmt.Sprintf("MODE %s %s", target, modes)
	for _, a := range args {
		line += " " + a
	}
	s.Enqueue(line)
}

// Nick requests a nickname change.
func (s *Server) Nick(nick string) {
	s.rawf("NICK %s", nick)
}

// Topic sets (or, with an empty text, queries) a channel's topic.
func (s *Server) Topic(channel, text string) {
	if text == "" {
		s.rawf("TOPIC %s", channel)
		return
	}
	s.rawf("TOPIC %s :%s", channel, text)
}

// Whois requests WHOIS information for a nick; the reply surfaces
// asynchronously as an onWhois event once 318 closes the sequence.
func (s *Server) Whois(nick string) {
	s.rawf("WHOIS %s", nick)
}

// Names requests a NAMES listing for a channel; the reply surfaces
// asynchronously as an onNames event once 366 closes the sequence.
func (s *Server) Names(channel string) {
	s.rawf("NAMES %s", channel)
}

// Raw enqueues a raw protocol line verbatim.
func (s *Server) Raw(line string) {
	s.Enqueue(line)
}
