// Package irc implements the wire codec shared by every server
// connection: parsing and serializing RFC-1459-style lines, splitting
// nick!user@host prefixes, and detecting CTCP payloads.
package irc

import (
	"strings"

	"github.com/ergochat/irc-go/ircmsg"
)

// Line is one parsed IRC protocol message.
type Line struct {
	Raw     ircmsg.Message
	Prefix  string
	Command string
	Params  []string
}

// ParseLine parses a single CRLF-stripped IRC line.
func ParseLine(raw string) (Line, error) {
	msg, err := ircmsg.ParseLine(raw)
	if err != nil {
		return Line{}, err
	}
	return Line{Raw: msg, Prefix: msg.Source, Command: msg.Command, Params: msg.Params}, nil
}

// Nick returns the nickname portion of the line's prefix, empty if the
// prefix isn't a nick!user@host form (e.g. a server-name prefix).
func (l Line) Nick() string {
	return l.Raw.Nick()
}

// Hostmask is the split form of a nick!user@host origin.
type Hostmask struct {
	Nick string
	User string
	Host string
}

// Canonical renders the hostmask back to nick!user@host.
func (h Hostmask) Canonical() string {
	if h.User == "" && h.Host == "" {
		return h.Nick
	}
	return h.Nick + "!" + h.User + "@" + h.Host
}

// SplitHostmask splits a raw prefix into its nick/user/host components.
// It tolerates a bare server name or nick with no '!'/'@' by returning
// it verbatim in Nick.
func SplitHostmask(prefix string) Hostmask {
	nick := prefix
	user, host := "", ""
	if at := strings.IndexByte(prefix, '@'); at >= 0 {
		host = prefix[at+1:]
		nick = prefix[:at]
	}
	if bang := strings.IndexByte(nick, '!'); bang >= 0 {
		user = nick[bang+1:]
		nick = nick[:bang]
	}
	return Hostmask{Nick: nick, User: user, Host: host}
}

// Encode builds an outbound line (without the trailing CRLF) from a
// command and its parameters.
func Encode(command string, params ...string) (string, error) {
	msg := ircmsg.MakeMessage(nil, "", command, params...)
	return msg.Line()
}

const ctcpDelim = '\x01'

// IsCTCP reports whether a PRIVMSG/NOTICE parameter carries a CTCP
// quoted payload (delimited by 0x01) and returns the unwrapped text.
func IsCTCP(param string) (payload string, ok bool) {
	if len(param) < 2 {
		return "", false
	}
	if param[0] != ctcpDelim || param[len(param)-1] != ctcpDelim {
		return "", false
	}
	return param[1 : len(param)-1], true
}

// CTCPCommand splits a CTCP payload ("ACTION foo bar") into its verb
// and remaining text.
func CTCPCommand(payload string) (verb string, text string) {
	parts := strings.SplitN(payload, " ", 2)
	verb = strings.ToUpper(parts[0])
	if len(parts) > 1 {
		text = parts[1]
	}
	return verb, text
}

// IsChannel reports whether a target name looks like a channel given
// a server's configured channel-name prefixes (defaults to "#&").
func IsChannel(target string, prefixes string) bool {
	if prefixes == "" {
		prefixes = "#&"
	}
	if target == "" {
		return false
	}
	return strings.ContainsRune(prefixes, rune(target[0]))
}

// EqualFold compares two IRC names (servers, channels, nicks) using
// the casemapping convention: case-insensitive ASCII compare. irccd
// does not negotiate RFC 1459 casemapping (the {}|  ~ aliasing of
// []\^) and instead uses plain case folding, matching every pack
// example that touches nick comparison.
func EqualFold(a, b string) bool {
	return strings.EqualFold(a, b)
}
