package server

import (
	"testing"
	"time"

	"github.com/irccd/irccd/internal/event"
	"github.com/irccd/irccd/internal/irc"
	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T) (*Server, *[]event.Event) {
	t.Helper()
	var events []event.Event
	s := New(Config{Name: "freenode", Hostname: "chat.freenode.net", Nickname: "bot"}, zerolog.Nop(), func(e event.Event) {
		events = append(events, e)
	})
	return s, &events
}

func dispatchLine(t *testing.T, s *Server, raw string) {
	t.Helper()
	line, err := irc.ParseLine(raw)
	if err != nil {
		t.Fatalf("ParseLine(%q): %v", raw, err)
	}
	s.dispatch(line)
}

func TestWelcomeTransitionsToConnectedAndEmitsConnect(t *testing.T) {
	s, events := newTestServer(t)
	dispatchLine(t, s, ":irc.example.org 001 bot :Welcome")

	if s.State() != Connected {
		t.Fatalf("got state %v, want Connected", s.State())
	}
	if len(*events) != 1 || (*events)[0].Name() != "onConnect" {
		t.Fatalf("got events %+v", *events)
	}
}

func TestJoinTracksOwnAndOtherMembership(t *testing.T) {
	s, events := newTestServer(t)
	dispatchLine(t, s, ":bot!b@h JOIN #general")
	dispatchLine(t, s, ":alice!a@h JOIN #general")

	ch, ok := s.channels["#general"]
	if !ok {
		t.Fatal("expected #general tracked")
	}
	if !ch.Joined {
		t.Fatal("expected Joined true once the bot itself joins")
	}
	if _, ok := ch.Members["alice"]; !ok {
		t.Fatal("expected alice tracked as a member")
	}
	if len(*events) != 2 || (*events)[1].Name() != "onJoin" {
		t.Fatalf("got events %+v", *events)
	}
}

func TestPartRemovesOwnChannelEntirely(t *testing.T) {
	s, _ := newTestServer(t)
	dispatchLine(t, s, ":bot!b@h JOIN #general")
	dispatchLine(t, s, ":bot!b@h PART #general :bye")

	if _, ok := s.channels["#general"]; ok {
		t.Fatal("expected #general removed once the bot parts")
	}
}

func TestPrivmsgToChannelVsQuery(t *testing.T) {
	s, events := newTestServer(t)
	dispatchLine(t, s, ":alice!a@h PRIVMSG #general :hello")
	dispatchLine(t, s, ":alice!a@h PRIVMSG bot :hi there")

	if len(*events) != 2 {
		t.Fatalf("got %d events, want 2", len(*events))
	}
	chanMsg := (*events)[0].(event.Message)
	if chanMsg.Channel() != "#general" {
		t.Fatalf("got channel %q, want #general", chanMsg.Channel())
	}
	queryMsg := (*events)[1].(event.Message)
	if queryMsg.Channel() != queryMsg.Origin() {
		t.Fatalf("expected query Channel()==Origin(), got %q vs %q", queryMsg.Channel(), queryMsg.Origin())
	}
}

func TestCTCPActionEmitsOnMe(t *testing.T) {
	s, events := newTestServer(t)
	dispatchLine(t, s, ":alice!a@h PRIVMSG #general :\x01ACTION waves\x01")

	if len(*events) != 1 {
		t.Fatalf("got %d events, want 1", len(*events))
	}
	me, ok := (*events)[0].(event.Me)
	if !ok {
		t.Fatalf("expected onMe, got %T", (*events)[0])
	}
	if me.Text != "waves" {
		t.Fatalf("got text %q", me.Text)
	}
}

func TestModeTracksMembershipRank(t *testing.T) {
	s, _ := newTestServer(t)
	dispatchLine(t, s, ":irc.example.org 005 bot PREFIX=(ov)@+ :are supported")
	dispatchLine(t, s, ":alice!a@h JOIN #general")
	dispatchLine(t, s, ":op!o@h MODE #general +o alice")

	ch := s.channels["#general"]
	m, ok := ch.Members["alice"]
	if !ok {
		t.Fatal("expected alice tracked")
	}
	if len(m.Modes) != 1 || m.Modes[0] != 'o' {
		t.Fatalf("expected alice to carry mode o, got %v", m.Modes)
	}

	dispatchLine(t, s, ":op!o@h MODE #general -o alice")
	if len(m.Modes) != 0 {
		t.Fatalf("expected mode o removed, got %v", m.Modes)
	}
}

func TestWhoisAggregatesIntoOneEvent(t *testing.T) {
	s, events := newTestServer(t)
	dispatchLine(t, s, ":irc.example.org 311 bot alice ~alice host.example.org * :Alice Example")
	dispatchLine(t, s, ":irc.example.org 319 bot alice :#general #staff")
	dispatchLine(t, s, ":irc.example.org 318 bot alice :End of WHOIS")

	if len(*events) != 1 {
		t.Fatalf("got %d events, want exactly 1 aggregated onWhois", len(*events))
	}
	w, ok := (*events)[0].(event.Whois)
	if !ok {
		t.Fatalf("expected onWhois, got %T", (*events)[0])
	}
	if w.Nick != "alice" || w.User != "~alice" || w.Host != "host.example.org" {
		t.Fatalf("unexpected whois: %+v", w)
	}
	if len(w.Channels) != 2 {
		t.Fatalf("expected 2 channels, got %v", w.Channels)
	}
}

func TestNickRenamesTrackedMemberAndSelf(t *testing.T) {
	s, _ := newTestServer(t)
	dispatchLine(t, s, ":bot!b@h JOIN #general")
	dispatchLine(t, s, ":alice!a@h JOIN #general")
	dispatchLine(t, s, ":alice!a@h NICK alice2")
	ch := s.channels["#general"]
	if _, ok := ch.Members["alice"]; ok {
		t.Fatal("expected alice no longer tracked under the old nick")
	}
	if m, ok := ch.Members["alice2"]; !ok || m.Nick != "alice2" {
		t.Fatalf("expected alice tracked as alice2, got %+v", ch.Members)
	}
	dispatchLine(t, s, ":bot!b@h NICK newbot")
	if s.CurrentNick() != "newbot" {
		t.Fatalf("got nick %q, want newbot", s.CurrentNick())
	}
}

// TestWelcomeResetsReconnectBudget covers spec.md §4.1's "Handshaking
// -> Connected ... Resets reconnect-tries counter": a server that has
// already spent part of its reconnect budget and then completes a
// fresh handshake must have its budget restored, or a long-lived
// server would eventually be marked dead despite every individual
// reconnect having succeeded.
func TestWelcomeResetsReconnectBudget(t *testing.T) {
	s, _ := newTestServer(t)
	s.cfg.ReconnectTries = 3
	s.reconnectLeft = 1

	dispatchLine(t, s, ":irc.example.org 001 bot :Welcome")

	if s.reconnectLeft != s.cfg.ReconnectTries {
		t.Fatalf("reconnectLeft = %d after welcome, want reset to %d", s.reconnectLeft, s.cfg.ReconnectTries)
	}
}

// TestDisconnectCancelsPendingReconnectTimer covers spec.md §5:
// "disconnecting a server cancels its pending reconnect timer". A
// reconnect scheduled after a connection loss must not fire once the
// operator has issued an explicit disconnect, even though both states
// read back as Disconnected.
func TestDisconnectCancelsPendingReconnectTimer(t *testing.T) {
	s, _ := newTestServer(t)
	s.cfg.ReconnectTries = -1
	s.cfg.ReconnectDelay = 20 * time.Millisecond
	s.setState(Disconnected)

	s.maybeScheduleReconnect()
	s.Disconnect("operator requested")

	time.Sleep(100 * time.Millisecond)

	if s.State() != Disconnected {
		t.Fatalf("got state %v, want Disconnected: a cancelled reconnect timer must not fire", s.State())
	}
}
