package command

import (
	"testing"

	"github.com/irccd/irccd/internal/plugin"
	"github.com/irccd/irccd/internal/rule"
	"github.com/rs/zerolog"
)

// fakeServer is a minimal ServerOps recording the last action invoked on it.
type fakeServer struct {
	name     string
	lastCall string
	target   string
	message  string
}

func (f *fakeServer) Name() string                 { return f.name }
func (f *fakeServer) CurrentNick() string           { return "bot" }
func (f *fakeServer) State() string                 { return "connected" }
func (f *fakeServer) Channels() map[string]ChannelView {
	return map[string]ChannelView{"#general": {Name: "#general", Joined: true}}
}
func (f *fakeServer) Message(target, text string) { f.lastCall, f.target, f.message = "message", target, text }
func (f *fakeServer) Me(target, text string)       { f.lastCall, f.target, f.message = "me", target, text }
func (f *fakeServer) Notice(target, text string)   { f.lastCall, f.target, f.message = "notice", target, text }
func (f *fakeServer) Join(channel, key string)     { f.lastCall, f.target = "join", channel }
func (f *fakeServer) Part(channel, reason string)  { f.lastCall, f.target = "part", channel }
func (f *fakeServer) Kick(channel, target, reason string) { f.lastCall, f.target = "kick", target }
func (f *fakeServer) Invite(channel, target string) { f.lastCall, f.target = "invite", target }
func (f *fakeServer) Mode(target, modes string, args ...string) { f.lastCall = "mode" }
func (f *fakeServer) Nick(nick string)              { f.lastCall, f.target = "nick", nick }
func (f *fakeServer) Topic(channel, text string)    { f.lastCall, f.target = "topic", channel }

type fakeBot struct {
	servers map[string]*fakeServer
	rules   *rule.Engine
	plugins *plugin.Manager
}

func newFakeBot() *fakeBot {
	return &fakeBot{
		servers: map[string]*fakeServer{"freenode": {name: "freenode"}},
		rules:   rule.NewEngine(),
		plugins: plugin.NewManager(zerolog.Nop(), rule.NewEngine()),
	}
}

func (b *fakeBot) ConnectServer(spec ServerSpec) error { return nil }
func (b *fakeBot) DisconnectServer(name string) error  { return nil }
func (b *fakeBot) ReconnectServer(name string) error   { return nil }
func (b *fakeBot) Server(name string) (ServerOps, bool) {
	s, ok := b.servers[name]
	if !ok {
		return nil, false
	}
	return s, true
}
func (b *fakeBot) Servers() []ServerOps {
	out := make([]ServerOps, 0, len(b.servers))
	for _, s := range b.servers {
		out = append(out, s)
	}
	return out
}
func (b *fakeBot) Rules() *rule.Engine               { return b.rules }
func (b *fakeBot) PluginManager() *plugin.Manager    { return b.plugins }
func (b *fakeBot) LoadPlugin(id, path string) error   { return nil }
func (b *fakeBot) ReloadPlugin(id string) error       { return nil }
func (b *fakeBot) UnloadPlugin(id string) error       { return nil }

func TestDispatchUnknownCommand(t *testing.T) {
	resp := Dispatch(newFakeBot(), map[string]interface{}{"command": "bogus"})
	if resp["error"] != ErrInvalidMessage.Code {
		t.Fatalf("got %+v, want invalid_message", resp)
	}
	if resp["errorCategory"] != string(CategoryIrccd) {
		t.Fatalf("got category %v", resp["errorCategory"])
	}
}

func TestDispatchServerMessage(t *testing.T) {
	bot := newFakeBot()
	resp := Dispatch(bot, map[string]interface{}{
		"command": "server-message", "server": "freenode", "target": "#general", "message": "hi",
	})
	if _, failed := resp["error"]; failed {
		t.Fatalf("unexpected error: %+v", resp)
	}
	s := bot.servers["freenode"]
	if s.lastCall != "message" || s.target != "#general" || s.message != "hi" {
		t.Fatalf("server action not applied: %+v", s)
	}
}

func TestDispatchServerActionUnknownServer(t *testing.T) {
	resp := Dispatch(newFakeBot(), map[string]interface{}{
		"command": "server-message", "server": "nowhere", "target": "x", "message": "y",
	})
	if resp["error"] != ErrServerNotFound.Code {
		t.Fatalf("got %+v, want server not_found", resp)
	}
}

func TestDispatchRuleAddThenList(t *testing.T) {
	bot := newFakeBot()
	addResp := Dispatch(bot, map[string]interface{}{
		"command": "rule-add", "servers": []interface{}{"freenode"}, "action": "accept",
	})
	if _, failed := addResp["error"]; failed {
		t.Fatalf("rule-add failed: %+v", addResp)
	}

	listResp := Dispatch(bot, map[string]interface{}{"command": "rule-list"})
	list, ok := listResp["list"].([]map[string]interface{})
	if !ok || len(list) != 1 {
		t.Fatalf("expected 1 rule, got %+v", listResp)
	}
}

func TestDispatchRuleAddInvalidAction(t *testing.T) {
	resp := Dispatch(newFakeBot(), map[string]interface{}{"command": "rule-add", "action": "bogus"})
	if resp["error"] != ErrInvalidAction.Code {
		t.Fatalf("got %+v, want invalid_action", resp)
	}
}

func TestDispatchPluginInfoNotFound(t *testing.T) {
	resp := Dispatch(newFakeBot(), map[string]interface{}{"command": "plugin-info", "plugin": "missing"})
	if resp["error"] != ErrPluginNotFound.Code {
		t.Fatalf("got %+v, want plugin not_found", resp)
	}
}

func TestDispatchEchoesCommandName(t *testing.T) {
	resp := Dispatch(newFakeBot(), map[string]interface{}{"command": "rule-list"})
	if resp["command"] != "rule-list" {
		t.Fatalf("expected command echo, got %+v", resp)
	}
}
