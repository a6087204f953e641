package config

import (
	"strings"
	"testing"
	"time"
)

func TestParseServerSection(t *testing.T) {
	doc, err := Parse(strings.NewReader(`
[server]
name = freenode
hostname = chat.freenode.net
port = 6697
ssl = true
nickname = bot
channels = #general #staff:secret
reconnect-tries = 3
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Servers) != 1 {
		t.Fatalf("got %d servers, want 1", len(doc.Servers))
	}
	s := doc.Servers[0]
	if s.Name != "freenode" || s.Hostname != "chat.freenode.net" || s.Port != 6697 {
		t.Fatalf("unexpected server: %+v", s)
	}
	if !s.SSL {
		t.Error("expected ssl true")
	}
	if s.ReconnectTries != 3 {
		t.Errorf("got ReconnectTries=%d, want 3", s.ReconnectTries)
	}
	if len(s.Channels) != 2 || s.Channels[1].Name != "#staff" || s.Channels[1].Key != "secret" {
		t.Fatalf("unexpected channels: %+v", s.Channels)
	}
}

func TestParseRepeatedServerSections(t *testing.T) {
	doc, err := Parse(strings.NewReader(`
[server]
name = one
hostname = one.example.org

[server]
name = two
hostname = two.example.org
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Servers) != 2 {
		t.Fatalf("got %d servers, want 2 (repeatable sections)", len(doc.Servers))
	}
}

func TestParseMissingRequiredFieldFails(t *testing.T) {
	_, err := Parse(strings.NewReader(`
[server]
hostname = chat.freenode.net
`))
	if err == nil {
		t.Fatal("expected error for [server] missing name")
	}
}

func TestParseUnknownSectionWarnsNotAborts(t *testing.T) {
	doc, err := Parse(strings.NewReader(`
[mystery]
key = value
`))
	if err != nil {
		t.Fatalf("unknown section should warn, not abort: %v", err)
	}
	if len(doc.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", doc.Warnings)
	}
}

func TestParseUnknownKeyInKnownSectionWarnsNotAborts(t *testing.T) {
	doc, err := Parse(strings.NewReader(`
[server]
name = freenode
hostname = chat.freenode.net
frobnicate = yes
`))
	if err != nil {
		t.Fatalf("unknown key should warn, not abort: %v", err)
	}
	if len(doc.Warnings) != 1 || !strings.Contains(doc.Warnings[0], "frobnicate") {
		t.Fatalf("expected 1 warning naming frobnicate, got %v", doc.Warnings)
	}
	if len(doc.Servers) != 1 || doc.Servers[0].Name != "freenode" {
		t.Fatalf("server should still parse despite unknown key, got %+v", doc.Servers)
	}
}

func TestParseParametricTemplatesSection(t *testing.T) {
	doc, err := Parse(strings.NewReader(`
[templates.logger]
onJoin = #{origin} joined #{channel}

[templates.greeter]
onJoin = welcome #{origin}
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Templates) != 2 {
		t.Fatalf("got %d template ids, want 2 (parametric sections)", len(doc.Templates))
	}
	if doc.Templates["logger"]["onJoin"] != "#{origin} joined #{channel}" {
		t.Fatalf("unexpected logger template: %+v", doc.Templates["logger"])
	}
}

func TestParseRuleDefaultsToAccept(t *testing.T) {
	doc, err := Parse(strings.NewReader(`
[rule]
servers = freenode
events = onCommand
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Rules) != 1 || doc.Rules[0].Action != "accept" {
		t.Fatalf("unexpected rule: %+v", doc.Rules)
	}
}

func TestParseDurationAndDefaults(t *testing.T) {
	doc, err := Parse(strings.NewReader(`
[server]
name = s
hostname = h
ping-timeout = 60
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Servers[0].PingTimeout != 60*time.Second {
		t.Errorf("got PingTimeout=%v, want 60s", doc.Servers[0].PingTimeout)
	}
	if doc.Servers[0].ReconnectTries != -1 {
		t.Errorf("got ReconnectTries=%d, want -1 (unlimited default)", doc.Servers[0].ReconnectTries)
	}
}

func TestParseMalformedSectionHeader(t *testing.T) {
	_, err := Parse(strings.NewReader("[server\nname = s\n"))
	if err == nil {
		t.Fatal("expected malformed section header error")
	}
}

func TestParseKeyOutsideSection(t *testing.T) {
	_, err := Parse(strings.NewReader("name = s\n"))
	if err == nil {
		t.Fatal("expected error for key outside any section")
	}
}
