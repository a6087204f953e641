// Package plugin implements the plugin manager, loader registry and
// the language-agnostic capability set plugins consume from the bot
// (spec.md §4.3, §4.4).
package plugin

import (
	"time"

	"github.com/irccd/irccd/internal/rule"
	"github.com/rs/zerolog"
)

// ServerHandle is the subset of a server connection a plugin may
// drive: outbound IRC actions plus read-only state, matching
// internal/server.Server's action surface structurally.
type ServerHandle interface {
	Name() string
	CurrentNick() string
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
	Whois(nick string)
	Names(channel string)
	Raw(line string)
}

// FetchRequest describes a plugin-initiated HTTP request (spec.md
// §4.4, "HTTP fetch").
type FetchRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
	Timeout time.Duration
}

// FetchResult is delivered to a plugin's callback on completion.
type FetchResult struct {
	Status int
	Body   []byte
	Err    error
}

// Capabilities is the full surface a loaded plugin is handed at
// handle_load time and may retain for later use.
type Capabilities interface {
	Server(name string) (ServerHandle, bool)
	Servers() []ServerHandle
	Rules() *rule.Engine
	Plugins() SelfDirectory
	Logger() zerolog.Logger
	Expand(tpl string, keywords map[string]string) (string, error)
	FS() FS
	Fetch(req FetchRequest, callback func(FetchResult))
	Schedule(delay time.Duration, fn func())
}

// SelfDirectory is the plugin-directory surface exposed to plugins
// (spec.md §4.4, "Self-plugin directory"): list/get/load/reload/unload.
type SelfDirectory interface {
	Get(id string) (*Plugin, bool)
	List() []*Plugin
	Load(id, path string) error
	Reload(id string) error
	Unload(id string) error
}
