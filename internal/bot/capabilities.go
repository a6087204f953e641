package bot

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/irccd/irccd/internal/plugin"
	"github.com/irccd/irccd/internal/rule"
	"github.com/rs/zerolog"
)

// capabilities is the plugin.Capabilities implementation every loaded
// plugin is handed at HandleLoad/HandleReload/Handle time (spec.md
// §4.4). It is a distinct type from *Bot (rather than *Bot itself
// satisfying plugin.Capabilities directly) because Server/Servers must
// project to plugin.ServerHandle here and to command.ServerOps for
// internal/command — two different interface types sharing a method
// name, which Go resolves by giving each projection its own type.
type capabilities struct{ *Bot }

// Server returns the named server's plugin-facing action surface.
func (c capabilities) Server(name string) (plugin.ServerHandle, bool) {
	a, ok := c.Bot.lookup(name)
	if !ok {
		return nil, false
	}
	return a, true
}

// Servers returns every server's plugin-facing action surface, in
// insertion order.
func (c capabilities) Servers() []plugin.ServerHandle {
	c.Bot.mu.RLock()
	names := append([]string(nil), c.Bot.order...)
	c.Bot.mu.RUnlock()

	out := make([]plugin.ServerHandle, 0, len(names))
	for _, name := range names {
		if a, ok := c.Bot.lookup(name); ok {
			out = append(out, a)
		}
	}
	return out
}

// Rules returns the bot's rule engine (spec.md §4.4, "Rule directory").
func (c capabilities) Rules() *rule.Engine { return c.Bot.rules }

// Plugins returns the self-plugin directory (spec.md §4.4,
// "Self-plugin directory").
func (c capabilities) Plugins() plugin.SelfDirectory { return selfDirectory{c.Bot} }

// Logger returns the bot's root logger; callers tag it per plugin
// with internal/logging.ForPlugin.
func (c capabilities) Logger() zerolog.Logger { return c.Bot.log }

// Expand renders a template with the bot's default token flags.
func (c capabilities) Expand(tpl string, keywords map[string]string) (string, error) {
	return c.Bot.Expand(tpl, keywords)
}

// FS returns the synchronous filesystem-helper surface.
func (c capabilities) FS() plugin.FS { return plugin.FS{} }

// Fetch issues a plugin-initiated HTTP request and delivers the
// result to callback once it completes (spec.md §4.4, "HTTP fetch").
// The request runs on its own goroutine; the result is marshalled
// back by invoking callback directly, which is safe because every
// shared-state mutation a plugin callback makes still goes through
// the same mutex-guarded bot state as any other entry point.
func (c capabilities) Fetch(req plugin.FetchRequest, callback func(plugin.FetchResult)) {
	go func() {
		callback(doFetch(c.Bot, req))
	}()
}

func doFetch(b *Bot, req plugin.FetchRequest) plugin.FetchResult {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := b.withTimeout(timeout)
	defer cancel()

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return plugin.FetchResult{Err: err}
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return plugin.FetchResult{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return plugin.FetchResult{Status: resp.StatusCode, Err: err}
	}
	return plugin.FetchResult{Status: resp.StatusCode, Body: data}
}

// Schedule runs fn once after delay, unless the bot shuts down first
// (spec.md §4.4, "Event loop handle").
func (c capabilities) Schedule(delay time.Duration, fn func()) {
	go func() {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-t.C:
			fn()
		case <-c.Bot.ctx.Done():
		}
	}()
}

// selfDirectory is the plugin.SelfDirectory implementation backing
// capabilities.Plugins (spec.md §4.4, "Self-plugin directory").
type selfDirectory struct{ b *Bot }

func (s selfDirectory) Get(id string) (*plugin.Plugin, bool) { return s.b.plugins.Get(id) }
func (s selfDirectory) List() []*plugin.Plugin               { return s.b.plugins.List() }
func (s selfDirectory) Load(id, path string) error           { return s.b.LoadPlugin(id, path) }
func (s selfDirectory) Reload(id string) error                { return s.b.ReloadPlugin(id) }
func (s selfDirectory) Unload(id string) error                { return s.b.UnloadPlugin(id) }
