package bot

import (
	"github.com/irccd/irccd/internal/command"
	"github.com/irccd/irccd/internal/plugin"
	"github.com/irccd/irccd/internal/rule"
	"github.com/irccd/irccd/internal/server"
	"github.com/rs/zerolog"
)

// This file wires *Bot into command.Bot, the narrow surface
// internal/command drives a running daemon through (spec.md §4.7,
// §4.8). internal/command never imports internal/bot directly (that
// interface is declared on the command side, in internal/command/bot.go,
// to avoid an import cycle); this file is where *Bot earns the right
// to be passed as command.Dispatch's first argument.

// Rules returns the bot's rule engine.
func (b *Bot) Rules() *rule.Engine { return b.rules }

// PluginManager returns the bot's plugin manager.
func (b *Bot) PluginManager() *plugin.Manager { return b.plugins }

// Logger returns the bot's root logger.
func (b *Bot) Logger() zerolog.Logger { return b.log }

func (b *Bot) lookup(name string) (serverAdapter, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.servers[name]
	if !ok {
		return serverAdapter{}, false
	}
	return serverAdapter{s}, true
}

// Server returns the named server's command-table projection.
func (b *Bot) Server(name string) (command.ServerOps, bool) {
	a, ok := b.lookup(name)
	if !ok {
		return nil, false
	}
	return a, true
}

// Servers returns every server's command-table projection, in the
// order they were added.
func (b *Bot) Servers() []command.ServerOps {
	b.mu.RLock()
	names := append([]string(nil), b.order...)
	b.mu.RUnlock()

	out := make([]command.ServerOps, 0, len(names))
	for _, name := range names {
		if a, ok := b.lookup(name); ok {
			out = append(out, a)
		}
	}
	return out
}

// ConnectServer constructs and connects a server from a server-connect
// request (spec.md §4.7). Errors surfaced here are the command.Error
// values handlers_server.go's field validation doesn't already cover.
func (b *Bot) ConnectServer(spec command.ServerSpec) error {
	cfg := server.Config{
		Name: spec.Name, Hostname: spec.Hostname, Port: spec.Port,
		SSL: spec.SSL, SSLVerify: spec.SSLVerify, IPv4: spec.IPv4, IPv6: spec.IPv6,
		Nickname: spec.Nickname, Username: spec.Username, Realname: spec.Realname,
		Password: spec.Password, CommandChar: spec.CommandChar, CTCPVersion: spec.CTCPVersion,
		PingTimeout: spec.PingTimeout, ReconnectTries: spec.ReconnectTries, ReconnectDelay: spec.ReconnectDelay,
	}
	if err := b.addServer(cfg); err != nil {
		return command.ErrServerAlreadyExists
	}

	b.mu.RLock()
	s := b.servers[cfg.Name]
	b.mu.RUnlock()
	if err := s.Connect(b.ctx); err != nil {
		b.log.Warn().Err(err).Str("server", cfg.Name).Msg("initial connect failed, will retry on reconnect timer")
	}
	return nil
}

// DisconnectServer disconnects the named server, or every server when
// name is empty (spec.md §4.7).
func (b *Bot) DisconnectServer(name string) error {
	targets, err := b.resolveTargets(name)
	if err != nil {
		return err
	}
	for _, s := range targets {
		s.Disconnect("disconnected by operator")
	}
	return nil
}

// ReconnectServer disconnects then reconnects the named server, or
// every server when name is empty.
func (b *Bot) ReconnectServer(name string) error {
	targets, err := b.resolveTargets(name)
	if err != nil {
		return err
	}
	for _, s := range targets {
		s.Disconnect("reconnecting")
		if err := s.Connect(b.ctx); err != nil {
			b.log.Warn().Err(err).Str("server", s.Name()).Msg("reconnect attempt failed, will retry on reconnect timer")
		}
	}
	return nil
}

func (b *Bot) resolveTargets(name string) ([]*server.Server, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if name == "" {
		out := make([]*server.Server, 0, len(b.order))
		for _, n := range b.order {
			out = append(out, b.servers[n])
		}
		return out, nil
	}
	s, ok := b.servers[name]
	if !ok {
		return nil, command.ErrServerNotFound
	}
	return []*server.Server{s}, nil
}

// LoadPlugin loads a plugin by id, delegating to the plugin manager
// with this bot's capability set (spec.md §4.3).
func (b *Bot) LoadPlugin(id, path string) error {
	return b.plugins.Load(id, path, capabilities{b})
}

// ReloadPlugin reloads a loaded plugin in place.
func (b *Bot) ReloadPlugin(id string) error {
	return b.plugins.Reload(id, capabilities{b})
}

// UnloadPlugin unloads a loaded plugin.
func (b *Bot) UnloadPlugin(id string) error {
	return b.plugins.Unload(id, capabilities{b})
}
