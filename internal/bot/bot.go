// Package bot is the composition root: it owns the server directory,
// rule engine, plugin manager and transport listener set, and routes
// every synthesized event to its broadcast, plugin-dispatch and hook
// destinations (spec.md §4.8).
package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/irccd/irccd/internal/command"
	"github.com/irccd/irccd/internal/config"
	"github.com/irccd/irccd/internal/event"
	"github.com/irccd/irccd/internal/hook"
	"github.com/irccd/irccd/internal/plugin"
	"github.com/irccd/irccd/internal/rule"
	"github.com/irccd/irccd/internal/server"
	"github.com/irccd/irccd/internal/template"
	"github.com/irccd/irccd/internal/transport"
	"github.com/rs/zerolog"
)

// Bot is the running daemon: every server connection, the rule
// engine, the plugin manager, every transport listener and every
// configured hook.
type Bot struct {
	log zerolog.Logger

	mu      sync.RWMutex
	servers map[string]*server.Server
	order   []string

	rules      *rule.Engine
	plugins    *plugin.Manager
	transports []*transport.Server
	hooks      []hook.Hook

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a Bot from a parsed configuration document. Servers are
// constructed but not connected; call Run to start everything.
func New(doc *config.Document, log zerolog.Logger) (*Bot, error) {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bot{
		log:     log,
		servers: make(map[string]*server.Server),
		rules:   rule.NewEngine(),
		ctx:     ctx,
		cancel:  cancel,
	}
	b.plugins = plugin.NewManager(log, b.rules)
	b.plugins.AddLoader(plugin.NativeLoader{SearchDirs: []string{"./plugins"}})

	for _, rc := range doc.Rules {
		action, err := rule.ParseAction(rc.Action)
		if err != nil {
			return nil, fmt.Errorf("config rule: %w", err)
		}
		r, err := rule.New(rule.Fields{
			Servers: rc.Servers, Channels: rc.Channels, Origins: rc.Origins,
			Plugins: rc.Plugins, Events: rc.Events, Action: action,
		})
		if err != nil {
			return nil, fmt.Errorf("config rule: %w", err)
		}
		b.rules.Add(r)
	}

	for _, sc := range doc.Servers {
		if err := b.addServer(serverConfigFrom(sc)); err != nil {
			return nil, err
		}
	}

	for _, tc := range doc.Transport {
		ln, err := transport.Listen(transport.Config{
			Type: tc.Type, Path: tc.Path, Address: tc.Address, Port: tc.Port,
			SSL: tc.SSL, Certificate: tc.Certificate, Key: tc.Key, Password: tc.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("config transport: %w", err)
		}
		ts := transport.NewServer(ln, tc.Password, func(req map[string]interface{}) map[string]interface{} {
			return command.Dispatch(b, req)
		}, log)
		b.transports = append(b.transports, ts)
	}

	for _, hc := range doc.Hooks {
		b.hooks = append(b.hooks, hook.Hook{Name: hc.Name, Exec: hc.Exec})
	}

	for _, pc := range doc.Plugins {
		if err := b.LoadPlugin(pc.Name, pc.Path); err != nil {
			log.Warn().Err(err).Str("plugin", pc.Name).Msg("failed to load configured plugin")
			continue
		}
		if opts, ok := doc.Options[pc.Name]; ok {
			b.plugins.SetOptions(pc.Name, opts)
		}
		if tmpl, ok := doc.Templates[pc.Name]; ok {
			b.plugins.SetTemplates(pc.Name, tmpl)
		}
	}

	return b, nil
}

func serverConfigFrom(sc config.Server) server.Config {
	var channels []server.ChannelSpec
	for _, c := range sc.Channels {
		channels = append(channels, server.ChannelSpec{Name: c.Name, Key: c.Key})
	}
	return server.Config{
		Name: sc.Name, Hostname: sc.Hostname, Port: sc.Port,
		SSL: sc.SSL, SSLVerify: sc.SSLVerify, IPv4: sc.IPv4, IPv6: sc.IPv6,
		AutoRejoin: sc.AutoRejoin, JoinInvite: sc.JoinInvite,
		Nickname: sc.Nickname, Username: sc.Username, Realname: sc.Realname,
		Password: sc.Password, CommandChar: sc.CommandChar,
		CTCPVersion: sc.CTCPVersion, CTCPSource: sc.CTCPSource,
		PingTimeout: sc.PingTimeout, ReconnectDelay: sc.ReconnectDelay,
		ReconnectTries: sc.ReconnectTries, Channels: channels,
	}
}

// Run connects every configured server and starts every transport
// listener. It returns once they are all started; the servers and
// listeners continue running on their own goroutines.
func (b *Bot) Run() {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, name := range b.order {
		s := b.servers[name]
		if err := s.Connect(b.ctx); err != nil {
			b.log.Warn().Err(err).Str("server", name).Msg("initial connect failed, will retry")
		}
	}
	for _, ts := range b.transports {
		go ts.Serve()
	}
}

// Shutdown disconnects every server, closes every transport listener
// and its clients, then cancels the bot context and returns. It does
// not wait for in-flight hooks: each running hook.Run gives its hook
// up to hook.GracePeriod after the cancellation before killing it, on
// its own goroutine.
func (b *Bot) Shutdown() {
	b.mu.RLock()
	servers := make([]*server.Server, 0, len(b.servers))
	for _, s := range b.servers {
		servers = append(servers, s)
	}
	transports := append([]*transport.Server(nil), b.transports...)
	b.mu.RUnlock()

	for _, s := range servers {
		s.Disconnect("shutting down")
	}
	for _, ts := range transports {
		ts.Close()
	}
	b.cancel()
}

func (b *Bot) addServer(cfg server.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.servers[cfg.Name]; exists {
		return fmt.Errorf("already_exists: server %q", cfg.Name)
	}
	s := server.New(cfg, b.log, func(ev event.Event) { b.handleEvent(cfg.Name, ev) })
	b.servers[cfg.Name] = s
	b.order = append(b.order, cfg.Name)
	return nil
}

// handleEvent implements spec.md §4.8's bot routing for one
// synthesized event: broadcast, plugin dispatch, then hooks.
func (b *Bot) handleEvent(serverName string, ev event.Event) {
	b.broadcast(ev)

	b.mu.RLock()
	s, ok := b.servers[serverName]
	b.mu.RUnlock()
	commandChar := "!"
	if ok {
		commandChar = s.CommandChar()
	}
	b.plugins.Dispatch(capabilities{b}, serverName, commandChar, ev)

	b.mu.RLock()
	hooks := append([]hook.Hook(nil), b.hooks...)
	b.mu.RUnlock()
	for _, h := range hooks {
		go hook.Run(b.ctx, h, ev, b.log)
	}
}

func (b *Bot) broadcast(ev event.Event) {
	body, err := event.Marshal(ev)
	if err != nil {
		b.log.Warn().Err(err).Msg("failed to marshal event for broadcast")
		return
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(body, &obj); err != nil {
		b.log.Warn().Err(err).Msg("failed to decode marshaled event")
		return
	}

	b.mu.RLock()
	transports := append([]*transport.Server(nil), b.transports...)
	b.mu.RUnlock()
	for _, ts := range transports {
		ts.Broadcast(obj)
	}
}

// Expand renders a plugin-facing template using this bot's template
// flags (spec.md §6.3, §4.4).
func (b *Bot) Expand(tpl string, keywords map[string]string) (string, error) {
	return template.Expand(tpl, keywords, template.Flags{})
}

// withTimeout derives a bounded context from the bot's lifetime
// context, so a plugin's in-flight HTTP fetch is cancelled at
// shutdown rather than outliving the bot (spec.md §5, "Cancellation").
func (b *Bot) withTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(b.ctx, d)
}
