package plugin

import (
	"fmt"
	"sync"

	"github.com/irccd/irccd/internal/event"
	"github.com/irccd/irccd/internal/rule"
	"github.com/rs/zerolog"
)

// Manager owns the ordered loader list and the loaded-plugin registry
// (spec.md §4.3).
type Manager struct {
	mu      sync.Mutex
	loaders []Loader
	plugins map[string]*Plugin
	order   []string // insertion order, dispatch walks this (spec.md open question: "unspecified but stable")

	log    zerolog.Logger
	engine *rule.Engine
}

// NewManager returns an empty manager. log records plugin handler
// errors and panics, and engine is consulted by Dispatch; each
// plugin's Capabilities is the one passed to Load by the caller.
func NewManager(log zerolog.Logger, engine *rule.Engine) *Manager {
	return &Manager{
		plugins: make(map[string]*Plugin),
		log:     log,
		engine:  engine,
	}
}

// AddLoader appends a loader to the list Load consults.
func (m *Manager) AddLoader(l Loader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaders = append(m.loaders, l)
}

// Load walks the loader list; the first loader that recognizes
// (id, path) produces a plugin, whose HandleLoad then runs before it
// is stored under id.
func (m *Manager) Load(id, path string, bot Capabilities) error {
	m.mu.Lock()
	if _, exists := m.plugins[id]; exists {
		m.mu.Unlock()
		return fmt.Errorf("already_exists: plugin %q", id)
	}
	loaders := append([]Loader(nil), m.loaders...)
	m.mu.Unlock()

	var handler Handler
	var err error
	found := false
	for _, l := range loaders {
		handler, found, err = l.Open(id, path)
		if err != nil {
			return err
		}
		if found {
			break
		}
	}
	if !found {
		return fmt.Errorf("not_found: no loader recognizes plugin %q", id)
	}

	meta, _ := LoadMetadata(path)
	p := &Plugin{ID: id, Path: path, Meta: meta, Handler: handler, Options: map[string]string{}, Templates: map[string]string{}}

	if err := handler.HandleLoad(bot); err != nil {
		return fmt.Errorf("exec_error: %w", err)
	}

	m.mu.Lock()
	m.plugins[id] = p
	m.order = append(m.order, id)
	m.mu.Unlock()
	return nil
}

// Reload calls HandleReload on the stored plugin.
func (m *Manager) Reload(id string, bot Capabilities) error {
	p, ok := m.Get(id)
	if !ok {
		return fmt.Errorf("not_found: plugin %q", id)
	}
	if err := p.Handler.HandleReload(bot); err != nil {
		return fmt.Errorf("exec_error: %w", err)
	}
	return nil
}

// Unload calls HandleUnload then drops the plugin.
func (m *Manager) Unload(id string, bot Capabilities) error {
	m.mu.Lock()
	p, ok := m.plugins[id]
	if ok {
		delete(m.plugins, id)
		for i, x := range m.order {
			if x == id {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("not_found: plugin %q", id)
	}
	p.Handler.HandleUnload(bot)
	return nil
}

// Get returns the loaded plugin by id.
func (m *Manager) Get(id string) (*Plugin, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plugins[id]
	return p, ok
}

// List returns every loaded plugin in insertion order.
func (m *Manager) List() []*Plugin {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Plugin, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.plugins[id])
	}
	return out
}

// SetOptions replaces a plugin's options map.
func (m *Manager) SetOptions(id string, opts map[string]string) error {
	p, ok := m.Get(id)
	if !ok {
		return fmt.Errorf("not_found: plugin %q", id)
	}
	m.mu.Lock()
	p.Options = opts
	m.mu.Unlock()
	return nil
}

// SetTemplates replaces a plugin's template map.
func (m *Manager) SetTemplates(id string, tmpl map[string]string) error {
	p, ok := m.Get(id)
	if !ok {
		return fmt.Errorf("not_found: plugin %q", id)
	}
	m.mu.Lock()
	p.Templates = tmpl
	m.mu.Unlock()
	return nil
}

// Dispatch routes one bot-wide event to every loaded plugin in
// insertion order (spec.md §4.3 "Dispatch"): compute the effective
// per-plugin event name and text (§4.5), solve the rule engine, and
// invoke the handler. A handler error is logged against the plugin's
// id and never aborts dispatch to the remaining plugins.
func (m *Manager) Dispatch(bot Capabilities, server, commandChar string, ev event.Event) {
	for _, p := range m.List() {
		effective, effName := effectiveEvent(commandChar, p.ID, ev)
		if !m.engine.Solve(server, ev.Channel(), ev.Origin(), p.ID, effName) {
			continue
		}
		m.invoke(bot, p, effective, effName)
	}
}

// invoke runs one plugin handler with both error and panic isolation:
// a misbehaving plugin (native-loaded code in particular) must not
// abort dispatch to the plugins after it (spec.md §4.3 step 3).
func (m *Manager) invoke(bot Capabilities, p *Plugin, ev event.Event, effName string) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Warn().Str("plugin", p.ID).Str("event", effName).Interface("panic", r).Msg("plugin handler panicked")
		}
	}()
	if err := p.Handler.Handle(bot, ev); err != nil {
		m.log.Warn().Err(err).Str("plugin", p.ID).Str("event", effName).Msg("plugin handler error")
	}
}

// effectiveEvent computes the per-plugin event a message dispatch
// presents (spec.md §4.5): a channel/private message whose text begins
// with "<command-char><plugin-id>" is onCommand (text with that token
// stripped) for that plugin, onMessage unchanged for every other one.
func effectiveEvent(commandChar, pluginID string, ev event.Event) (event.Event, string) {
	msg, ok := ev.(event.Message)
	if !ok {
		return ev, ev.Name()
	}
	prefix := commandChar + pluginID
	rest, matched := stripCommandPrefix(msg.Text, prefix)
	if !matched {
		return ev, ev.Name()
	}
	cmd := event.NewCommand(msg.Server(), msg.Origin(), msg.Channel(), rest)
	return cmd, cmd.Name()
}

func stripCommandPrefix(text, prefix string) (rest string, ok bool) {
	if len(text) < len(prefix) || text[:len(prefix)] != prefix {
		return "", false
	}
	tail := text[len(prefix):]
	if tail != "" && tail[0] != ' ' && tail[0] != '\t' {
		return "", false
	}
	i := 0
	for i < len(tail) && (tail[i] == ' ' || tail[i] == '\t') {
		i++
	}
	return tail[i:], true
}
