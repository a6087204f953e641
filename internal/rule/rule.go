// Package rule implements the ordered accept/drop filter evaluated
// per (server, channel, origin, plugin, event) tuple before a plugin
// sees a dispatched event (spec.md §4.2).
package rule

import (
	"fmt"
	"strings"

	"github.com/irccd/irccd/internal/event"
)

// Action is the effect a matching rule has on the running decision.
type Action int

const (
	Accept Action = iota
	Drop
)

func (a Action) String() string {
	if a == Drop {
		return "drop"
	}
	return "accept"
}

// ParseAction converts "accept"/"drop" to an Action, case-insensitive.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(s) {
	case "accept", "":
		return Accept, nil
	case "drop":
		return Drop, nil
	default:
		return Accept, fmt.Errorf("invalid_action: %q", s)
	}
}

// set is a criterion: empty means wildcard (matches anything).
// Comparisons are case-insensitive, as IRC names always are.
type set map[string]bool

func newSet(values []string) set {
	if len(values) == 0 {
		return nil
	}
	s := make(set, len(values))
	for _, v := range values {
		s[strings.ToLower(v)] = true
	}
	return s
}

func (s set) matches(value string) bool {
	if len(s) == 0 {
		return true
	}
	return s[strings.ToLower(value)]
}

func (s set) slice() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	return out
}

// add and remove are copy-on-write: Rule.Edit must be able to discard
// a failed mutation without disturbing the rule it started from,
// which a shared, in-place-mutated map would violate.
func (s set) add(values []string) set {
	out := s.clone()
	if out == nil && len(values) > 0 {
		out = make(set, len(values))
	}
	for _, v := range values {
		out[strings.ToLower(v)] = true
	}
	return out
}

func (s set) remove(values []string) set {
	if len(s) == 0 || len(values) == 0 {
		return s
	}
	out := s.clone()
	for _, v := range values {
		delete(out, strings.ToLower(v))
	}
	return out
}

func (s set) clone() set {
	if s == nil {
		return nil
	}
	out := make(set, len(s))
	for k := range s {
		out[k] = true
	}
	return out
}

// Rule is one filter entry: servers/channels/origins/plugins/events
// criteria plus the action to apply when all of them match.
type Rule struct {
	servers  set
	channels set
	origins  set
	plugins  set
	events   set
	action   Action
}

// Fields is the plain-value view of a Rule used for construction,
// editing and JSON projection in the command table.
type Fields struct {
	Servers  []string
	Channels []string
	Origins  []string
	Plugins  []string
	Events   []string
	Action   Action
}

// New constructs a Rule, validating that every event name (if any)
// belongs to the canonical set (spec.md §3.1, "invalid_event").
func New(f Fields) (Rule, error) {
	if err := validateEvents(f.Events); err != nil {
		return Rule{}, err
	}
	return Rule{
		servers:  newSet(f.Servers),
		channels: newSet(f.Channels),
		origins:  newSet(f.Origins),
		plugins:  newSet(f.Plugins),
		events:   newSet(f.Events),
		action:   f.Action,
	}, nil
}

func validateEvents(names []string) error {
	for _, n := range names {
		if !event.ValidNames[n] {
			return fmt.Errorf("invalid_event: %q", n)
		}
	}
	return nil
}

// Fields returns the plain-value view of the rule.
func (r Rule) Fields() Fields {
	return Fields{
		Servers:  r.servers.slice(),
		Channels: r.channels.slice(),
		Origins:  r.origins.slice(),
		Plugins:  r.plugins.slice(),
		Events:   r.events.slice(),
		Action:   r.action,
	}
}

// Action reports the rule's action.
func (r Rule) Action() Action { return r.action }

// Match reports whether this single rule matches the 5-tuple: every
// non-wildcard criterion must contain the corresponding value.
func (r Rule) Match(server, channel, origin, plugin, eventName string) bool {
	return r.servers.matches(server) &&
		r.channels.matches(channel) &&
		r.origins.matches(origin) &&
		r.plugins.matches(plugin) &&
		r.events.matches(eventName)
}

// FieldOp is one add-* or remove-* mutation applied by rule-edit.
type FieldOp struct {
	AddServers     []string
	RemoveServers  []string
	AddChannels    []string
	RemoveChannels []string
	AddOrigins     []string
	RemoveOrigins  []string
	AddPlugins     []string
	RemovePlugins  []string
	AddEvents      []string
	RemoveEvents   []string
	SetAction      *Action
}

// Edit applies a FieldOp atomically: a copy of the rule is mutated and
// only swapped in if every addition validates (spec.md §6.2, an
// invalid event name leaves the rule unchanged).
func (r Rule) Edit(op FieldOp) (Rule, error) {
	if err := validateEvents(op.AddEvents); err != nil {
		return r, err
	}
	next := Rule{
		servers:  r.servers.add(op.AddServers).remove(op.RemoveServers),
		channels: r.channels.add(op.AddChannels).remove(op.RemoveChannels),
		origins:  r.origins.add(op.AddOrigins).remove(op.RemoveOrigins),
		plugins:  r.plugins.add(op.AddPlugins).remove(op.RemovePlugins),
		events:   r.events.add(op.AddEvents).remove(op.RemoveEvents),
		action:   r.action,
	}
	if op.SetAction != nil {
		next.action = *op.SetAction
	}
	return next, nil
}
