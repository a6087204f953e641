package rule

import (
	"fmt"
	"sync"
)

// Engine is the ordered rule list plus the solve operation. It is
// safe for concurrent use, though spec.md's single-executor model
// means contention never actually occurs in practice.
type Engine struct {
	mu    sync.RWMutex
	rules []Rule
}

// NewEngine returns an empty engine; an empty rule list solves to
// accept for every tuple (spec.md §8, "Rule-engine default is accept").
func NewEngine() *Engine {
	return &Engine{}
}

// Add appends a rule to the end of the list.
func (e *Engine) Add(r Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = append(e.rules, r)
}

// Insert places a rule at index, clamped to [0, len(rules)].
func (e *Engine) Insert(r Rule, index int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 {
		index = 0
	}
	if index > len(e.rules) {
		index = len(e.rules)
	}
	e.rules = append(e.rules, Rule{})
	copy(e.rules[index+1:], e.rules[index:])
	e.rules[index] = r
}

// Remove deletes the rule at index.
func (e *Engine) Remove(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.rules) {
		return fmt.Errorf("invalid_index: %d", index)
	}
	e.rules = append(e.rules[:index], e.rules[index+1:]...)
	return nil
}

// Get returns the rule at index.
func (e *Engine) Get(index int) (Rule, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if index < 0 || index >= len(e.rules) {
		return Rule{}, fmt.Errorf("invalid_index: %d", index)
	}
	return e.rules[index], nil
}

// List returns a snapshot of every rule in order.
func (e *Engine) List() []Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Len reports the number of rules.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.rules)
}

// Edit applies a FieldOp to the rule at index atomically.
func (e *Engine) Edit(index int, op FieldOp) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.rules) {
		return fmt.Errorf("invalid_index: %d", index)
	}
	next, err := e.rules[index].Edit(op)
	if err != nil {
		return err
	}
	e.rules[index] = next
	return nil
}

// Move relocates the rule at from to position to. to may be >= Len(),
// meaning "append at end" (spec.md §4.2).
func (e *Engine) Move(from, to int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if from < 0 || from >= len(e.rules) {
		return fmt.Errorf("invalid_index: %d", from)
	}
	r := e.rules[from]
	e.rules = append(e.rules[:from], e.rules[from+1:]...)
	if to < 0 {
		to = 0
	}
	if to > len(e.rules) {
		to = len(e.rules)
	}
	e.rules = append(e.rules, Rule{})
	copy(e.rules[to+1:], e.rules[to:])
	e.rules[to] = r
	return nil
}

// Solve walks the rule list in order starting from a default decision
// of accept; each matching rule overwrites the running decision with
// its own action, so the last matching rule wins (spec.md §4.2, §8).
func (e *Engine) Solve(server, channel, origin, plugin, eventName string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	decision := Accept
	for _, r := range e.rules {
		if r.Match(server, channel, origin, plugin, eventName) {
			decision = r.Action()
		}
	}
	return decision == Accept
}
