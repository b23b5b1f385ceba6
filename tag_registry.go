package flexconf

import (
	"fmt"
	"sort"
	"sync"
)

// TagRegistry stores tag rules keyed by tag name. Lookups are case
// sensitive since tag keys come straight from file names.
type TagRegistry struct {
	mu    sync.RWMutex
	rules map[string]TagRule
}

// NewTagRegistry constructs an empty registry.
func NewTagRegistry() *TagRegistry {
	return &TagRegistry{
		rules: make(map[string]TagRule),
	}
}

// Register stores rule under name guarding against duplicates.
func (r *TagRegistry) Register(name string, rule TagRule) error {
	if rule == nil {
		return fmt.Errorf("flexconf: tag rule %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("flexconf: tag name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rules == nil {
		r.rules = make(map[string]TagRule)
	}
	if _, exists := r.rules[name]; exists {
		return fmt.Errorf("flexconf: tag %q already registered", name)
	}
	r.rules[name] = rule
	return nil
}

// MustRegister is Register that panics on error. Meant for package level
// registries assembled at init time.
func (r *TagRegistry) MustRegister(name string, rule TagRule) *TagRegistry {
	if err := r.Register(name, rule); err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the rule registered for name.
func (r *TagRegistry) Lookup(name string) (TagRule, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[name]
	return rule, ok
}

// Len reports the number of registered rules.
func (r *TagRegistry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

// Clone returns a shallow copy of the registry. Rules are shared.
func (r *TagRegistry) Clone() *TagRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &TagRegistry{
		rules: make(map[string]TagRule, len(r.rules)),
	}
	for name, rule := range r.rules {
		clone.rules[name] = rule
	}
	return clone
}

// Names returns registered tag names sorted alphabetically.
func (r *TagRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.rules))
	for name := range r.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
