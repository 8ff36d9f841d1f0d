package llm

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps model ids to completers.
type Registry struct {
	mu         sync.RWMutex
	completers map[string]Completer
}

// NewRegistry returns a registry holding the given completers.
func NewRegistry(cs ...Completer) *Registry {
	r := &Registry{completers: make(map[string]Completer, len(cs))}
	for _, c := range cs {
		r.Register(c)
	}
	return r
}

// Register adds or replaces a completer under its ID.
func (r *Registry) Register(c Completer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completers[c.ID()] = c
}

// Get returns the completer for id.
func (r *Registry) Get(id string) (Completer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.completers[id]
	if !ok {
		return nil, fmt.Errorf("llm %q is not configured", id)
	}
	return c, nil
}

// IDs returns the registered ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.completers))
	for id := range r.completers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
