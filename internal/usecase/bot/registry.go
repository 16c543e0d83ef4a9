package bot

import (
	"sort"
	"sync"
)

// Registry maps session ids to their controllers.
// At most one controller is registered per id at any time.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*controller
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*controller)}
}

// InsertIfAbsent registers c under id. Reports false if id is taken.
func (r *Registry) InsertIfAbsent(id string, c *controller) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[id]; exists {
		return false
	}
	r.sessions[id] = c
	return true
}

// Get returns the controller registered under id
func (r *Registry) Get(id string) (*controller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.sessions[id]
	return c, ok
}

// Remove deregisters id if it is still held by c
func (r *Registry) Remove(id string, c *controller) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.sessions[id]; !ok || cur != c {
		return false
	}
	delete(r.sessions, id)
	return true
}

// List returns registered controllers ordered by id
func (r *Registry) List() []*controller {
	r.mu.RLock()
	out := make([]*controller, 0, len(r.sessions))
	for _, c := range r.sessions {
		out = append(out, c)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Len returns the number of registered sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
