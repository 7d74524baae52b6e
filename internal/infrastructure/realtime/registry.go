package realtime

import "sync"

// Registry binds each user to the realtime connection it registered last.
// A user has at most one binding; registering again replaces it.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]string
}

func NewRegistry() *Registry {
	return &Registry{byUser: make(map[string]string)}
}

// Register binds userID to connID, replacing any previous binding.
func (r *Registry) Register(userID, connID string) {
	r.mu.Lock()
	r.byUser[userID] = connID
	r.mu.Unlock()
}

// OnDisconnect removes the binding whose connection is connID. Bindings that
// were since replaced by a newer connection are left alone.
func (r *Registry) OnDisconnect(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for userID, id := range r.byUser {
		if id == connID {
			delete(r.byUser, userID)
			return
		}
	}
}

func (r *Registry) Lookup(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUser[userID]
	return id, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}
