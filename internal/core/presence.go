package core

// Registry tracks which connections are online. It is not safe for
// concurrent use: the hub loop is the only goroutine that may touch it.
type Registry struct {
	entries map[string]Identity
	order   []string // connection ids in join order
}

// NewRegistry constructs an empty registry. Presence always starts empty on
// process start; it is never persisted.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Identity)}
}

// Join registers a connection under its identity. Returns false without
// side effects if the connection id is already present.
func (r *Registry) Join(connID string, identity Identity) bool {
	if _, exists := r.entries[connID]; exists {
		return false
	}
	r.entries[connID] = identity
	r.order = append(r.order, connID)
	return true
}

// Leave removes a connection. Returns false if it was not present.
func (r *Registry) Leave(connID string) bool {
	if _, exists := r.entries[connID]; !exists {
		return false
	}
	delete(r.entries, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Count returns the number of live connections. The same account on two
// connections counts twice.
func (r *Registry) Count() int {
	return len(r.entries)
}

// Snapshot is the derived presence view pushed to connections on every
// join and leave.
type Snapshot struct {
	Online int
	Users  []Identity
}

// Snapshot recomputes the presence view, listing identities in join order.
func (r *Registry) Snapshot() *Snapshot {
	users := make([]Identity, 0, len(r.order))
	for _, connID := range r.order {
		users = append(users, r.entries[connID])
	}
	return &Snapshot{Online: len(r.entries), Users: users}
}
