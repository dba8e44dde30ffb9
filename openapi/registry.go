package openapi

import "sync"

// Registry is a collection mapping handler names to their OpenAPI
// metadata. A Registry is safe for concurrent use: registration
// typically happens during single-threaded program initialization, but
// warm multi-threaded hosts may read it from concurrent in-flight
// requests.
//
// Construct isolated instances with NewRegistry for tests; shared
// library code uses the process-wide DefaultRegistry.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Metadata
	order   []string // registration order, for deterministic assembly
}

// DefaultRegistry is the process-wide registry used by package-level
// registration. It lives for the process lifetime; within a warm
// instance it acts as a cross-invocation cache.
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*Metadata),
	}
}

// Register inserts or overwrites the entry for meta's handler name.
// There is no uniqueness enforcement: the last registration for a given
// handler wins, which keeps re-registration idempotent. Re-registering
// moves the entry to the end of the registration order, so the latest
// registration also wins later (route, method) conflicts during
// assembly.
func (r *Registry) Register(meta *Metadata) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := meta.HandlerName
	if _, exists := r.entries[key]; exists {
		for i, name := range r.order {
			if name == key {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}

	r.entries[key] = meta
	r.order = append(r.order, key)
}

// Get returns the metadata registered for the given handler name.
func (r *Registry) Get(handlerName string) (*Metadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, ok := r.entries[handlerName]
	return meta, ok
}

// Snapshot returns all registered metadata in registration order.
// The returned slice is a copy; the Metadata values it points to are
// immutable after registration and must not be mutated by callers.
func (r *Registry) Snapshot() []*Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Metadata, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name])
	}
	return out
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}
