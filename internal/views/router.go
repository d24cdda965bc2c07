package views

import "sync"

// Router is an in-memory Navigator that remembers every move.
type Router struct {
	mu      sync.Mutex
	current string
	visits  []string
}

// NewRouter starts at route.
func NewRouter(route string) *Router {
	return &Router{current: route}
}

func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *Router) Go(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = route
	r.visits = append(r.visits, route)
}

// Visits returns the routes passed to Go, oldest first.
func (r *Router) Visits() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.visits...)
}
