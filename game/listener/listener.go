// Package listener fans out change notifications to registered callbacks.
package listener

import "sync"

// Func is a callback run when the watched state changes.
type Func func()

// Registry is a thread-safe set of listeners.  The zero value is ready to use.
// Notify runs the listeners outside the registry lock, so a listener may add
// or remove listeners, including itself.
type Registry struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]Func
}

// Add registers the listener and returns a function that removes it.  The
// remove function is idempotent.
func (r *Registry) Add(l Func) (remove func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listeners == nil {
		r.listeners = make(map[int]Func)
	}
	id := r.nextID
	r.nextID++
	r.listeners[id] = l
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners, id)
	}
}

// Notify runs every registered listener once.
func (r *Registry) Notify() {
	r.mu.Lock()
	listeners := make([]Func, 0, len(r.listeners))
	for _, l := range r.listeners {
		listeners = append(listeners, l)
	}
	r.mu.Unlock()
	for _, l := range listeners {
		l()
	}
}
