package sdk

import (
	"sync"
)

// registry hands out opaque tokens that the native side passes back to our
// callbacks. A token is never reused while it is registered, and zero is
// never issued so that a NULL callback data pointer is always unknown.
type registry struct {
	mu      sync.Mutex
	next    uintptr
	entries map[uintptr]any
}

func newRegistry() *registry {
	return &registry{
		entries: make(map[uintptr]any),
	}
}

func (r *registry) register(v any) uintptr {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		r.next++
		if r.next == 0 {
			continue
		}

		if _, taken := r.entries[r.next]; !taken {
			break
		}
	}

	r.entries[r.next] = v

	return r.next
}

func (r *registry) lookup(token uintptr) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.entries[token]

	return v, ok
}

// take removes the token and returns its value. One-shot callbacks use it.
func (r *registry) take(token uintptr) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.entries[token]
	if ok {
		delete(r.entries, token)
	}

	return v, ok
}

// release removes the token, reporting whether it was registered.
func (r *registry) release(token uintptr) bool {
	_, ok := r.take(token)

	return ok
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}
