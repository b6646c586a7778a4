package minimap

import "sync"

// Listener receives window-level pointer events.
type Listener interface {
	PointerMove(y float64)
	PointerUp()
}

// Window registers window-level pointer listeners.
// Listen and Unlisten report whether they changed the registration.
type Window interface {
	Listen(Listener) bool
	Unlisten(Listener) bool
}

// PointerHub is an in-process Window. Surfaces forward raw pointer events to
// it and it dispatches them to whoever is listening.
type PointerHub struct {
	mu        sync.Mutex
	listeners []Listener
}

// Listen registers l. Registering the same listener twice is a no-op.
func (h *PointerHub) Listen(l Listener) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, existing := range h.listeners {
		if existing == l {
			return false
		}
	}
	h.listeners = append(h.listeners, l)
	return true
}

// Unlisten removes l.
func (h *PointerHub) Unlisten(l Listener) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, existing := range h.listeners {
		if existing == l {
			h.listeners = append(h.listeners[:i], h.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of registered listeners.
func (h *PointerHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}

// Move dispatches a pointer move.
func (h *PointerHub) Move(y float64) {
	for _, l := range h.snapshot() {
		l.PointerMove(y)
	}
}

// Up dispatches a pointer release.
func (h *PointerHub) Up() {
	for _, l := range h.snapshot() {
		l.PointerUp()
	}
}

func (h *PointerHub) snapshot() []Listener {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Listener, len(h.listeners))
	copy(out, h.listeners)
	return out
}
