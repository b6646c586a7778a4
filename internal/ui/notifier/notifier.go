// Package notifier fans view updates out to connected SSE streams.
package notifier

import "sync"

// Reason says why subscribers should redraw.
type Reason string

// Update reasons.
const (
	// ReasonFrame means a session's page changed after a frame.
	ReasonFrame Reason = "frame"
	// ReasonReload means the snapshot was re-read from disk.
	ReasonReload Reason = "reload"
	// ReasonAssets means static assets were rebuilt and pages should reload.
	ReasonAssets Reason = "assets"
)

// Update is one redraw request. Seq increases with every broadcast.
type Update struct {
	Reason Reason
	Seq    uint64
}

// Notifier broadcasts updates to all subscribed listeners. A listener that
// has not drained its channel only sees the most recent update; the view
// it re-renders is always current, so older ones carry nothing extra.
type Notifier struct {
	mu        sync.Mutex
	seq       uint64
	listeners map[chan Update]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan Update]struct{}),
	}
}

// Subscribe returns a channel that receives updates.
// The caller must call Unsubscribe when done.
func (n *Notifier) Subscribe() chan Update {
	ch := make(chan Update, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan Update) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.listeners[ch]; !ok {
		return
	}
	delete(n.listeners, ch)
	close(ch)
}

// Broadcast sends an update to all listeners without blocking.
func (n *Notifier) Broadcast(reason Reason) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.seq++
	u := Update{Reason: reason, Seq: n.seq}
	for ch := range n.listeners {
		select {
		case ch <- u:
			continue
		default:
		}
		// Replace the pending update with the newer one.
		select {
		case <-ch:
		default:
		}
		ch <- u
	}
}

// Len returns the number of subscribed listeners.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}
