package schedule

// FrameQueue holds callbacks that must run after the next layout pass.
//
// Each request is tagged with the render generation it belongs to. Flush runs
// the callbacks of the current generation and drops the rest. A FrameQueue is
// owned by the UI loop and is not safe for concurrent use.
type FrameQueue struct {
	pending []frame
}

type frame struct {
	gen uint64
	fn  func()
}

// Request queues fn for the frame after generation gen has been laid out.
func (q *FrameQueue) Request(gen uint64, fn func()) {
	q.pending = append(q.pending, frame{gen: gen, fn: fn})
}

// Flush runs the queued callbacks for generation current and discards stale
// ones. It returns how many ran and how many were dropped.
func (q *FrameQueue) Flush(current uint64) (ran, dropped int) {
	frames := q.pending
	q.pending = nil
	for _, f := range frames {
		if f.gen != current {
			dropped++
			continue
		}
		f.fn()
		ran++
	}
	return ran, dropped
}

// Pending returns the number of queued callbacks.
func (q *FrameQueue) Pending() int {
	return len(q.pending)
}

// Clear drops every queued callback.
func (q *FrameQueue) Clear() {
	q.pending = nil
}
