package schedule

import (
	"sync"
	"time"
)

// Debouncer runs the most recent task once input has been quiet for the delay.
//
// The timer only posts; the sequence check happens on the loop, so a task
// whose timer fired just before Cancel or a newer Trigger is still dropped.
type Debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	timers Timers
	post   Poster
	timer  Timer
	seq    uint64
}

// NewDebouncer creates a debouncer. A nil timers uses RealTimers.
func NewDebouncer(delay time.Duration, post Poster, timers Timers) *Debouncer {
	if timers == nil {
		timers = RealTimers{}
	}
	return &Debouncer{delay: delay, timers: timers, post: post}
}

// Delay returns the quiescence interval.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Trigger replaces any pending task with task and restarts the delay.
func (d *Debouncer) Trigger(task Task) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = d.timers.AfterFunc(d.delay, func() {
		d.post.Post(func() {
			if !d.claim(seq) {
				return
			}
			task()
		})
	})
}

// Cancel drops the pending task, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
}

// Pending reports whether a task is waiting to run.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer) claim(seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if seq != d.seq {
		return false
	}
	d.timer = nil
	return true
}
