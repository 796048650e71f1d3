package client

import (
	"sync"
	"time"
)

// debouncer coalesces bursts of calls into one execution. Each schedule
// cancels any still-pending predecessor; only the last call in a burst
// runs, with its own arguments.
type debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	timer   *time.Timer
	pending chan *Response
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{window: window}
}

// schedule arranges for fn to run after the debounce window and returns a
// channel that yields its result. If a newer schedule arrives first, the
// returned channel is closed without a value and fn never runs.
func (d *debouncer) schedule(fn func() *Response) <-chan *Response {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Stop reports whether the timer was still pending; if it already
	// fired, the old channel will receive its result and must not be
	// closed here.
	if d.timer != nil && d.timer.Stop() {
		close(d.pending)
	}

	ch := make(chan *Response, 1)
	d.pending = ch
	d.timer = time.AfterFunc(d.window, func() {
		ch <- fn()
		close(ch)
	})
	return ch
}
