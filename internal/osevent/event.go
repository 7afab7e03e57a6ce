// Package osevent implements the event handle rwlatch parks its
// waiters on: os_event_create/reset/wait/signal in the source this
// package is modeled on.
//
// The generation-counter-plus-channel shape is grounded on the
// reserve/wait pairing in the sync-array (internal/syncarray) and on
// the binary-semaphore waiter used by vanadium's nsync.Mu
// (other_examples/...vanadium-go.lib__nsync-mu.go): a waiter must
// capture the event's generation *before* it re-checks the condition
// it's waiting on, or a signal sent in between is lost.
package osevent

import "sync"

// Event is a multi-waiter wakeup gate. Signal wakes every goroutine
// currently blocked in Wait and starts a new generation; Reset returns
// the current generation, and a Wait on that value blocks until the
// next Signal.
type Event struct {
	mu  sync.Mutex
	gen uint64
	ch  chan struct{}
}

// New creates an Event in the "not signalled" state.
func New() *Event {
	return &Event{ch: make(chan struct{})}
}

// Reset records the event's current generation counter and returns it.
// The caller must call Reset before re-checking the condition it is
// about to wait on, and pass the returned counter to Wait: this is
// step (1) of the park protocol in spec.md 4.1/4.2 ("record the
// counter value of event with os_event_reset").
func (e *Event) Reset() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen
}

// Wait blocks until Signal has been called with a generation newer
// than counter, or returns immediately if that has already happened.
func (e *Event) Wait(counter uint64) {
	e.mu.Lock()
	if e.gen != counter {
		e.mu.Unlock()
		return
	}
	ch := e.ch
	e.mu.Unlock()
	<-ch
}

// Signal wakes every goroutine currently parked in Wait and arms a new
// generation so that future Wait calls block again until the next
// Signal. Mirrors os_event_signal/os_event_reset-after-signal.
func (e *Event) Signal() {
	e.mu.Lock()
	defer e.mu.Unlock()
	close(e.ch)
	e.ch = make(chan struct{})
	e.gen++
}

// Destroy releases the event. Once destroyed an Event must not be used
// again; it exists to mirror os_event_destroy at rw_lock_free_func time
// so the collaborator lifetime is explicit in the API even though Go's
// GC reclaims the channel regardless.
func (e *Event) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ch = nil
}
