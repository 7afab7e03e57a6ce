// Package gothread gives goroutines a stable, comparable identity.
//
// Go deliberately exposes no goroutine-id API, but rwlatch's recursive
// acquire and ownership-transfer semantics need one: InnoDB's
// os_thread_get_curr_id()/os_thread_eq() give every OS thread a stable
// id that survives across an x-lock/x-lock/x-unlock sequence. A Handle
// plays that role here: create one per goroutine with New() and carry
// it through the call stack the way a context.Context is carried.
package gothread

import (
	"runtime"
	"sync/atomic"
)

// ID is a process-wide unique, comparable goroutine identity.
type ID int64

// None is the zero value, meaning "no thread."
const None ID = 0

var counter int64

// Handle is a goroutine's capability to assert its own ID. Each
// goroutine should create exactly one Handle (typically at the point
// where it starts doing latch-protected work) and thread it through
// every call that needs to prove "this is still the same thread."
type Handle struct {
	id ID
}

// New mints a fresh Handle with a previously-unused ID. Call once per
// goroutine; sharing a Handle across goroutines defeats its purpose.
func New() *Handle {
	return &Handle{id: ID(atomic.AddInt64(&counter, 1))}
}

// Self returns the identity this Handle asserts. It is stable for the
// lifetime of the Handle.
func (h *Handle) Self() ID {
	if h == nil {
		return None
	}
	return h.id
}

// Eq reports whether the calling thread's handle and an identity read
// from shared state (e.g. Latch.writerThread) denote the same thread.
// Mirrors os_thread_eq(a, b).
func Eq(a, b ID) bool {
	return a != None && a == b
}

// Yield asks the scheduler to run other goroutines before resuming the
// caller. Used by the spin-then-park loops (spec's os_thread_yield()).
func Yield() {
	runtime.Gosched()
}
