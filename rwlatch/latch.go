// Copyright 2020 Nathan Taylor (nbtaylor@gmail.com)
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package rwlatch implements a three-mode reader/writer/shared-exclusive
// latch for a storage engine's hot paths: buffer-pool frames, dictionary
// structures, index pages.
//
// A latch has three states a caller may request:
//
//   - S  (shared): read access, any number of holders.
//   - X  (exclusive): write access, mutually exclusive with everything
//     but recursive acquisition by its own holder.
//   - SX (shared-exclusive): compatible with S, incompatible with X and
//     other SX; used by a writer that wants readers to keep going while
//     it holds a place in line to eventually take X.
//
//	+--------+---+----+---+
//	|Request | S | SX | X |
//	+--------+---+----+---+
//	|S       | + | +  | - |
//	|SX      | + | -  | - |
//	|X       | - | -  | - |
//	+--------+---+----+---+
//
// Every observable state - unlocked, S-count, SX-held, X-held,
// X-held-with-SX, recursive X depth, and the existence of a waiting
// writer - is encoded in a single signed 32-bit atomic counter,
// lockWord, so that every transition is a single atomic update. This is
// the one design decision that must never be undone: see state.go.
//
// The package has no recoverable errors. Violations of its invariants -
// freeing a held latch, releasing a latch never acquired, acquiring X
// while already holding S - are programmer errors and panic.
package rwlatch

import (
	"sync"
	"sync/atomic"

	"github.com/go-innodb/rwlatch/internal/gothread"
	"github.com/go-innodb/rwlatch/internal/osevent"
	"github.com/go-innodb/rwlatch/internal/syncarray"
	"github.com/go-innodb/rwlatch/stats"
)

// Mode is one of the three lock modes a caller may request.
type Mode int

const (
	S Mode = iota
	SX
	X
)

func (m Mode) String() string {
	switch m {
	case S:
		return "S"
	case SX:
		return "SX"
	case X:
		return "X"
	default:
		return "?"
	}
}

// Flag is a bitmask over Mode, used by OwnFlagged.
type Flag int

const (
	FlagS  Flag = 1 << S
	FlagSX Flag = 1 << SX
	FlagX  Flag = 1 << X
)

// Level is a hierarchy number used only by the optional LevelValidator
// hook for debug-build deadlock-ordering checks (spec 4.9). It carries
// no behavior of its own.
type Level int

// XLockDecr (D) and its half (H) are the encoding constants described in
// state.go. D must be comfortably larger than the largest reader count
// the workload can reach; the InnoDB default is 0x20000000.
const XLockDecr int32 = 0x20000000

const halfDecr = XLockDecr / 2

// Latch is a fixed-location reader/writer/shared-exclusive lock. New
// allocates it and registers its address, so a larger struct (a
// buffer-pool frame, an index page header) holds it as a *Latch; a
// copied Latch value is not a working latch.
type Latch struct {
	lockWord     int32 // atomic; see state.go
	writerThread int64 // atomic gothread.ID; 0 = none
	sxRecursive  uint32
	waiters      uint32 // atomic 0/1

	event       *osevent.Event
	waitExEvent *osevent.Event
	arr         *syncarray.Array
	counters    stats.Counters

	tunables       *Tunables
	levelValidator LevelValidator
	level          Level

	debugMu   sync.Mutex
	debugList []*debugRecord

	lastXFile string
	lastXLine int
	cfile     string
	cline     int

	registry *Registry
}

// LevelValidator is called on every non-recursive acquire made with
// pass == false, mirroring
// sync_check_lock_validate's latch-hierarchy assertion. The default (nil)
// performs no check; a caller that maintains a global latch-ordering
// table can supply one to get that assertion back.
type LevelValidator func(level Level, mode Mode) error

// Option configures a Latch at creation time.
type Option func(*Latch)

// WithTunables overrides the spin-round count and per-round delay.
func WithTunables(t *Tunables) Option {
	return func(l *Latch) { l.tunables = t }
}

// WithRegistry registers the latch somewhere other than the package's
// DefaultRegistry - useful for tests that don't want to pollute global
// diagnostic state.
func WithRegistry(r *Registry) Option {
	return func(l *Latch) { l.registry = r }
}

// WithLevelValidator installs a hierarchy-order check run on
// non-recursive acquires made with pass == false.
func WithLevelValidator(v LevelValidator) Option {
	return func(l *Latch) { l.levelValidator = v }
}

// New creates a latch in the unlocked state (lockWord == D) at the given
// hierarchy level, registers it in its registry (DefaultRegistry unless
// WithRegistry was passed), and returns it. Mirrors rw_lock_create_func.
func New(level Level, site string, opts ...Option) *Latch {
	l := &Latch{
		lockWord:    XLockDecr,
		event:       osevent.New(),
		waitExEvent: osevent.New(),
		arr:         syncarray.New(),
		tunables:    DefaultTunables(),
		level:       level,
		cfile:       site,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.registry == nil {
		l.registry = DefaultRegistry
	}
	l.registry.track(l)
	return l
}

// Free destroys a latch. Precondition: lockWord == D (fully unlocked);
// violating it is a programmer error and panics, mirroring
// rw_lock_free_func's ut_a(lock->lock_word == X_LOCK_DECR).
func (l *Latch) Free() {
	if atomic.LoadInt32(&l.lockWord) != XLockDecr {
		panic(errLatchNotUnlocked(l))
	}
	l.registry.untrack(l)
	l.event.Destroy()
	l.waitExEvent.Destroy()
}

// Stats returns a snapshot of this latch's spin/park counters.
func (l *Latch) Stats() stats.Snapshot {
	return l.counters.Snapshot()
}

// CallSite returns a short "file:line" string for the caller one frame
// up, for use as the site argument to SLock/XLock/SXLock. It stands in
// for the source's file_name/line parameters (spec 4.9, "Per-file/line
// provenance").
func CallSite() string {
	return callSite(2)
}

// selfID extracts the current writer identity, or gothread.None.
func (l *Latch) selfID() gothread.ID {
	return gothread.ID(atomic.LoadInt64(&l.writerThread))
}

func (l *Latch) setWriterThread(id gothread.ID) {
	atomic.StoreInt64(&l.writerThread, int64(id))
}

func (l *Latch) clearWriterThread() {
	atomic.StoreInt64(&l.writerThread, int64(gothread.None))
}
