// Package syncarray implements the wait-cell table rwlatch's slow path
// reserves a cell from before blocking on an osevent.Event.
//
// Grounded on the reserve/wait/free triad in
// original_source/storage/innobase/sync/sync0rw.cc
// (sync_array_get_and_reserve_cell, sync_array_wait_event,
// sync_array_free_cell), and, for the Go shape of a mutex-protected
// slot table recording who waits on what, on
// other_examples/...jakewins-cockroach__pkg-storage-spanlatch-manager.go
// (a table of pending requests keyed by what they wait on) and
// other_examples/...vanadium-go.lib__nsync-mu.go's spinlock-protected
// waiter list. spec.md scopes the sync-array's *internals* (kernel
// event handoff, deadlock detection) out of the core's concern; this
// package gives the core something concrete to reserve cells from.
package syncarray

import (
	"sync"

	"github.com/go-innodb/rwlatch/internal/osevent"
)

// Mode identifies what kind of wait a cell represents, matching the
// lock-type tags InnoDB's debug info and sync array carry:
// RW_LOCK_S, RW_LOCK_X, RW_LOCK_SX, RW_LOCK_X_WAIT.
type Mode int

const (
	ModeS Mode = iota
	ModeX
	ModeSX
	ModeXWait
)

func (m Mode) String() string {
	switch m {
	case ModeS:
		return "S"
	case ModeX:
		return "X"
	case ModeSX:
		return "SX"
	case ModeXWait:
		return "X_WAIT"
	default:
		return "?"
	}
}

// Cell is a single reservation: a waiter blocked on ev, waiting for a
// condition that became true sometime at or after generation.
type Cell struct {
	Mode       Mode
	Site       string
	generation uint64
	event      *osevent.Event
	arr        *Array
}

// Array is a table of live cells, registered so a diagnostic dump or an
// external deadlock detector can walk what every goroutine is blocked
// on. spec.md explicitly keeps deadlock detection itself out of the
// core's scope; Array only exposes the data such a detector would need.
type Array struct {
	mu    sync.Mutex
	cells map[*Cell]struct{}
}

// New returns an empty Array. rwlatch.New creates one Array per latch,
// so an Array holds the waits of a single latch.
func New() *Array {
	return &Array{cells: make(map[*Cell]struct{})}
}

// Reserve captures ev's current generation (so a signal racing with
// this call is never missed) and registers a cell describing the wait.
// Mirrors sync_array_get_and_reserve_cell.
func (a *Array) Reserve(ev *osevent.Event, mode Mode, site string) *Cell {
	c := &Cell{
		Mode:       mode,
		Site:       site,
		generation: ev.Reset(),
		event:      ev,
		arr:        a,
	}
	a.mu.Lock()
	a.cells[c] = struct{}{}
	a.mu.Unlock()
	return c
}

// Wait blocks until the cell's event is signalled at or after the
// reserved generation, then removes the cell from its Array. Mirrors
// sync_array_wait_event.
func (c *Cell) Wait() {
	c.event.Wait(c.generation)
	c.arr.Free(c)
}

// Free releases a cell without waiting on it, used when a last-chance
// retry of the fast path succeeds between Reserve and Wait. Mirrors
// sync_array_free_cell.
func (a *Array) Free(c *Cell) {
	a.mu.Lock()
	delete(a.cells, c)
	a.mu.Unlock()
}

// CellInfo is a snapshot of one live reservation, for diagnostics or an
// external deadlock detector.
type CellInfo struct {
	Mode Mode
	Site string
}

// Cells returns a snapshot of all currently-reserved cells.
func (a *Array) Cells() []CellInfo {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]CellInfo, 0, len(a.cells))
	for c := range a.cells {
		out = append(out, CellInfo{Mode: c.Mode, Site: c.Site})
	}
	return out
}
