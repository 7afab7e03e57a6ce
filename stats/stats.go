// Package stats implements the per-mode counters rw_lock_stats_t keeps
// in original_source/storage/innobase/sync/sync0rw.cc
// (rw_s_spin_wait_count, rw_x_os_wait_count, rw_x_spin_round_count,
// ...), generalized to the S/SX/X modes of spec.md.
//
// The counter shape (plain sync/atomic fields rather than a dedicated
// metrics dependency) follows other_examples/...mantisdb...rwlock.go's
// LockMetrics and other_examples/...m3db-m3x__sync-debug_mutex.go: both
// use bare atomic int64s for per-lock accounting instead of pulling in
// a metrics client, which is the right call here too since these
// counters are read back in-process (by Registry.Stats, the
// rwlatchdump stats command, and tests), never
// exported to an external system.
package stats

import "sync/atomic"

// Mode indexes the per-mode counter arrays. Kept independent of
// rwlatch.Mode so this package has no import-cycle dependency on the
// core.
type Mode int

const (
	S Mode = iota
	SX
	X
	numModes
)

// Counters holds spin-wait, spin-round, and OS (park) wait counts for
// one latch, broken out per mode, mirroring rw_lock_stats_t's
// rw_{s,sx,x}_{spin_wait,spin_round,os_wait}_count fields.
type Counters struct {
	spinWaitCount  [numModes]int64
	spinRoundCount [numModes]int64
	osWaitCount    [numModes]int64
}

// IncSpinWait records that mode's fast path missed once and entered the
// spin loop.
func (c *Counters) IncSpinWait(m Mode) {
	atomic.AddInt64(&c.spinWaitCount[m], 1)
}

// AddSpinRounds records how many spin iterations were spent before
// either succeeding or giving up to park.
func (c *Counters) AddSpinRounds(m Mode, n int64) {
	if n == 0 {
		return
	}
	atomic.AddInt64(&c.spinRoundCount[m], n)
}

// IncOSWait records one trip through the sync-array (a real park).
func (c *Counters) IncOSWait(m Mode) {
	atomic.AddInt64(&c.osWaitCount[m], 1)
}

// Snapshot is a point-in-time read of a Counters, safe to pass by
// value and print.
type Snapshot struct {
	SpinWaitCount  [3]int64
	SpinRoundCount [3]int64
	OSWaitCount    [3]int64
}

// Snapshot reads all counters atomically (each field independently;
// spec.md does not require cross-field consistency for diagnostics).
func (c *Counters) Snapshot() Snapshot {
	var s Snapshot
	for m := Mode(0); m < numModes; m++ {
		s.SpinWaitCount[m] = atomic.LoadInt64(&c.spinWaitCount[m])
		s.SpinRoundCount[m] = atomic.LoadInt64(&c.spinRoundCount[m])
		s.OSWaitCount[m] = atomic.LoadInt64(&c.osWaitCount[m])
	}
	return s
}

// Add merges another Snapshot's values into this aggregate Snapshot,
// used by a Registry to roll up per-latch stats process-wide the way
// the source's rw_lock_stats global accumulates across every rw_lock_t.
func (s *Snapshot) Add(other Snapshot) {
	for m := 0; m < 3; m++ {
		s.SpinWaitCount[m] += other.SpinWaitCount[m]
		s.SpinRoundCount[m] += other.SpinRoundCount[m]
		s.OSWaitCount[m] += other.OSWaitCount[m]
	}
}
