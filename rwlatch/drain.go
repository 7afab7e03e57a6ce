package rwlatch

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-innodb/rwlatch/internal/syncarray"
	"github.com/go-innodb/rwlatch/stats"
)

// drain is called only by the thread that just performed the successful
// decr_if_nonnegative(lock, D, ...) that reserved the X slot. It waits
// for lockWord to reach threshold - the value at which every reader
// admitted before the reservation has released. threshold is 0 when
// stepping from unlocked/reader-held to X-held, or -halfDecr when the
// caller already held SX. Mirrors rw_lock_x_lock_wait_func.
func (l *Latch) drain(threshold int32, site string) {
	var spins int64
	for atomic.LoadInt32(&l.lockWord) < threshold && uint(spins) < l.tunables.SpinRounds {
		spinPause(l.tunables.SpinDelay)
		spins++
	}
	l.counters.AddSpinRounds(stats.X, spins)

	for atomic.LoadInt32(&l.lockWord) < threshold {
		cell := l.arr.Reserve(l.waitExEvent, syncarray.ModeXWait, site)
		if atomic.LoadInt32(&l.lockWord) < threshold {
			l.counters.IncOSWait(stats.X)
			cell.Wait()
		} else {
			l.arr.Free(cell)
			break
		}
	}
}

// parseSite splits a "file:line" callsite string, tolerating malformed
// input (returns the whole string and line 0).
func parseSite(site string) (string, int) {
	idx := strings.LastIndexByte(site, ':')
	if idx < 0 {
		return site, 0
	}
	line, err := strconv.Atoi(site[idx+1:])
	if err != nil {
		return site, 0
	}
	return site[:idx], line
}
