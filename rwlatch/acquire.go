package rwlatch

import (
	"sync/atomic"

	"github.com/go-innodb/rwlatch/internal/gothread"
	"github.com/go-innodb/rwlatch/internal/osevent"
	"github.com/go-innodb/rwlatch/internal/syncarray"
	"github.com/go-innodb/rwlatch/stats"
)

// SLock acquires the latch in shared mode, blocking if it is held in X
// or there is a waiting X reservation. pass indicates the caller
// intends to release on another goroutine (see Handle docs); site is
// typically rwlatch.CallSite(). Mirrors rw_lock_s_lock_func /
// rw_lock_s_lock_spin.
func (l *Latch) SLock(self *gothread.Handle, pass bool, site string) {
	id := self.Self()
	fastPath := func() bool { return l.sLockLow(id, pass, site) }
	keepSpinning := func() bool { return atomic.LoadInt32(&l.lockWord) <= 0 }
	l.spinThenPark(fastPath, keepSpinning, l.event, syncarray.ModeS, stats.S, site)
}

func (l *Latch) sLockLow(id gothread.ID, pass bool, site string) bool {
	ok, _ := decrIfAbove(&l.lockWord, 1, 0)
	if !ok {
		return false
	}
	l.addDebugRecord(id, pass, S, site, true /* recursion never applies to S */)
	return true
}

// XLock acquires the latch in exclusive mode. If the calling thread
// already holds X (and pass == false) this recursively extends its
// grip instead of blocking. Mirrors rw_lock_x_lock_func.
func (l *Latch) XLock(self *gothread.Handle, pass bool, site string) {
	id := self.Self()
	if l.Own(self, S) {
		panic(errSAlreadyHeldByX(l))
	}
	fastPath := func() bool { return l.xLockLow(id, pass, site) }
	keepSpinning := func() bool { return atomic.LoadInt32(&l.lockWord) <= halfDecr }
	l.spinThenPark(fastPath, keepSpinning, l.event, syncarray.ModeX, stats.X, site)
}

// xLockLow is rw_lock_x_lock_low: the three-way branch of spec.md 4.3.
func (l *Latch) xLockLow(id gothread.ID, pass bool, site string) bool {
	relock := false
	if ok, _ := decrIfAbove(&l.lockWord, XLockDecr, halfDecr); ok {
		// No readers/SX/X existed (or only readers, now draining):
		// we are the writer or next-writer.
		if !pass {
			l.setWriterThread(id)
		}
		l.drain(0, site)
	} else if !pass && gothread.Eq(l.selfID(), id) {
		relock = true
		if ok2, _ := decrIfAbove(&l.lockWord, XLockDecr, 0); ok2 {
			// We held SX (no X yet) - wait for any other S locks.
			l.drain(-halfDecr, site)
		} else {
			cur := atomic.LoadInt32(&l.lockWord)
			if cur == 0 || cur == -halfDecr {
				atomic.AddInt32(&l.lockWord, -XLockDecr)
			} else {
				atomic.AddInt32(&l.lockWord, -1)
			}
		}
	} else {
		return false
	}

	l.lastXFile, l.lastXLine = parseSite(site)
	l.addDebugRecord(id, pass, X, site, !relock)
	return true
}

// SXLock acquires the latch in shared-exclusive mode: compatible with S,
// incompatible with X and other SX. Mirrors rw_lock_sx_lock_func.
func (l *Latch) SXLock(self *gothread.Handle, pass bool, site string) {
	id := self.Self()
	fastPath := func() bool { return l.sxLockLow(id, pass, site) }
	keepSpinning := func() bool { return atomic.LoadInt32(&l.lockWord) <= halfDecr }
	l.spinThenPark(fastPath, keepSpinning, l.event, syncarray.ModeSX, stats.SX, site)
}

// sxLockLow is rw_lock_sx_lock_low.
func (l *Latch) sxLockLow(id gothread.ID, pass bool, site string) bool {
	relock := false
	if ok, _ := decrIfAbove(&l.lockWord, halfDecr, halfDecr); ok {
		if !pass {
			l.setWriterThread(id)
		}
		atomic.StoreUint32(&l.sxRecursive, 1)
	} else if !pass && gothread.Eq(l.selfID(), id) {
		relock = true
		if atomic.AddUint32(&l.sxRecursive, 1) == 1 {
			atomic.AddInt32(&l.lockWord, -halfDecr)
		}
	} else {
		return false
	}

	l.lastXFile, l.lastXLine = parseSite(site)
	l.addDebugRecord(id, pass, SX, site, !relock)
	return true
}

// spinThenPark implements the spin-then-park loop shared by S, X, and SX
// acquisition (spec.md 4.2-4.5): try the fast path, spin up to
// tunables.SpinRounds times while keepSpinning holds, yield once the
// budget is spent, retry, and if that also fails reserve a wait cell,
// set waiters, retry once more (freeing the cell on success), and
// finally block.
func (l *Latch) spinThenPark(fastPath func() bool, keepSpinning func() bool, ev *osevent.Event, cellMode syncarray.Mode, sm stats.Mode, site string) {
	if fastPath() {
		return
	}
	l.counters.IncSpinWait(sm)

	for {
		var spins int64
		for uint(spins) < l.tunables.SpinRounds && keepSpinning() {
			spinPause(l.tunables.SpinDelay)
			spins++
		}
		if uint(spins) >= l.tunables.SpinRounds {
			gothread.Yield()
		}
		l.counters.AddSpinRounds(sm, spins)

		if fastPath() {
			return
		}
		if uint(spins) < l.tunables.SpinRounds {
			// The spin condition cleared early but we still lost the
			// race to another acquirer; spin again rather than park.
			continue
		}

		cell := l.arr.Reserve(ev, cellMode, site)
		// Set waiters before the last fast-path retry, so a release
		// that races with us here is guaranteed to see waiters == 1
		// and send a wakeup we would otherwise miss.
		atomic.StoreUint32(&l.waiters, 1)

		if fastPath() {
			l.arr.Free(cell)
			return
		}

		l.counters.IncOSWait(sm)
		cell.Wait()
	}
}
