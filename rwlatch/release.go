package rwlatch

import (
	"sync/atomic"

	"github.com/go-innodb/rwlatch/internal/gothread"
)

// SUnlock releases one S hold. Mirrors the s_unlock half of spec.md
// 4.6: "increment lock_word by 1; if the post-value reaches the
// threshold that unblocks a waiting X, signal wait_ex_event."
func (l *Latch) SUnlock(self *gothread.Handle, pass bool) {
	nv := atomic.AddInt32(&l.lockWord, 1)
	l.removeDebugRecord(self.Self(), pass, S)
	if nv == 0 || nv == -halfDecr {
		l.waitExEvent.Signal()
	}
}

// XUnlock releases one X hold. If the calling thread's X was recursive,
// this only pops one level; the underlying latch stays X-held until the
// matching number of XUnlock calls have been made. Mirrors
// rw_lock_x_unlock_func, symmetric with xLockLow's three-way branch.
func (l *Latch) XUnlock(self *gothread.Handle, pass bool) {
	cur := atomic.LoadInt32(&l.lockWord)

	var nv int32
	switch cur {
	case 0, -halfDecr:
		// Last X: fully release it. If no SX remains, the latch is
		// no longer owned by anyone.
		nv = atomic.AddInt32(&l.lockWord, XLockDecr)
		if atomic.LoadUint32(&l.sxRecursive) == 0 {
			l.clearWriterThread()
		}
	case -XLockDecr, -(XLockDecr + halfDecr):
		// Popping from recursion depth 2 back to depth 1.
		nv = atomic.AddInt32(&l.lockWord, XLockDecr)
	default:
		// Popping one level off a deeper recursion.
		nv = atomic.AddInt32(&l.lockWord, 1)
	}

	l.removeDebugRecord(self.Self(), pass, X)

	if nv == XLockDecr && atomic.SwapUint32(&l.waiters, 0) == 1 {
		l.event.Signal()
	}
}

// SXUnlock releases one SX hold. Mirrors rw_lock_sx_unlock: decrement
// sxRecursive; once it reaches zero, give the H back to lockWord and,
// if no X remains either, clear writerThread.
func (l *Latch) SXUnlock(self *gothread.Handle, pass bool) {
	rec := atomic.AddUint32(&l.sxRecursive, ^uint32(0)) // atomic -1
	l.removeDebugRecord(self.Self(), pass, SX)

	if rec != 0 {
		return
	}

	nv := atomic.AddInt32(&l.lockWord, halfDecr)
	if nv > 0 {
		// No X remains (an X still held by this thread keeps nv <= 0).
		// Readers may still hold S, but waiting X/SX acquirers can now
		// reserve, so wake them.
		l.clearWriterThread()
		if atomic.SwapUint32(&l.waiters, 0) == 1 {
			l.event.Signal()
		}
	}
}
