package rwlatch

import (
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/go-innodb/rwlatch/internal/gothread"
)

// MoveOwnership unconditionally writes the calling thread as the
// latch's owner, with no effect on lockWord and no wakeups. The caller
// must already hold X; used when one goroutine acquires X with pass and
// hands the latch to another goroutine that will release it. Mirrors
// rw_lock_x_lock_move_ownership.
func (l *Latch) MoveOwnership(self *gothread.Handle) {
	l.setWriterThread(self.Self())
}

// Own reports whether the calling thread holds the latch in mode with
// pass == false. Mirrors rw_lock_own.
func (l *Latch) Own(self *gothread.Handle, mode Mode) bool {
	id := self.Self()
	switch mode {
	case X:
		return gothread.Eq(l.selfID(), id) && xLockCount(atomic.LoadInt32(&l.lockWord)) > 0
	case SX:
		return gothread.Eq(l.selfID(), id) && atomic.LoadUint32(&l.sxRecursive) > 0
	case S:
		return l.scanDebugList(id, false, S)
	default:
		return false
	}
}

// OwnFlagged reports whether the calling thread holds the latch in any
// mode named by flags, with pass == false. Mirrors rw_lock_own_flagged.
func (l *Latch) OwnFlagged(self *gothread.Handle, flags Flag) bool {
	if flags&FlagX != 0 && l.Own(self, X) {
		return true
	}
	if flags&FlagSX != 0 && l.Own(self, SX) {
		return true
	}
	if flags&FlagS != 0 && l.Own(self, S) {
		return true
	}
	return false
}

// IsLocked is an observational query, not synchronized against
// concurrent acquires/releases: by the time it returns, the answer may
// already be stale. Mirrors rw_lock_is_locked.
func (l *Latch) IsLocked(mode Mode) bool {
	w := atomic.LoadInt32(&l.lockWord)
	switch mode {
	case S:
		return readerCount(w) > 0
	case X:
		return xLockCount(w) > 0
	case SX:
		return atomic.LoadUint32(&l.sxRecursive) > 0
	default:
		return false
	}
}

// Validate checks invariants 1 and 2 of spec.md 3 and returns a
// descriptive error instead of panicking, for callers that want to
// recover() at a process boundary. MustValidate panics on the same
// condition, matching "violations of invariants are programmer errors
// and abort the process."
func (l *Latch) Validate() error {
	w := atomic.LoadInt32(&l.lockWord)
	waiters := atomic.LoadUint32(&l.waiters)
	if w <= -2*XLockDecr || w > XLockDecr || waiters > 1 {
		return errors.WithStack(&validationError{lockWord: w, waiters: waiters})
	}
	return nil
}

// MustValidate panics if Validate reports an invariant violation.
func (l *Latch) MustValidate() {
	if err := l.Validate(); err != nil {
		panic(err)
	}
}
