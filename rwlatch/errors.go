package rwlatch

import (
	"fmt"
	"sync/atomic"

	"github.com/pkg/errors"
)

// rwlatch has no recoverable errors (spec.md 7): every violation below
// is a programmer error. Validate returns a wrapped error so a caller
// that wants to recover() at a process boundary (a test harness, say)
// gets something more useful than a bare string; MustValidate panics
// with the same error for parity with "violations... abort the
// process."

var errInvariant = errors.New("rwlatch: invariant violation")

func errLatchNotUnlocked(l *Latch) error {
	return errors.Wrapf(errInvariant, "Free called on latch %p with lockWord=%d, want %d",
		l, atomic.LoadInt32(&l.lockWord), XLockDecr)
}

func errNoDebugRecord(l *Latch, mode Mode, pass bool) error {
	return errors.Wrapf(errInvariant, "no matching debug record for %s release (pass=%v) on latch %p",
		mode, pass, l)
}

func errSAlreadyHeldByX(l *Latch) error {
	return errors.Wrapf(errInvariant, "latch %p: acquiring X while the calling thread already holds S", l)
}

// validationError is returned by Validate.
type validationError struct {
	lockWord int32
	waiters  uint32
}

func (e *validationError) Error() string {
	return fmt.Sprintf("rwlatch: invalid state lockWord=%d waiters=%d", e.lockWord, e.waiters)
}
