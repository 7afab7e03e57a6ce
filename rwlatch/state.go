package rwlatch

import "sync/atomic"

// The encoding of lockWord (D = XLockDecr, H = D/2):
//
//	lockWord                    meaning                          readers
//	= D                         unlocked                         0
//	H < w < D                   S held, no waiting writer        D-w
//	= H                         SX held                          0
//	0 < w < H                   SX + S held                      H-w
//	= 0                         X held (single)                  0
//	-H < w < 0                  S held with waiting X             -w
//	= -H                        X + SX held                      0
//	-D < w < -H                 S held, waiting X also holds SX   -(w+H)
//	= -D                        X held twice (recursive)          0
//	-(D+H) < w < -D             X held 2-(w+D) times               0
//	= -(D+H)                    X held twice + SX                 0
//	w < -(D+H)                  X held, SX held, count 2-(w+D+H)  0
//
// This single signed counter is the central design decision of the
// package (spec.md 9): every transition is one atomic update, so there
// is never a window where a reader, the SX bit, and the X bit can be
// observed in a mutually inconsistent combination.

// decrIfAbove atomically subtracts delta from *word if its current
// value is strictly greater than threshold, and reports whether it
// did. This is decr_if_nonnegative, the building block every fast-path
// acquire uses; Go's sync/atomic already gives every operation here
// sequential consistency, which is strictly stronger than the
// acquire/release pairing the source's comments ask for, so no
// additional fences are needed (see DESIGN.md's note on spec.md 9's
// open questions).
func decrIfAbove(word *int32, delta, threshold int32) (ok bool, newVal int32) {
	for {
		cur := atomic.LoadInt32(word)
		if cur <= threshold {
			return false, cur
		}
		nv := cur - delta
		if atomic.CompareAndSwapInt32(word, cur, nv) {
			return true, nv
		}
	}
}

// readerCount derives the number of S-holders from lockWord, per the
// table above. Valid for any lockWord value a correctly-operating latch
// can reach.
func readerCount(w int32) int32 {
	switch {
	case w == XLockDecr:
		return 0
	case w > halfDecr:
		return XLockDecr - w
	case w == halfDecr:
		return 0
	case w > 0:
		return halfDecr - w
	case w == 0:
		return 0
	case w > -halfDecr:
		return -w
	case w == -halfDecr:
		return 0
	case w > -XLockDecr:
		return -(w + halfDecr)
	default:
		return 0
	}
}

// xLockCount derives the number of recursive X holds from lockWord. It
// is 0 while a writer is merely draining readers (the -H < w < 0 and
// -D < w < -H bands): the source only considers X "held" once the
// corresponding drain has completed and lockWord has settled at one of
// the band boundaries below.
func xLockCount(w int32) int32 {
	switch {
	case w == 0:
		return 1
	case w == -halfDecr:
		return 1
	case w == -XLockDecr:
		return 2
	case w == -(XLockDecr + halfDecr):
		return 2
	case w < -XLockDecr && w > -(XLockDecr+halfDecr):
		return 2 - (w + XLockDecr)
	case w < -(XLockDecr + halfDecr):
		return 2 - (w + XLockDecr + halfDecr)
	default:
		return 0
	}
}
