package indexpage

import (
	"sync"

	"github.com/go-innodb/rwlatch/internal/gothread"
)

// Mode names the four states an ancestorLock can be held in while a
// caller walks a path down to the page it actually wants to read or
// write. IS and IX are the provisional "I intend to keep descending as
// a reader/writer" states; S and X are held transiently by a caller
// that wants to lock a node's whole subtree itself (a structural
// change such as a split or merge) rather than pass through it.
type Mode int

const (
	IS Mode = iota
	IX
	S
	X
)

func (m Mode) String() string {
	switch m {
	case IS:
		return "IS"
	case IX:
		return "IX"
	case S:
		return "S"
	case X:
		return "X"
	default:
		return "?"
	}
}

// holder records one outstanding grant, so a release can be checked
// against an actual acquirer instead of trusting the caller's word for
// it - the same "don't release what you didn't take" discipline
// rwlatch's debugRecord enforces for its own latch, applied here to
// the path lock.
type holder struct {
	thread gothread.ID
	mode   Mode
	site   string
}

// ancestorLock is the intention lock a Page uses to let callers
// traverse past it toward a deeper target without serializing on a
// single tree-wide lock. Unlike a packed-word encoding, the four
// counts are separate plain ints guarded by one mutex; a waiter blocks
// on a condvar rather than spinning or retrying a compare-and-swap,
// since contention on a path lock is expected to be brief and rare
// compared to the target page's own content latch.
type ancestorLock struct {
	mu   sync.Mutex
	cond *sync.Cond

	isCount, ixCount, sCount, xCount int
	holders                          []holder
}

func newAncestorLock() *ancestorLock {
	l := &ancestorLock{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// compatible reports whether mode may be granted given what is
// currently held, per the transition table: X excludes everything,
// S and IX are mutually exclusive, IS only excludes X.
func (l *ancestorLock) compatible(mode Mode) bool {
	switch mode {
	case IS:
		return l.xCount == 0
	case IX:
		return l.xCount == 0 && l.sCount == 0
	case S:
		return l.xCount == 0 && l.ixCount == 0
	case X:
		return l.xCount == 0 && l.sCount == 0 && l.ixCount == 0 && l.isCount == 0
	default:
		return false
	}
}

func (l *ancestorLock) count(mode Mode) *int {
	switch mode {
	case IS:
		return &l.isCount
	case IX:
		return &l.ixCount
	case S:
		return &l.sCount
	case X:
		return &l.xCount
	default:
		panic("ancestorLock: unknown mode")
	}
}

// lock blocks until mode is compatible with whatever else is held,
// then grants it and records the holder for the matching unlock to
// find.
func (l *ancestorLock) lock(self *gothread.Handle, mode Mode, site string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for !l.compatible(mode) {
		l.cond.Wait()
	}
	*l.count(mode)++
	l.holders = append(l.holders, holder{thread: self.Self(), mode: mode, site: site})
}

// unlock releases one grant of mode taken by self, panicking if no
// such grant is on record - releasing a lock you never took is a
// programmer error here just as it is in rwlatch.
func (l *ancestorLock) unlock(self *gothread.Handle, mode Mode) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := self.Self()
	for i, h := range l.holders {
		if h.mode != mode || h.thread != id {
			continue
		}
		l.holders = append(l.holders[:i], l.holders[i+1:]...)
		*l.count(mode)--
		l.cond.Broadcast()
		return
	}
	panic("ancestorLock: release of " + mode.String() + " with no matching grant")
}

func (l *ancestorLock) ISLock(self *gothread.Handle, site string) { l.lock(self, IS, site) }
func (l *ancestorLock) ISUnlock(self *gothread.Handle)            { l.unlock(self, IS) }
func (l *ancestorLock) IXLock(self *gothread.Handle, site string) { l.lock(self, IX, site) }
func (l *ancestorLock) IXUnlock(self *gothread.Handle)            { l.unlock(self, IX) }
func (l *ancestorLock) XLock(self *gothread.Handle, site string)  { l.lock(self, X, site) }
func (l *ancestorLock) XUnlock(self *gothread.Handle)             { l.unlock(self, X) }
