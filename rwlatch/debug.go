package rwlatch

import (
	"fmt"
	"strings"

	"github.com/go-innodb/rwlatch/internal/gothread"
)

// debugRecord is one entry of debugList: one per active acquire,
// inserted at the head and removed by first match on release. Mirrors
// rw_lock_debug_t. The list is rarely long per latch, so a slice with
// linear scan/remove is used in place of the source's doubly-linked
// list - spec.md 9 explicitly allows this substitution.
type debugRecord struct {
	thread gothread.ID
	pass   bool
	mode   Mode
	site   string
}

// addDebugRecord inserts a record at the head of debugList. When
// nonRecursive is true and pass is false, it also runs the hierarchy
// validator (if one was installed), mirroring rw_lock_add_debug_info's
// call to sync_check_lock_validate/sync_check_lock_granted for a fresh
// (non-relock) acquire; a relock instead calls what the source calls
// sync_check_relock, which this package treats as a no-op since
// relocking by the same thread can never violate latch ordering.
func (l *Latch) addDebugRecord(id gothread.ID, pass bool, mode Mode, site string, nonRecursive bool) {
	l.debugMu.Lock()
	l.debugList = append([]*debugRecord{{thread: id, pass: pass, mode: mode, site: site}}, l.debugList...)
	l.debugMu.Unlock()

	if nonRecursive && !pass && l.levelValidator != nil {
		if err := l.levelValidator(l.level, mode); err != nil {
			panic(err)
		}
	}
}

// removeDebugRecord deletes the first record matching (mode, pass) -
// and, when pass is false, also matching thread - panicking if none is
// found, per spec.md 7: "Releasing without a matching debug record
// (debug builds): fatal." Mirrors rw_lock_remove_debug_info.
func (l *Latch) removeDebugRecord(id gothread.ID, pass bool, mode Mode) {
	l.debugMu.Lock()
	defer l.debugMu.Unlock()

	for i, rec := range l.debugList {
		if rec.mode != mode || rec.pass != pass {
			continue
		}
		if !pass && rec.thread != id {
			continue
		}
		l.debugList = append(l.debugList[:i], l.debugList[i+1:]...)
		return
	}
	panic(errNoDebugRecord(l, mode, pass))
}

// scanDebugList reports whether any record matches (thread, pass, mode),
// used by Own(S) since S holders aren't individually tracked in
// lockWord.
func (l *Latch) scanDebugList(id gothread.ID, pass bool, mode Mode) bool {
	l.debugMu.Lock()
	defer l.debugMu.Unlock()
	for _, rec := range l.debugList {
		if rec.mode == mode && rec.pass == pass && rec.thread == id {
			return true
		}
	}
	return false
}

// String renders every debug record currently on the latch, regardless
// of which thread holds it - the full-dump counterpart to to_string's
// per-thread view, which this package does not otherwise expose.
func (l *Latch) String() string {
	l.debugMu.Lock()
	defer l.debugMu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "RW-LATCH: addr %p locked from: ", l)
	first := true
	for _, rec := range l.debugList {
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%s [%s]", rec.site, rec.mode)
	}
	return b.String()
}
