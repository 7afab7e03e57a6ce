package rwlatch

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/go-innodb/rwlatch/stats"
)

// Registry is the process-wide set of live latches, held under a
// dedicated mutex solely for diagnostic enumeration: membership changes
// only on New/Free, and concurrent acquires never touch it. Mirrors
// rw_lock_list/rw_lock_list_mutex.
type Registry struct {
	mu      sync.Mutex
	latches map[*Latch]struct{}
	log     *zap.Logger
}

// DefaultRegistry is used by New when no WithRegistry option is given.
var DefaultRegistry = NewRegistry(nil)

// NewRegistry creates an empty registry. A nil logger falls back to
// zap.NewNop(), so debug logging is free when nobody asked for it.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{latches: make(map[*Latch]struct{}), log: logger}
}

func (r *Registry) track(l *Latch) {
	r.mu.Lock()
	r.latches[l] = struct{}{}
	n := len(r.latches)
	r.mu.Unlock()
	r.logger().Debug("latch created", zap.String("site", l.cfile), zap.Int("level", int(l.level)), zap.Int("tracked", n))
}

func (r *Registry) untrack(l *Latch) {
	r.mu.Lock()
	delete(r.latches, l)
	n := len(r.latches)
	r.mu.Unlock()
	r.logger().Debug("latch freed", zap.String("site", l.cfile), zap.Int("tracked", n))
}

func (r *Registry) logger() *zap.Logger {
	if r == nil || r.log == nil {
		return zap.NewNop()
	}
	return r.log
}

// Stats aggregates the spin/round/OS-wait counters of every currently
// registered latch. Latches freed before this call don't contribute,
// the same way a destroyed rw_lock_t stops contributing to
// rw_lock_stats once it leaves rw_lock_list.
func (r *Registry) Stats() stats.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total stats.Snapshot
	for l := range r.latches {
		total.Add(l.counters.Snapshot())
	}
	return total
}

// ListPrintInfo writes one line per currently-locked latch (lockWord !=
// D) plus its debug records, mirroring rw_lock_list_print_info.
func (r *Registry) ListPrintInfo(w io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintln(w, "-------------")
	fmt.Fprintln(w, "RW-LATCH INFO")
	fmt.Fprintln(w, "-------------")

	count := 0
	for l := range r.latches {
		count++
		if atomic.LoadInt32(&l.lockWord) == XLockDecr {
			continue
		}
		waiters := atomic.LoadUint32(&l.waiters)
		if waiters != 0 {
			fmt.Fprintf(w, "RW-LOCK: %p (%d waiters)\n", l, waiters)
		} else {
			fmt.Fprintf(w, "RW-LOCK: %p\n", l)
		}
		l.debugMu.Lock()
		for _, rec := range l.debugList {
			pass := ""
			if rec.pass {
				pass = " pass"
			}
			fmt.Fprintf(w, "  thread %d  %s-LOCK  %s%s\n", rec.thread, rec.mode, rec.site, pass)
		}
		l.debugMu.Unlock()
	}
	fmt.Fprintf(w, "Total number of rw-locks %d\n", count)
}
