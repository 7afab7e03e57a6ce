package rwlatch

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-innodb/rwlatch/internal/gothread"
	"github.com/go-innodb/rwlatch/stats"
)

func TestRegistryTracksAndUntracksOnFree(t *testing.T) {
	r := NewRegistry(nil)
	l := New(0, "registry_test.go:1", WithRegistry(r))

	r.mu.Lock()
	_, tracked := r.latches[l]
	r.mu.Unlock()
	require.True(t, tracked)

	l.Free()

	r.mu.Lock()
	_, tracked = r.latches[l]
	r.mu.Unlock()
	require.False(t, tracked)
}

func TestListPrintInfoShowsHeldLatch(t *testing.T) {
	r := NewRegistry(nil)
	l := New(0, "registry_test.go:2", WithRegistry(r))
	defer l.Free()

	self := gothread.New()
	l.XLock(self, false, "registry_test.go:3")
	defer l.XUnlock(self, false)

	var buf bytes.Buffer
	r.ListPrintInfo(&buf)

	out := buf.String()
	assert.Contains(t, out, "RW-LOCK:")
	assert.Contains(t, out, "X-LOCK")
	assert.Contains(t, out, "Total number of rw-locks 1")
}

func TestRegistryStatsAggregatesAcrossLatches(t *testing.T) {
	r := NewRegistry(nil)
	l1 := New(0, "registry_test.go:4", WithRegistry(r))
	l2 := New(0, "registry_test.go:5", WithRegistry(r))
	defer l1.Free()
	defer l2.Free()

	self := gothread.New()
	l1.tunables = &Tunables{SpinRounds: 0, SpinDelay: 0}
	l2.tunables = &Tunables{SpinRounds: 0, SpinDelay: 0}

	l1.XLock(self, false, "registry_test.go:6")
	l1.XUnlock(self, false)
	l2.XLock(self, false, "registry_test.go:7")
	l2.XUnlock(self, false)

	// Uncontended acquires never miss the fast path, so these are the
	// only spin-wait misses on either latch.
	l1.counters.IncSpinWait(stats.X)
	l2.counters.IncSpinWait(stats.X)

	snap := r.Stats()
	assert.Equal(t, int64(2), snap.SpinWaitCount[0]+snap.SpinWaitCount[1]+snap.SpinWaitCount[2])
}
