package indexpage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-innodb/rwlatch/internal/gothread"
	"github.com/go-innodb/rwlatch/rwlatch"
)

func TestCompatibleAgainstX(t *testing.T) {
	l := newAncestorLock()
	l.xCount = 1
	for _, m := range []Mode{IS, IX, S, X} {
		assert.False(t, l.compatible(m), "%s should never be compatible with a held X", m)
	}
}

func TestCompatibleAgainstS(t *testing.T) {
	l := newAncestorLock()
	l.sCount = 1
	assert.True(t, l.compatible(IS))
	assert.False(t, l.compatible(IX))
	assert.True(t, l.compatible(S))
	assert.False(t, l.compatible(X))
}

func TestCompatibleAgainstIX(t *testing.T) {
	l := newAncestorLock()
	l.ixCount = 1
	assert.True(t, l.compatible(IS))
	assert.True(t, l.compatible(IX))
	assert.False(t, l.compatible(S))
	assert.False(t, l.compatible(X))
}

func TestCompatibleAgainstIS(t *testing.T) {
	l := newAncestorLock()
	l.isCount = 1
	assert.True(t, l.compatible(IS))
	assert.True(t, l.compatible(IX))
	assert.True(t, l.compatible(S))
	assert.False(t, l.compatible(X))
}

func TestUnlockWithoutMatchingHolderPanics(t *testing.T) {
	l := newAncestorLock()
	self := gothread.New()
	assert.Panics(t, func() { l.unlock(self, IS) })
}

func TestUnlockOnlyRemovesOneMatchingHolder(t *testing.T) {
	l := newAncestorLock()
	a := gothread.New()
	b := gothread.New()

	l.ISLock(a, rwlatch.CallSite())
	l.ISLock(b, rwlatch.CallSite())
	require.Equal(t, 2, l.isCount)

	l.ISUnlock(a)
	assert.Equal(t, 1, l.isCount)
	assert.Panics(t, func() { l.ISUnlock(a) }, "a already released its grant")

	l.ISUnlock(b)
	assert.Equal(t, 0, l.isCount)
}

func TestXLockWaitsForISHoldersToDrain(t *testing.T) {
	l := newAncestorLock()
	reader := gothread.New()
	writer := gothread.New()

	l.ISLock(reader, rwlatch.CallSite())

	done := make(chan struct{})
	go func() {
		l.XLock(writer, rwlatch.CallSite())
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("XLock returned while IS still held")
	default:
	}

	l.ISUnlock(reader)
	<-done
	l.XUnlock(writer)
}

func TestIXHoldersDoNotBlockEachOther(t *testing.T) {
	l := newAncestorLock()
	a := gothread.New()
	b := gothread.New()

	l.IXLock(a, rwlatch.CallSite())
	done := make(chan struct{})
	go func() {
		l.IXLock(b, rwlatch.CallSite())
		close(done)
	}()

	<-done
	assert.Equal(t, 2, l.ixCount)
	l.IXUnlock(a)
	l.IXUnlock(b)
}
