package syncarray

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/go-innodb/rwlatch/internal/osevent"
)

func TestReserveWaitSignal(t *testing.T) {
	arr := New()
	ev := osevent.New()

	cell := arr.Reserve(ev, ModeX, "t.go:1")
	assert.Len(t, arr.Cells(), 1)

	done := make(chan struct{})
	go func() {
		cell.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait returned before Signal")
	case <-time.After(20 * time.Millisecond):
	}

	ev.Signal()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait never returned after Signal")
	}
}

func TestFreeWithoutWaiting(t *testing.T) {
	arr := New()
	ev := osevent.New()
	cell := arr.Reserve(ev, ModeS, "t.go:2")
	assert.Len(t, arr.Cells(), 1)
	arr.Free(cell)
	assert.Empty(t, arr.Cells())
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "S", ModeS.String())
	assert.Equal(t, "X", ModeX.String())
	assert.Equal(t, "SX", ModeSX.String())
	assert.Equal(t, "X_WAIT", ModeXWait.String())
}
