package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountersAccumulate(t *testing.T) {
	var c Counters
	c.IncSpinWait(S)
	c.IncSpinWait(S)
	c.AddSpinRounds(S, 5)
	c.IncOSWait(X)

	snap := c.Snapshot()
	assert.Equal(t, int64(2), snap.SpinWaitCount[S])
	assert.Equal(t, int64(5), snap.SpinRoundCount[S])
	assert.Equal(t, int64(1), snap.OSWaitCount[X])
	assert.Equal(t, int64(0), snap.SpinWaitCount[SX])
}

func TestSnapshotAdd(t *testing.T) {
	a := Snapshot{SpinWaitCount: [3]int64{1, 2, 3}}
	b := Snapshot{SpinWaitCount: [3]int64{10, 20, 30}}
	a.Add(b)
	assert.Equal(t, [3]int64{11, 22, 33}, a.SpinWaitCount)
}

func TestAddSpinRoundsZeroIsNoop(t *testing.T) {
	var c Counters
	c.AddSpinRounds(S, 0)
	assert.Equal(t, int64(0), c.Snapshot().SpinRoundCount[S])
}
