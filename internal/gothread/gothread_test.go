package gothread

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelfStableAcrossCalls(t *testing.T) {
	h := New()
	id := h.Self()
	assert.NotEqual(t, None, id)
	assert.Equal(t, id, h.Self())
}

func TestDistinctHandlesGetDistinctIDs(t *testing.T) {
	a, b := New(), New()
	assert.NotEqual(t, a.Self(), b.Self())
}

func TestEq(t *testing.T) {
	a := New()
	assert.True(t, Eq(a.Self(), a.Self()))
	assert.False(t, Eq(None, None))
	assert.False(t, Eq(a.Self(), None))
}

func TestNilHandleIsNone(t *testing.T) {
	var h *Handle
	assert.Equal(t, None, h.Self())
}
