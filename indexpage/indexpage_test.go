package indexpage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-innodb/rwlatch/internal/gothread"
	"github.com/go-innodb/rwlatch/rwlatch"
)

func buildTree(t *testing.T) (root, car, cart, cat *Page) {
	t.Helper()
	root = NewPage("", 0)
	car = NewPage("car", 1)
	cart = NewPage("cart", 2)
	cat = NewPage("cat", 1)
	root.Children = []*Page{car, cat}
	car.Children = []*Page{cart}

	t.Cleanup(func() {
		for _, p := range []*Page{root, car, cart, cat} {
			if err := p.content.Validate(); err == nil {
				p.Free()
			}
		}
	})
	return
}

func TestPathCollectsAncestorsInOrder(t *testing.T) {
	root, car, cart, _ := buildTree(t)
	path := Path(root, "cart")
	require.Len(t, path, 3)
	assert.Same(t, root, path[0])
	assert.Same(t, car, path[1])
	assert.Same(t, cart, path[2])
}

func TestPathStopsAtDeepestMatchingPrefix(t *testing.T) {
	root, car, _, _ := buildTree(t)
	path := Path(root, "carpet")
	require.Len(t, path, 2)
	assert.Same(t, root, path[0])
	assert.Same(t, car, path[1])
}

func TestReadPathTakesSOnTargetAndBlocksAWriterOnAnAncestor(t *testing.T) {
	root, car, cart, _ := buildTree(t)
	self := gothread.New()
	writer := gothread.New()

	unlock := ReadPath(self, Path(root, "cart"))
	assert.True(t, cart.content.IsLocked(rwlatch.S))

	done := make(chan struct{})
	go func() {
		car.path.XLock(writer, rwlatch.CallSite()) // an ancestor X lock must wait behind our IS hold
		close(done)
		car.path.XUnlock(writer)
	}()

	select {
	case <-done:
		t.Fatal("ancestor XLock returned while a descendant read was in progress")
	default:
	}

	unlock()
	<-done
	assert.False(t, cart.content.IsLocked(rwlatch.S))
}

func TestWritePathExcludesConcurrentReaders(t *testing.T) {
	root, _, cart, _ := buildTree(t)
	self := gothread.New()
	other := gothread.New()

	unlock := WritePath(self, Path(root, "cart"))
	assert.True(t, cart.content.Own(self, rwlatch.X))

	done := make(chan struct{})
	go func() {
		u := ReadPath(other, Path(root, "cart"))
		u()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("ReadPath returned while the target was held X")
	default:
	}

	unlock()
	<-done
}
