// Package indexpage demonstrates the combination the rest of this
// module exists to support: a tree of index pages, each guarded by an
// ancestorLock for path traversal and an rwlatch.Latch for the page's
// own content.
//
// Reading or writing a single page first takes IS or IX on every
// ancestor from the root down to that page's parent, then takes S or
// X (via rwlatch) on the page itself. Two callers descending into
// disjoint subtrees only ever contend on the (compatible) intention
// state of shared ancestors, never on a single tree-wide lock. A
// caller that instead wants to restructure a node's whole subtree -
// split or merge it, say - takes X on that node's ancestorLock
// directly, which blocks behind any IS/IX traversal already passing
// through it.
package indexpage

import (
	"strings"

	"github.com/go-innodb/rwlatch/internal/gothread"
	"github.com/go-innodb/rwlatch/rwlatch"
)

// Page is one node of an index tree: a path latch covering its
// subtree and a content latch covering the page's own bytes.
type Page struct {
	Key      string
	Children []*Page

	path    *ancestorLock
	content *rwlatch.Latch
}

// NewPage creates a page at the given hierarchy level (passed through
// to its content latch's LevelValidator hook) with the given key.
func NewPage(key string, level rwlatch.Level, opts ...rwlatch.Option) *Page {
	return &Page{
		Key:     key,
		path:    newAncestorLock(),
		content: rwlatch.New(level, rwlatch.CallSite(), opts...),
	}
}

// Free releases the page's content latch. Panics if it is still held,
// per rwlatch.Latch.Free's precondition.
func (p *Page) Free() {
	p.content.Free()
}

// Path walks root -> ... -> target, collecting every page whose Key is
// a prefix of target, including target itself if the tree holds an
// exact node for it. Pages are a trie: a node's Key is a prefix of
// every string held at or below it, so the only correct child at each
// step is the one whose Key extends the string matched so far.
func Path(root *Page, target string) []*Page {
	var path []*Page
	cur := root
	for cur != nil && strings.HasPrefix(target, cur.Key) {
		path = append(path, cur)
		if cur.Key == target {
			return path
		}
		cur = cur.child(target)
	}
	return path
}

func (p *Page) child(target string) *Page {
	for _, c := range p.Children {
		if strings.HasPrefix(target, c.Key) {
			return c
		}
	}
	return nil
}

// ReadPath takes IS on every ancestor of path's final page and S on
// the page itself, returning an Unlock func that releases both in the
// reverse order they were acquired.
func ReadPath(self *gothread.Handle, path []*Page) (unlock func()) {
	if len(path) == 0 {
		return func() {}
	}
	ancestors := path[:len(path)-1]
	target := path[len(path)-1]

	for _, p := range ancestors {
		p.path.ISLock(self, rwlatch.CallSite())
	}
	target.content.SLock(self, false, rwlatch.CallSite())

	return func() {
		target.content.SUnlock(self, false)
		for i := len(ancestors) - 1; i >= 0; i-- {
			ancestors[i].path.ISUnlock(self)
		}
	}
}

// WritePath takes IX on every ancestor of path's final page and X on
// the page itself, returning an Unlock func that releases both in the
// reverse order they were acquired.
func WritePath(self *gothread.Handle, path []*Page) (unlock func()) {
	if len(path) == 0 {
		return func() {}
	}
	ancestors := path[:len(path)-1]
	target := path[len(path)-1]

	for _, p := range ancestors {
		p.path.IXLock(self, rwlatch.CallSite())
	}
	target.content.XLock(self, false, rwlatch.CallSite())

	return func() {
		target.content.XUnlock(self, false)
		for i := len(ancestors) - 1; i >= 0; i-- {
			ancestors[i].path.IXUnlock(self)
		}
	}
}
