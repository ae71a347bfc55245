package ziptree

import "github.com/memkv/memtree/arena"

// Iterator is a cursor over the tree's keys in comparator order,
// implemented as a parent-pointer walk. It never mutates the tree.
//
// Each cursor operation acquires the tree's shared lock for just that
// step, so a long-lived Iterator observes a live tree: there is no
// snapshot isolation against concurrent inserts. Callers that need an
// isolated scan must prevent concurrent mutation externally.
type Iterator[K any] struct {
	t *Tree[K]
	n arena.Ref
}

// MakeIter returns an Iterator positioned at an invalid location.
func (t *Tree[K]) MakeIter() Iterator[K] {
	return Iterator[K]{t: t, n: arena.Nil}
}

// Valid reports whether the cursor is positioned at a key.
func (i *Iterator[K]) Valid() bool {
	i.t.mu.RLock()
	defer i.t.mu.RUnlock()
	return i.n != arena.Nil
}

// Key returns the key under the cursor. It panics if the cursor is
// invalid.
func (i *Iterator[K]) Key() K {
	if i.n == arena.Nil {
		panic("ziptree: Key called on invalid iterator")
	}
	i.t.mu.RLock()
	defer i.t.mu.RUnlock()
	return i.t.node(i.n).key
}

// Next advances to the following key, invalidating the cursor at the
// end of the sequence. It panics if the cursor is invalid.
func (i *Iterator[K]) Next() {
	if i.n == arena.Nil {
		panic("ziptree: Next called on invalid iterator")
	}
	i.t.mu.RLock()
	defer i.t.mu.RUnlock()
	i.n = i.t.nextNode(i.n)
}

// Prev steps back to the preceding key, invalidating the cursor at the
// start of the sequence. It panics if the cursor is invalid.
func (i *Iterator[K]) Prev() {
	if i.n == arena.Nil {
		panic("ziptree: Prev called on invalid iterator")
	}
	i.t.mu.RLock()
	defer i.t.mu.RUnlock()
	i.n = i.t.prevNode(i.n)
}

// Seek positions the cursor at the smallest key >= target, or
// invalidates it if there is none.
func (i *Iterator[K]) Seek(target K) {
	i.t.mu.RLock()
	defer i.t.mu.RUnlock()
	i.n = i.t.seekNode(target)
}

// SeekToFirst positions the cursor at the minimum key.
func (i *Iterator[K]) SeekToFirst() {
	i.t.mu.RLock()
	defer i.t.mu.RUnlock()
	i.n = i.t.firstNode()
}

// SeekToLast positions the cursor at the maximum key.
func (i *Iterator[K]) SeekToLast() {
	i.t.mu.RLock()
	defer i.t.mu.RUnlock()
	i.n = i.t.lastNode()
}
