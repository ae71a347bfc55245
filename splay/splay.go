// Package splay provides a concurrent self-adjusting binary search tree.
// Every successful Insert or Delete splays the touched node to the root,
// biasing the tree toward recently written keys. Lookups deliberately do
// not splay, so Contains never contends with other readers on tree shape.
//
// Alongside the parent/child structure every node carries threaded
// predecessor/successor links, giving the iterator O(1) neighbor steps
// regardless of tree shape.
package splay

import (
	"github.com/memkv/memtree/arena"
	"github.com/memkv/memtree/internal/syncutil"
)

type side int

const (
	left side = iota
	right
)

// node is a tree entry. Records live in an index-addressed arena and
// reference each other by arena.Ref, never by pointer.
//
// prev and next are threaded links: for any node without a right (resp.
// left) child they name the true in-order successor (resp. predecessor).
// Nodes with a child on that side derive the neighbor from the subtree
// instead, so the thread value for them is an unused hint.
type node[K any] struct {
	key      K
	parent   arena.Ref
	child    [2]arena.Ref
	prev     arena.Ref
	next     arena.Ref
	inserted bool
}

// Tree is a splay tree over keys ordered by an injected comparator.
// All methods are safe for concurrent use: mutators take an exclusive
// lock for their whole duration, queries a shared lock.
type Tree[K any] struct {
	cmp  func(K, K) int
	ns   *arena.Arena[node[K]]
	root arena.Ref
	size int

	optimistic bool

	mu syncutil.RWMutex
}

// New constructs an empty Tree. cmp must be a total three-way ordering
// over keys.
func New[K any](cmp func(K, K) int, opts ...Option) *Tree[K] {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Tree[K]{
		cmp:        cmp,
		ns:         arena.New[node[K]](cfg.arenaOpts...),
		root:       arena.Nil,
		optimistic: cfg.optimisticInsert,
	}
}

func (t *Tree[K]) node(r arena.Ref) *node[K] { return t.ns.Get(r) }

// Len returns the number of keys in the tree.
func (t *Tree[K]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.size
}

// Contains reports whether key is present. It does not splay.
func (t *Tree[K]) Contains(key K) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.find(key) != arena.Nil
}

// Insert adds key to the tree and splays it to the root. Inserting a key
// equal to a present one is a no-op. The splay is part of the contract:
// when Insert returns, the new key is the root.
func (t *Tree[K]) Insert(key K) {
	if t.optimistic {
		// Cheap duplicate probe under the shared lock; the authoritative
		// check is repeated below under the exclusive lock.
		t.mu.RLock()
		dup := t.find(key) != arena.Nil
		t.mu.RUnlock()
		if dup {
			return
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	parent := arena.Nil
	s := left
	prev, next := arena.Nil, arena.Nil
	cur := t.root
	for cur != arena.Nil {
		n := t.node(cur)
		c := t.cmp(n.key, key)
		if c == 0 {
			return
		}
		parent = cur
		if c < 0 {
			s = right
			next = n.next
			prev = cur
			cur = n.child[right]
		} else {
			s = left
			next = cur
			prev = n.prev
			cur = n.child[left]
		}
	}

	nr, n := t.ns.Alloc()
	n.key = key
	n.parent = parent
	n.child[left], n.child[right] = arena.Nil, arena.Nil
	n.prev, n.next = prev, next
	if parent == arena.Nil {
		t.root = nr
	} else {
		t.node(parent).child[s] = nr
	}

	t.splay(nr)
	t.node(nr).inserted = true
	t.size++
}

// Delete removes key, reporting whether it was present. The removed node
// is splayed to the root first, which reduces removal to root surgery.
func (t *Tree[K]) Delete(key K) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	nr := t.find(key)
	if nr == arena.Nil {
		return false
	}
	t.splay(nr)
	n := t.node(nr)

	switch {
	case n.child[left] == arena.Nil:
		t.root = n.child[right]
		if t.root != arena.Nil {
			t.node(t.root).parent = arena.Nil
			// The removed key was the minimum; its successor chain starts
			// at the new subtree minimum, whose thread still names it.
			t.node(t.subMinimum(t.root)).prev = arena.Nil
		}
	case n.child[right] == arena.Nil:
		t.root = n.child[left]
		if t.root != arena.Nil {
			t.node(t.root).parent = arena.Nil
			t.node(t.subMaximum(t.root)).next = arena.Nil
		}
	default:
		// Both children: promote the in-order successor c to the root and
		// repoint the threads of the removed node's true neighbors at c.
		mr := t.subMaximum(n.child[left])
		cr := t.subMinimum(n.child[right])
		c := t.node(cr)
		if c.parent == nr {
			c.child[left] = n.child[left]
			t.node(c.child[left]).parent = cr
			c.parent = arena.Nil
			c.prev = arena.Nil
		} else {
			cp := t.node(c.parent)
			cp.child[left] = c.child[right]
			if c.child[right] != arena.Nil {
				t.node(c.child[right]).parent = c.parent
			} else {
				// cp just lost its left child, so its prev thread goes
				// live; its in-order predecessor is now the promoted c.
				cp.prev = cr
			}
			c.parent = arena.Nil

			c.child[right] = n.child[right]
			t.node(c.child[right]).parent = cr
			t.node(c.child[right]).prev = cr

			c.child[left] = n.child[left]
			t.node(c.child[left]).parent = cr
		}
		t.node(mr).next = cr
		t.root = cr
	}

	t.collect(nr)
	t.size--
	return true
}

// collect neutralizes a removed node. Arena records are reclaimed en
// masse with the arena, so this only severs links and drops the inserted
// flag to keep stale thread hints from resurrecting the key.
func (t *Tree[K]) collect(nr arena.Ref) {
	n := t.node(nr)
	n.parent = arena.Nil
	n.child[left], n.child[right] = arena.Nil, arena.Nil
	n.prev, n.next = arena.Nil, arena.Nil
	n.inserted = false
}

// find is a descent-only BST search. Callers hold the lock.
func (t *Tree[K]) find(key K) arena.Ref {
	cur := t.root
	for cur != arena.Nil {
		n := t.node(cur)
		if !n.inserted {
			return arena.Nil
		}
		c := t.cmp(n.key, key)
		if c == 0 {
			return cur
		}
		if c < 0 {
			cur = n.child[right]
		} else {
			cur = n.child[left]
		}
	}
	return arena.Nil
}

// findGreaterOrEqual locates the node with the smallest key >= key, or
// Nil if every key is smaller. Callers hold the lock.
func (t *Tree[K]) findGreaterOrEqual(key K) arena.Ref {
	cur := t.root
	last := arena.Nil
	for cur != arena.Nil && t.node(cur).inserted {
		last = cur
		c := t.cmp(t.node(cur).key, key)
		if c == 0 {
			break
		}
		if c < 0 {
			cur = t.node(cur).child[right]
		} else {
			cur = t.node(cur).child[left]
		}
	}
	if cur != arena.Nil && t.node(cur).inserted {
		return cur
	}
	if last == arena.Nil {
		return arena.Nil
	}
	if t.cmp(key, t.node(last).key) < 0 {
		return last
	}
	return t.next(last)
}

func (t *Tree[K]) subMinimum(r arena.Ref) arena.Ref {
	for {
		c := t.node(r).child[left]
		if c == arena.Nil || !t.node(c).inserted {
			return r
		}
		r = c
	}
}

func (t *Tree[K]) subMaximum(r arena.Ref) arena.Ref {
	for {
		c := t.node(r).child[right]
		if c == arena.Nil || !t.node(c).inserted {
			return r
		}
		r = c
	}
}

// first and last return the extreme nodes. Callers hold the lock.
func (t *Tree[K]) first() arena.Ref {
	if t.root != arena.Nil && t.node(t.root).child[left] != arena.Nil {
		return t.subMinimum(t.node(t.root).child[left])
	}
	return t.root
}

func (t *Tree[K]) last() arena.Ref {
	if t.root != arena.Nil && t.node(t.root).child[right] != arena.Nil {
		return t.subMaximum(t.node(t.root).child[right])
	}
	return t.root
}

// next returns the in-order successor of nr: the minimum of the right
// subtree when there is one, otherwise the threaded link. Either way the
// result must carry the inserted flag. Callers hold the lock.
func (t *Tree[K]) next(nr arena.Ref) arena.Ref {
	n := t.node(nr)
	if n.child[right] != arena.Nil && t.node(n.child[right]).inserted {
		return t.subMinimum(n.child[right])
	}
	if n.next != arena.Nil && t.node(n.next).inserted {
		return n.next
	}
	return arena.Nil
}

func (t *Tree[K]) prev(nr arena.Ref) arena.Ref {
	n := t.node(nr)
	if n.child[left] != arena.Nil && t.node(n.child[left]).inserted {
		return t.subMaximum(n.child[left])
	}
	if n.prev != arena.Nil && t.node(n.prev).inserted {
		return n.prev
	}
	return arena.Nil
}

// splay rotates nr to the root with zig / zig-zig / zig-zag steps.
func (t *Tree[K]) splay(nr arena.Ref) {
	for {
		pr := t.node(nr).parent
		if pr == arena.Nil {
			return
		}
		p := t.node(pr)
		gr := p.parent
		switch {
		case gr == arena.Nil:
			if p.child[left] == nr {
				t.rotate(pr, left)
			} else {
				t.rotate(pr, right)
			}
		case nr == p.child[left] && pr == t.node(gr).child[left]:
			t.rotate(gr, left)
			t.rotate(pr, left)
		case nr == p.child[right] && pr == t.node(gr).child[right]:
			t.rotate(gr, right)
			t.rotate(pr, right)
		case nr == p.child[left] && pr == t.node(gr).child[right]:
			t.rotate(pr, left)
			t.rotate(t.node(nr).parent, right)
		default:
			t.rotate(pr, right)
			t.rotate(t.node(nr).parent, left)
		}
	}
}

// rotate promotes nr's child on side s into nr's position. Thread links
// of the two rotated nodes are patched in O(1): the demoted node becomes
// the promoted node's in-order neighbor on side s.
func (t *Tree[K]) rotate(nr arena.Ref, s side) {
	n := t.node(nr)
	cr := n.child[s]
	if cr == arena.Nil {
		return
	}
	c := t.node(cr)
	os := 1 - s

	n.child[s] = c.child[os]
	if c.child[os] != arena.Nil {
		t.node(c.child[os]).parent = nr
	}
	c.parent = n.parent
	if n.parent == arena.Nil {
		t.root = cr
	} else if p := t.node(n.parent); p.child[left] == nr {
		p.child[left] = cr
	} else {
		p.child[right] = cr
	}
	if s == left {
		c.next = n.next
		n.prev = cr
	} else {
		n.next = cr
		c.prev = n.prev
	}
	c.child[os] = nr
	n.parent = cr
}
