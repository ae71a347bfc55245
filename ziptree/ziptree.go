// Package ziptree provides a concurrent randomized binary search tree.
// Each node draws an immutable random rank at insertion; the tree shape
// is a deterministic function of the keys and ranks, giving expected
// logarithmic height without rotations. Insertion merges the new node
// into place in a single downward pass.
//
// The container is insert/contains/iterate-only: deletion is not part
// of its surface.
package ziptree

import (
	"math/rand"

	"github.com/memkv/memtree/arena"
	"github.com/memkv/memtree/internal/syncutil"
)

const (
	// maxRank caps the geometric rank distribution.
	maxRank = 11
	// branching is the inverse success probability of the rank coin.
	branching = 6
)

type node[K any] struct {
	key    K
	rank   int8
	parent arena.Ref
	left   arena.Ref
	right  arena.Ref
}

// Tree is a zip tree over keys ordered by an injected comparator. All
// methods are safe for concurrent use: Insert takes an exclusive lock
// for its whole merge, everything else a shared lock.
type Tree[K any] struct {
	cmp  func(K, K) int
	ns   *arena.Arena[node[K]]
	root arena.Ref
	rnd  *rand.Rand

	mu syncutil.RWMutex
}

// New constructs an empty Tree. cmp must be a total three-way ordering
// over keys. The rank source is seeded deterministically unless
// WithSeed overrides it.
func New[K any](cmp func(K, K) int, opts ...Option) *Tree[K] {
	cfg := config{seed: defaultSeed}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Tree[K]{
		cmp:  cmp,
		ns:   arena.New[node[K]](cfg.arenaOpts...),
		root: arena.Nil,
		rnd:  rand.New(rand.NewSource(cfg.seed)),
	}
}

func (t *Tree[K]) node(r arena.Ref) *node[K] { return t.ns.Get(r) }

// Insert adds key to the tree. Inserting a key equal to a present one
// is a no-op; nothing is allocated for the rejected insert.
func (t *Tree[K]) Insert(key K) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.find(key) != arena.Nil {
		return
	}
	rank := t.randomRank()
	xr, x := t.ns.Alloc()
	x.key = key
	x.rank = rank
	x.parent, x.left, x.right = arena.Nil, arena.Nil, arena.Nil
	t.root = t.recursiveInsert(xr, t.root)
}

// Contains reports whether key is present.
func (t *Tree[K]) Contains(key K) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.find(key) != arena.Nil
}

// Size counts the keys by full traversal: O(n). Call sparingly.
func (t *Tree[K]) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sizeOf(t.root)
}

// Height returns the height of the tree by full traversal: O(n).
func (t *Tree[K]) Height() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.heightOf(t.root)
}

// CheckConsistency verifies the structural invariants: binary search
// order, parent back-pointers, and the rank heap property (a node's
// rank exceeds its left child's and is at least its right child's).
// Intended for test harnesses, not production hot paths.
func (t *Tree[K]) CheckConsistency() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.consistent(t.root, arena.Nil)
}

func (t *Tree[K]) find(key K) arena.Ref {
	cur := t.root
	for cur != arena.Nil {
		n := t.node(cur)
		c := t.cmp(key, n.key)
		if c == 0 {
			break
		}
		if c < 0 {
			cur = n.left
		} else {
			cur = n.right
		}
	}
	return cur
}

// randomRank samples the capped geometric distribution that stands in
// for explicit balancing.
func (t *Tree[K]) randomRank() int8 {
	rank := int8(0)
	for t.rnd.Intn(branching) == 0 && rank < maxRank {
		rank++
	}
	return rank
}

// recursiveInsert merges x into the subtree rooted at rootr and returns
// the subtree's new root for the caller to reattach. Descent stops
// where x's rank dominates (strictly on the left path, non-strictly on
// the right), at which point x is zipped in above the old subtree.
func (t *Tree[K]) recursiveInsert(xr, rootr arena.Ref) arena.Ref {
	if rootr == arena.Nil {
		return xr
	}
	root := t.node(rootr)
	x := t.node(xr)
	if t.cmp(x.key, root.key) < 0 {
		if t.recursiveInsert(xr, root.left) == xr {
			if x.rank < root.rank {
				root.left = xr
				x.parent = rootr
			} else {
				x.parent = root.parent
				root.left = x.right
				if x.right != arena.Nil {
					t.node(x.right).parent = rootr
				}
				x.right = rootr
				root.parent = xr
				return xr
			}
		}
	} else {
		if t.recursiveInsert(xr, root.right) == xr {
			if x.rank <= root.rank {
				root.right = xr
				x.parent = rootr
			} else {
				x.parent = root.parent
				root.right = x.left
				if x.left != arena.Nil {
					t.node(x.left).parent = rootr
				}
				x.left = rootr
				root.parent = xr
				return xr
			}
		}
	}
	return rootr
}

func (t *Tree[K]) sizeOf(r arena.Ref) int {
	if r == arena.Nil {
		return 0
	}
	n := t.node(r)
	return t.sizeOf(n.left) + t.sizeOf(n.right) + 1
}

func (t *Tree[K]) heightOf(r arena.Ref) int {
	if r == arena.Nil {
		return 0
	}
	n := t.node(r)
	l, rr := t.heightOf(n.left), t.heightOf(n.right)
	if l > rr {
		return l + 1
	}
	return rr + 1
}

func (t *Tree[K]) consistent(r, parent arena.Ref) bool {
	if r == arena.Nil {
		return true
	}
	n := t.node(r)
	if n.parent != parent {
		return false
	}
	if n.left != arena.Nil {
		l := t.node(n.left)
		if t.cmp(l.key, n.key) >= 0 || l.rank >= n.rank {
			return false
		}
	}
	if n.right != arena.Nil {
		rc := t.node(n.right)
		if t.cmp(rc.key, n.key) <= 0 || rc.rank > n.rank {
			return false
		}
	}
	return t.consistent(n.left, r) && t.consistent(n.right, r)
}

// nextNode returns the in-order successor by pure parent/child walking:
// the minimum of the right subtree when there is one, otherwise the
// first ancestor reached from a left child. Callers hold the lock.
func (t *Tree[K]) nextNode(r arena.Ref) arena.Ref {
	n := t.node(r)
	if n.right != arena.Nil {
		cur := n.right
		for t.node(cur).left != arena.Nil {
			cur = t.node(cur).left
		}
		return cur
	}
	cur, p := r, n.parent
	for p != arena.Nil && cur == t.node(p).right {
		cur = p
		p = t.node(cur).parent
	}
	return p
}

func (t *Tree[K]) prevNode(r arena.Ref) arena.Ref {
	n := t.node(r)
	if n.left != arena.Nil {
		cur := n.left
		for t.node(cur).right != arena.Nil {
			cur = t.node(cur).right
		}
		return cur
	}
	cur, p := r, n.parent
	for p != arena.Nil && cur == t.node(p).left {
		cur = p
		p = t.node(cur).parent
	}
	return p
}

func (t *Tree[K]) firstNode() arena.Ref {
	r := arena.Nil
	for cur := t.root; cur != arena.Nil; cur = t.node(cur).left {
		r = cur
	}
	return r
}

func (t *Tree[K]) lastNode() arena.Ref {
	r := arena.Nil
	for cur := t.root; cur != arena.Nil; cur = t.node(cur).right {
		r = cur
	}
	return r
}

// seekNode locates the smallest key >= target, retaining the last node
// visited on a miss and advancing one step when that node's key is
// below the target. Callers hold the lock.
func (t *Tree[K]) seekNode(target K) arena.Ref {
	cur, last := t.root, arena.Nil
	for cur != arena.Nil {
		last = cur
		c := t.cmp(target, t.node(cur).key)
		if c == 0 {
			return cur
		}
		if c < 0 {
			cur = t.node(cur).left
		} else {
			cur = t.node(cur).right
		}
	}
	if last == arena.Nil {
		return arena.Nil
	}
	if t.cmp(target, t.node(last).key) > 0 {
		return t.nextNode(last)
	}
	return last
}
