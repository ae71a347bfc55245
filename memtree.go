// Package memtree provides a pair of concurrent, self-balancing, ordered
// in-memory containers intended to back the sorted index of a key-value
// storage engine's memtable: a splay tree (splay) and a zip tree (ziptree).
//
// Both containers map ordered keys to themselves, take an injected
// comparison function, store their nodes in an index-addressed arena
// (arena), and expose bidirectional ordered iteration through a cursor
// with Seek/SeekToFirst/SeekToLast/Next/Prev.
package memtree

import "golang.org/x/exp/constraints"

// CompareOrdered is a three-way comparison over any ordered type. It is
// a convenient comparator for the tree constructors in splay and ziptree.
func CompareOrdered[K constraints.Ordered](a, b K) int {
	switch {
	case a < b:
		return -1
	case a == b:
		return 0
	default:
		return 1
	}
}
