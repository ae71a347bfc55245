package ziptree

import (
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/memkv/memtree/arena"
	"github.com/memkv/memtree/splay"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a == b:
		return 0
	default:
		return 1
	}
}

func collect[K any](t *Tree[K]) []K {
	var out []K
	it := t.MakeIter()
	for it.SeekToFirst(); it.Valid(); it.Next() {
		out = append(out, it.Key())
	}
	return out
}

func collectBackward[K any](t *Tree[K]) []K {
	var out []K
	it := t.MakeIter()
	for it.SeekToLast(); it.Valid(); it.Prev() {
		out = append(out, it.Key())
	}
	return out
}

func preorder[K any](t *Tree[K], r arena.Ref, out *[]K) {
	if r == arena.Nil {
		return
	}
	n := t.node(r)
	*out = append(*out, n.key)
	preorder(t, n.left, out)
	preorder(t, n.right, out)
}

func TestInsertScenario(t *testing.T) {
	re := require.New(t)
	keys := []int{5, 3, 8, 1, 4, 7, 9}

	zt := New[int](compareInts)
	st := splay.New[int](compareInts)
	for _, k := range keys {
		zt.Insert(k)
		st.Insert(k)
	}

	re.True(zt.CheckConsistency())
	re.Equal(7, zt.Size())
	for _, k := range keys {
		re.True(zt.Contains(k))
	}
	re.False(zt.Contains(6))

	want := []int{1, 3, 4, 5, 7, 8, 9}
	re.Equal(want, collect(zt))

	// Both containers present the same ordered view of the same keys.
	var fromSplay []int
	it := st.MakeIter()
	for it.SeekToFirst(); it.Valid(); it.Next() {
		fromSplay = append(fromSplay, it.Key())
	}
	re.Equal(fromSplay, collect(zt))

	re.Equal([]int{9, 8, 7, 5, 4, 3, 1}, collectBackward(zt))
}

func TestShapeIsDeterministicForSeed(t *testing.T) {
	re := require.New(t)
	keys := rand.New(rand.NewSource(7)).Perm(300)

	a := New[int](compareInts, WithSeed(99))
	b := New[int](compareInts, WithSeed(99))
	c := New[int](compareInts, WithSeed(100))
	for _, k := range keys {
		a.Insert(k)
		b.Insert(k)
		c.Insert(k)
	}

	var pa, pb []int
	preorder(a, a.root, &pa)
	preorder(b, b.root, &pb)
	re.Equal(pa, pb, "same seed, same insertion order, same shape")
	re.Equal(a.Height(), b.Height())

	re.True(a.CheckConsistency())
	re.True(c.CheckConsistency())
	re.Equal(collect(a), collect(c), "order is seed independent")
}

func TestDuplicateInsertIsNoop(t *testing.T) {
	re := require.New(t)
	zt := New[int](compareInts)
	for _, k := range []int{4, 2, 6} {
		zt.Insert(k)
	}
	nodes := zt.ns.Len()
	var before []int
	preorder(zt, zt.root, &before)

	zt.Insert(2)
	re.Equal(3, zt.Size())
	re.Equal(nodes, zt.ns.Len(), "duplicate insert must not allocate")
	var after []int
	preorder(zt, zt.root, &after)
	re.Equal(before, after, "duplicate insert must not reshape")
}

func TestConsistencyUnderRandomInserts(t *testing.T) {
	re := require.New(t)
	rng := rand.New(rand.NewSource(3))
	zt := New[int](compareInts)
	present := map[int]bool{}
	for i := 0; i < 3000; i++ {
		k := rng.Intn(1000)
		zt.Insert(k)
		present[k] = true
	}
	re.True(zt.CheckConsistency())
	re.Equal(len(present), zt.Size())

	var want []int
	for k := range present {
		want = append(want, k)
	}
	sort.Ints(want)
	re.Equal(want, collect(zt))

	// Expected logarithmic height; a gross bound catches degeneration.
	re.Less(zt.Height(), 64)
}

func TestSeek(t *testing.T) {
	re := require.New(t)
	zt := New[int](compareInts)
	for _, k := range []int{10, 20, 30, 40} {
		zt.Insert(k)
	}
	it := zt.MakeIter()

	it.Seek(20)
	re.True(it.Valid())
	re.Equal(20, it.Key())

	it.Seek(21)
	re.True(it.Valid())
	re.Equal(30, it.Key())

	it.Seek(5)
	re.True(it.Valid())
	re.Equal(10, it.Key())

	it.Seek(41)
	re.False(it.Valid())

	it.SeekToFirst()
	re.Equal(10, it.Key())
	it.SeekToLast()
	re.Equal(40, it.Key())
}

func TestIteratorInvertible(t *testing.T) {
	re := require.New(t)
	zt := New[int](compareInts)
	for _, k := range []int{2, 4, 6, 8} {
		zt.Insert(k)
	}
	it := zt.MakeIter()
	it.SeekToFirst()
	it.Next()
	re.Equal(4, it.Key())
	it.Prev()
	re.Equal(2, it.Key())
	it.Prev()
	re.False(it.Valid())

	it = zt.MakeIter()
	it.SeekToLast()
	it.Prev()
	it.Next()
	re.Equal(8, it.Key())
	it.Next()
	re.False(it.Valid())
}

func TestIteratorPanicsWhenInvalid(t *testing.T) {
	re := require.New(t)
	zt := New[int](compareInts)
	it := zt.MakeIter()
	re.Panics(func() { it.Key() })
	re.Panics(func() { it.Next() })
	re.Panics(func() { it.Prev() })
}

func TestEmptyTree(t *testing.T) {
	re := require.New(t)
	zt := New[int](compareInts)
	re.Equal(0, zt.Size())
	re.Equal(0, zt.Height())
	re.True(zt.CheckConsistency())
	re.False(zt.Contains(1))

	it := zt.MakeIter()
	it.SeekToFirst()
	re.False(it.Valid())
	it.SeekToLast()
	re.False(it.Valid())
	it.Seek(5)
	re.False(it.Valid())
}

// TestConcurrentInsertScan runs writers against readers and consistency
// checks. Run with -race.
func TestConcurrentInsertScan(t *testing.T) {
	re := require.New(t)
	const (
		writers       = 4
		keysPerWriter = 400
	)
	zt := New[int](compareInts)

	var wg sync.WaitGroup
	wg.Add(writers * 2)
	for w := 0; w < writers; w++ {
		go func(base int) {
			defer wg.Done()
			for i := 0; i < keysPerWriter; i++ {
				zt.Insert(base + i)
			}
		}(w * keysPerWriter)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < keysPerWriter; i++ {
				zt.Contains(base + i)
				if i%100 == 0 {
					it := zt.MakeIter()
					for it.SeekToFirst(); it.Valid(); it.Next() {
					}
				}
			}
		}(w * keysPerWriter)
	}
	wg.Wait()

	re.True(zt.CheckConsistency())
	re.Equal(writers*keysPerWriter, zt.Size())
	got := collect(zt)
	re.Len(got, writers*keysPerWriter)
	re.True(sort.IntsAreSorted(got))
}
