package ziptree

import "github.com/memkv/memtree/arena"

// defaultSeed pins the rank source so that identical insertion orders
// produce identical tree shapes unless the caller opts out.
const defaultSeed int64 = 0xc0debabe

type config struct {
	seed      int64
	arenaOpts []arena.Option
}

// Option configures a Tree.
type Option func(*config)

// WithSeed sets the seed of the rank source. Two trees with the same
// seed and the same insertion order have identical shapes.
func WithSeed(seed int64) Option {
	return func(c *config) { c.seed = seed }
}

// WithArenaPageSize sets the page geometry of the tree's node arena.
func WithArenaPageSize(n int) Option {
	return func(c *config) {
		c.arenaOpts = append(c.arenaOpts, arena.WithPageSize(n))
	}
}
