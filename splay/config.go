package splay

import "github.com/memkv/memtree/arena"

type config struct {
	optimisticInsert bool
	arenaOpts        []arena.Option
}

// Option configures a Tree.
type Option func(*config)

// WithOptimisticInsert makes Insert probe for a duplicate under the
// shared lock before taking the exclusive lock, letting concurrent
// readers proceed through the probe. Duplicate-heavy write workloads
// benefit; for unique-key workloads the probe is pure overhead. The
// exclusive section re-checks, so the observable behavior is identical.
func WithOptimisticInsert() Option {
	return func(c *config) { c.optimisticInsert = true }
}

// WithArenaPageSize sets the page geometry of the tree's node arena.
func WithArenaPageSize(n int) Option {
	return func(c *config) {
		c.arenaOpts = append(c.arenaOpts, arena.WithPageSize(n))
	}
}
