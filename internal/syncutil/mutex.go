//go:build !deadlock

// Package syncutil provides the mutex types used by the tree packages.
// Building with the "deadlock" tag swaps in deadlock-detecting
// implementations.
package syncutil

import "sync"

// Mutex is a mutual exclusion lock.
type Mutex struct {
	sync.Mutex
}

// RWMutex is a reader/writer mutual exclusion lock.
type RWMutex struct {
	sync.RWMutex
}
