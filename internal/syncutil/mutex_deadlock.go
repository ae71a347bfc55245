//go:build deadlock

package syncutil

import "github.com/sasha-s/go-deadlock"

// Mutex is a mutual exclusion lock with deadlock detection.
type Mutex struct {
	deadlock.Mutex
}

// RWMutex is a reader/writer mutual exclusion lock with deadlock
// detection.
type RWMutex struct {
	deadlock.RWMutex
}
