// Package arena provides a paged, index-addressed allocator for node
// records. Records are addressed by small integer handles rather than
// native pointers; there is no per-record free, record lifetime equals
// arena lifetime.
package arena

import "fmt"

// Ref is a handle to a record in an Arena.
type Ref int32

// Nil is the null handle.
const Nil Ref = -1

const defaultPageSize = 256

type options struct {
	pageSize int
}

// Option configures an Arena.
type Option func(*options)

// WithPageSize sets the number of records per page. The page size is
// fixed once the arena is constructed.
func WithPageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// Arena is a growable store of T records. Pages are allocated at full
// capacity up front, so pointers returned by Alloc and Get stay valid
// as the arena grows.
type Arena[T any] struct {
	pages    [][]T
	len      int
	pageSize int
}

// New constructs an empty Arena.
func New[T any](opts ...Option) *Arena[T] {
	o := options{pageSize: defaultPageSize}
	for _, opt := range opts {
		opt(&o)
	}
	return &Arena[T]{pageSize: o.pageSize}
}

// Alloc returns a handle to a fresh zero-valued record and a pointer
// to it.
func (a *Arena[T]) Alloc() (Ref, *T) {
	page, off := a.len/a.pageSize, a.len%a.pageSize
	if page == len(a.pages) {
		a.pages = append(a.pages, make([]T, a.pageSize))
	}
	r := Ref(a.len)
	a.len++
	return r, &a.pages[page][off]
}

// Get returns the record addressed by r. It panics if r is Nil or out
// of range; handing an arena a foreign handle is a programming error.
func (a *Arena[T]) Get(r Ref) *T {
	if r < 0 || int(r) >= a.len {
		panic(fmt.Sprintf("arena: invalid ref %d (len %d)", r, a.len))
	}
	return &a.pages[int(r)/a.pageSize][int(r)%a.pageSize]
}

// Len returns the number of allocated records.
func (a *Arena[T]) Len() int { return a.len }

// Reset discards all records at once. Outstanding handles and pointers
// become invalid.
func (a *Arena[T]) Reset() {
	a.pages = nil
	a.len = 0
}
