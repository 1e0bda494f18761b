// Package inflight tracks calls that have been dispatched but not yet
// settled, so that identical callers can share one outcome.
package inflight

import (
	"context"
	"sync"
)

// Call is a single outstanding call. It is settled exactly once; every
// waiter observes the same value and error.
type Call[T any] struct {
	done    chan struct{}
	once    sync.Once
	val     T
	err     error
	mu      sync.Mutex
	waiters int
}

func newCall[T any]() *Call[T] {
	return &Call[T]{done: make(chan struct{}), waiters: 1}
}

// Wait blocks until the call settles or ctx is done. A cancelled waiter
// stops waiting but does not affect the call itself.
func (c *Call[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-c.done:
		return c.val, c.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Waiters reports how many callers have attached to this call, the
// owner included.
func (c *Call[T]) Waiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.waiters
}

func (c *Call[T]) attach() {
	c.mu.Lock()
	c.waiters++
	c.mu.Unlock()
}

// Group is a registry of outstanding calls keyed by request key.
type Group[T any] struct {
	mu sync.Mutex
	m  map[string]*Call[T]
}

// New creates an empty Group.
func New[T any]() *Group[T] {
	return &Group[T]{
		m: make(map[string]*Call[T]),
	}
}

// Acquire returns the outstanding call for key, or registers a new one.
// owner is true when the caller registered the call and is therefore
// responsible for settling it.
func (g *Group[T]) Acquire(key string) (call *Call[T], owner bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.m[key]; ok {
		c.attach()
		return c, false
	}

	c := newCall[T]()
	g.m[key] = c
	return c, true
}

// Join returns the outstanding call for key, if any.
func (g *Group[T]) Join(key string) (*Call[T], bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.m[key]
	if ok {
		c.attach()
	}
	return c, ok
}

// InFlight reports whether a call for key is outstanding.
func (g *Group[T]) InFlight(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.m[key]
	return ok
}

// Settle records the outcome of call and releases its waiters. The
// registry entry is removed first, and only if it still refers to call:
// a Clear followed by a fresh registration for the same key is left
// untouched. Settling an already settled call is a no-op.
func (g *Group[T]) Settle(key string, call *Call[T], val T, err error) {
	g.mu.Lock()
	if g.m[key] == call {
		delete(g.m, key)
	}
	g.mu.Unlock()

	call.once.Do(func() {
		call.val = val
		call.err = err
		close(call.done)
	})
}

// Clear forgets every outstanding call. Calls already handed out still
// settle normally for their waiters.
func (g *Group[T]) Clear() {
	g.mu.Lock()
	g.m = make(map[string]*Call[T])
	g.mu.Unlock()
}

// Len returns the number of outstanding calls.
func (g *Group[T]) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.m)
}
