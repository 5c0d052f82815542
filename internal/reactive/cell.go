// Package reactive provides the two channel constructs the controllers are
// built on: a latest-value state cell and an at-most-once side-effect stream.
// They are deliberately separate types; state is replayable, effects are not.
package reactive

import (
	"context"
	"sync"
)

// Cell holds the latest value of a piece of state. Every Set is delivered to
// all subscribers, and a new subscriber immediately receives the current
// value. Delivery is conflated: a slow subscriber observes the newest value,
// never a backlog of stale ones.
type Cell[T any] struct {
	mu    sync.Mutex
	value T
	subs  map[int]chan T
	next  int
}

func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{
		value: initial,
		subs:  make(map[int]chan T),
	}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set replaces the current value and notifies all subscribers.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = v
	for _, ch := range c.subs {
		conflate(ch, v)
	}
}

// Update applies fn to the current value under the cell's lock and publishes
// the result. Mutations are sequential and atomic from a subscriber's
// perspective; no partial state is ever observable.
func (c *Cell[T]) Update(fn func(T) T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = fn(c.value)
	for _, ch := range c.subs {
		conflate(ch, c.value)
	}
	return c.value
}

// Subscribe registers a new observer. The returned channel carries the
// current value immediately and every subsequent value until ctx is done.
func (c *Cell[T]) Subscribe(ctx context.Context) <-chan T {
	c.mu.Lock()
	ch := make(chan T, 1)
	ch <- c.value
	id := c.next
	c.next++
	c.subs[id] = ch
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
		// Channel is left open; senders hold the lock and cannot race a close
		// here, but draining readers simply stop receiving.
	}()
	return ch
}

// conflate replaces any undelivered value so the receiver always gets the
// newest one. Channel capacity is 1 and senders hold the cell lock, so the
// drain-then-send pair cannot interleave with another sender.
func conflate[T any](ch chan T, v T) {
	select {
	case <-ch:
	default:
	}
	ch <- v
}
