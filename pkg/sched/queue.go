// Package sched provides a serial queue for work deferred to the next
// scheduling tick.
//
// A Queue runs deferred functions one at a time, in the order they were
// deferred, on a drainer goroutine that only exists while work is pending.
package sched

import (
	"sync"
)

// Cancel removes a pending item from the queue. It returns true if the item
// was still pending and has been removed, false if it already ran or was
// already cancelled.
type Cancel func() bool

// item is one deferred function.
type item struct {
	fn func()
}

// Queue is a FIFO of deferred functions. The zero value is ready to use.
type Queue struct {
	mu sync.Mutex

	// Pending items in FIFO order
	pending []*item

	// running is true while a drainer goroutine is active
	running bool

	// idle wakes Wait callers when the queue drains
	idle *sync.Cond
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Defer enqueues fn to run after everything already queued.
// A nil fn is ignored and the returned Cancel reports false.
func (q *Queue) Defer(fn func()) Cancel {
	if fn == nil {
		return func() bool { return false }
	}

	it := &item{fn: fn}

	q.mu.Lock()
	q.pending = append(q.pending, it)
	if !q.running {
		q.running = true
		go q.drain()
	}
	q.mu.Unlock()

	return func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()

		for i, p := range q.pending {
			if p == it {
				q.pending = append(q.pending[:i], q.pending[i+1:]...)
				q.signalIfIdle()
				return true
			}
		}
		return false
	}
}

// Len returns the number of pending items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Wait blocks until no items are pending and none is running.
// It must not be called from a deferred function.
func (q *Queue) Wait() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.initCond()
	for q.running || len(q.pending) > 0 {
		q.idle.Wait()
	}
}

// drain runs pending items until the queue is empty.
func (q *Queue) drain() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.running = false
			q.signalIfIdle()
			q.mu.Unlock()
			return
		}
		it := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()

		it.fn()
	}
}

// initCond lazily creates the condition variable. Caller holds q.mu.
func (q *Queue) initCond() {
	if q.idle == nil {
		q.idle = sync.NewCond(&q.mu)
	}
}

// signalIfIdle wakes waiters once the queue is drained. Caller holds q.mu.
func (q *Queue) signalIfIdle() {
	if q.idle != nil && !q.running && len(q.pending) == 0 {
		q.idle.Broadcast()
	}
}
