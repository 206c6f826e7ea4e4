// Package pubsub provides a small typed topic bus.
//
// Listeners subscribe to a topic or to the wildcard topic. Publishing a topic
// delivers the payload to the topic's listeners in registration order, then to
// the wildcard listeners. Delivery is synchronous by default; in async mode
// every invocation is deferred onto a sched.Queue.
package pubsub

import (
	"sync"

	"github.com/vissense/vissense-go/pkg/sched"
)

// Listener receives a published payload.
type Listener[K comparable, T any] func(topic K, payload T)

// Unregister removes a listener. It returns true the first time it removes
// the listener and false afterwards.
type Unregister func() bool

// Noop is the Unregister returned when nothing was registered.
func Noop() bool { return false }

// Config configures a PubSub.
type Config[K comparable] struct {
	// Async defers every listener invocation onto Queue.
	Async bool

	// AnyTopic is the wildcard topic. Listeners registered on it receive every
	// published topic.
	AnyTopic K

	// Queue runs async invocations. A nil Queue is replaced with a new one.
	Queue *sched.Queue
}

type entry[K comparable, T any] struct {
	id uint64
	fn Listener[K, T]
}

// PubSub is a topic bus. It is safe for concurrent use.
type PubSub[K comparable, T any] struct {
	mu sync.RWMutex

	config Config[K]
	nextID uint64

	// Listeners per topic in registration order
	topics map[K][]entry[K, T]
}

// New creates a PubSub with the given configuration.
func New[K comparable, T any](config Config[K]) *PubSub[K, T] {
	if config.Async && config.Queue == nil {
		config.Queue = sched.NewQueue()
	}
	return &PubSub[K, T]{
		config: config,
		topics: make(map[K][]entry[K, T]),
	}
}

// On registers fn for topic. A nil fn registers nothing and yields Noop.
func (p *PubSub[K, T]) On(topic K, fn Listener[K, T]) Unregister {
	if fn == nil {
		return Noop
	}

	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.topics[topic] = append(p.topics[topic], entry[K, T]{id: id, fn: fn})
	p.mu.Unlock()

	return func() bool {
		return p.remove(topic, id)
	}
}

func (p *PubSub[K, T]) remove(topic K, id uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	entries := p.topics[topic]
	for i, e := range entries {
		if e.id == id {
			// copy so in-flight snapshots keep their view
			next := make([]entry[K, T], 0, len(entries)-1)
			next = append(next, entries[:i]...)
			next = append(next, entries[i+1:]...)
			if len(next) == 0 {
				delete(p.topics, topic)
			} else {
				p.topics[topic] = next
			}
			return true
		}
	}
	return false
}

// Publish delivers payload to the listeners of topic, then to the wildcard
// listeners unless topic is the wildcard itself. The listener set is
// snapshotted at publish time.
func (p *PubSub[K, T]) Publish(topic K, payload T) {
	p.mu.RLock()
	listeners := make([]Listener[K, T], 0, len(p.topics[topic])+len(p.topics[p.config.AnyTopic]))
	for _, e := range p.topics[topic] {
		listeners = append(listeners, e.fn)
	}
	if topic != p.config.AnyTopic {
		for _, e := range p.topics[p.config.AnyTopic] {
			listeners = append(listeners, e.fn)
		}
	}
	p.mu.RUnlock()

	for _, fn := range listeners {
		if p.config.Async {
			p.config.Queue.Defer(func() { fn(topic, payload) })
		} else {
			fn(topic, payload)
		}
	}
}

// Len returns the number of listeners registered for topic.
func (p *PubSub[K, T]) Len(topic K) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.topics[topic])
}

// Async reports whether invocations are deferred.
func (p *PubSub[K, T]) Async() bool {
	return p.config.Async
}

// Queue returns the queue used for async invocations, or nil in sync mode.
func (p *PubSub[K, T]) Queue() *sched.Queue {
	return p.config.Queue
}
