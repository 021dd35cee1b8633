// Package bus provides an in-process, topic addressed message transport.
//
// Each topic delivers its messages in publish order on a dedicated
// goroutine, so subscribers receive callbacks on a thread they do not
// control, the way an external transport would deliver them.
package bus

import (
	"log"
	"sync"
)

// A Bus carries messages of type T between publishers and subscribers,
// keyed by topic.
type Bus[T any] struct {
	mu        sync.Mutex
	cond      *sync.Cond
	topics    map[string]*topicState[T]
	published uint64
	delivered uint64
	closed    bool

	logger *log.Logger
	wg     sync.WaitGroup
}

type topicState[T any] struct {
	name string

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []T
	subs   []func(T)
	closed bool
}

// Subscribe registers fn to be invoked once per message published to the
// topic, in publish order, on the topic's delivery goroutine. Messages
// published before the subscription are not replayed.
func (b *Bus[T]) Subscribe(topic string, fn func(T)) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	t := b.topicLocked(topic)
	b.mu.Unlock()

	t.mu.Lock()
	t.subs = append(t.subs, fn)
	t.mu.Unlock()
}

// Publish enqueues msg for delivery to all subscribers of the topic. It
// never blocks on the subscribers. Publishing on a closed bus is a no-op.
func (b *Bus[T]) Publish(topic string, msg T) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	t := b.topicLocked(topic)
	b.published++
	b.mu.Unlock()

	t.mu.Lock()
	t.queue = append(t.queue, msg)
	t.cond.Signal()
	t.mu.Unlock()
}

// Drain blocks until every message published so far has been handed to
// every subscriber of its topic.
func (b *Bus[T]) Drain() {
	b.mu.Lock()
	for b.delivered < b.published {
		b.cond.Wait()
	}
	b.mu.Unlock()
}

// Close stops the delivery goroutines after the already queued messages are
// delivered. Publish and Subscribe calls after Close are no-ops.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	topics := make([]*topicState[T], 0, len(b.topics))
	for _, t := range b.topics {
		topics = append(topics, t)
	}
	b.mu.Unlock()

	for _, t := range topics {
		t.mu.Lock()
		t.closed = true
		t.cond.Broadcast()
		t.mu.Unlock()
	}

	b.wg.Wait()
}

// topicLocked returns the state for a topic, creating it and starting its
// delivery goroutine on first use. The bus lock must be held.
func (b *Bus[T]) topicLocked(topic string) *topicState[T] {
	t, found := b.topics[topic]
	if found {
		return t
	}

	t = &topicState[T]{name: topic}
	t.cond = sync.NewCond(&t.mu)
	b.topics[topic] = t

	b.wg.Add(1)
	go b.deliverLoop(t)

	return t
}

func (b *Bus[T]) deliverLoop(t *topicState[T]) {
	defer b.wg.Done()

	t.mu.Lock()
	for {
		for len(t.queue) == 0 && !t.closed {
			t.cond.Wait()
		}

		if len(t.queue) == 0 {
			t.mu.Unlock()
			return
		}

		msg := t.queue[0]
		t.queue = t.queue[1:]
		subs := make([]func(T), len(t.subs))
		copy(subs, t.subs)
		t.mu.Unlock()

		for _, fn := range subs {
			fn(msg)
		}

		if b.logger != nil {
			b.logger.Printf("bus: delivered %s to %d subscribers",
				t.name, len(subs))
		}

		b.markDelivered()

		t.mu.Lock()
	}
}

func (b *Bus[T]) markDelivered() {
	b.mu.Lock()
	b.delivered++
	b.cond.Broadcast()
	b.mu.Unlock()
}
