// Package bridge reconciles asynchronous message streams with the
// deterministic clock of a discrete event simulation.
package bridge

// A Subscriber can register a per-topic callback with an external transport.
// The transport invokes the callback once per arriving message, on a thread
// the subscriber does not control.
type Subscriber[T any] interface {
	Subscribe(topic string, fn func(msg T))
}

// A Publisher can send messages to an external transport.
type Publisher[T any] interface {
	Publish(topic string, msg T)
}
