package bridge

import (
	"log"

	"github.com/tethersim/tether/sim"
)

// OutboundBuilder can build periodic publishers.
type OutboundBuilder[T any] struct {
	transport Publisher[T]
	topic     string
	source    func() T
	period    sim.VTimeInSec
}

// MakeOutboundBuilder creates an OutboundBuilder.
func MakeOutboundBuilder[T any]() OutboundBuilder[T] {
	return OutboundBuilder[T]{}
}

// WithTransport sets the transport to publish to.
func (b OutboundBuilder[T]) WithTransport(p Publisher[T]) OutboundBuilder[T] {
	b.transport = p
	return b
}

// WithTopic sets the topic to publish to.
func (b OutboundBuilder[T]) WithTopic(topic string) OutboundBuilder[T] {
	b.topic = topic
	return b
}

// WithSource sets the function that produces the value to publish. It is
// evaluated once per publish, on the driver goroutine.
func (b OutboundBuilder[T]) WithSource(source func() T) OutboundBuilder[T] {
	b.source = source
	return b
}

// WithPeriod sets the virtual time between two publishes.
func (b OutboundBuilder[T]) WithPeriod(period sim.VTimeInSec) OutboundBuilder[T] {
	b.period = period
	return b
}

// Build creates the publisher. A missing transport, topic, or source, or a
// non-positive period, is a fatal construction error.
func (b OutboundBuilder[T]) Build(name string) *Outbound[T] {
	sim.NameMustBeValid(name)
	b.mustBeComplete()

	return &Outbound[T]{
		name:      name,
		topic:     b.topic,
		transport: b.transport,
		source:    b.source,
		period:    b.period,
	}
}

func (b OutboundBuilder[T]) mustBeComplete() {
	if b.transport == nil {
		log.Panic("outbound publisher requires a transport")
	}

	if b.topic == "" {
		log.Panic("outbound publisher requires a topic")
	}

	if b.source == nil {
		log.Panic("outbound publisher requires a source")
	}

	if b.period <= 0 {
		log.Panic("publish period must be positive")
	}
}
