package bridge

import (
	"log"
	"sync"

	"github.com/tethersim/tether/sim"
)

// InboundBuilder can build inbound bridges.
type InboundBuilder[T any] struct {
	transport Subscriber[T]
	topic     string
	epsilon   sim.VTimeInSec
}

// MakeInboundBuilder creates an InboundBuilder with the default epsilon.
func MakeInboundBuilder[T any]() InboundBuilder[T] {
	return InboundBuilder[T]{
		epsilon: DefaultEpsilon,
	}
}

// WithTransport sets the transport that delivers the messages.
func (b InboundBuilder[T]) WithTransport(s Subscriber[T]) InboundBuilder[T] {
	b.transport = s
	return b
}

// WithTopic sets the topic to subscribe to.
func (b InboundBuilder[T]) WithTopic(topic string) InboundBuilder[T] {
	b.topic = topic
	return b
}

// WithEpsilon sets the forward step used to schedule the update for a
// pending arrival. The right value depends on the time resolution of the
// hosting simulation.
func (b InboundBuilder[T]) WithEpsilon(e sim.VTimeInSec) InboundBuilder[T] {
	b.epsilon = e
	return b
}

// Build creates the inbound bridge and registers its Deliver method with
// the transport. A missing transport or topic is a fatal construction
// error. The bridge cannot exist without a transport binding.
func (b InboundBuilder[T]) Build(name string) *Inbound[T] {
	sim.NameMustBeValid(name)
	b.mustBeComplete()

	in := &Inbound[T]{
		name:    name,
		topic:   b.topic,
		epsilon: b.epsilon,
	}
	in.cond = sync.NewCond(&in.bufLock)

	b.transport.Subscribe(b.topic, in.Deliver)

	return in
}

func (b InboundBuilder[T]) mustBeComplete() {
	if b.transport == nil {
		log.Panic("inbound bridge requires a transport")
	}

	if b.topic == "" {
		log.Panic("inbound bridge requires a topic")
	}

	if b.epsilon <= 0 {
		log.Panic("epsilon must be positive")
	}
}
