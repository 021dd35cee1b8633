package bus

import (
	"log"
	"sync"
)

// Builder can build buses.
type Builder[T any] struct {
	logger *log.Logger
}

// MakeBuilder creates a Builder.
func MakeBuilder[T any]() Builder[T] {
	return Builder[T]{}
}

// WithLogger sets a logger that traces every delivery.
func (b Builder[T]) WithLogger(logger *log.Logger) Builder[T] {
	b.logger = logger
	return b
}

// Build creates the bus.
func (b Builder[T]) Build() *Bus[T] {
	bus := &Bus[T]{
		topics: make(map[string]*topicState[T]),
		logger: b.logger,
	}
	bus.cond = sync.NewCond(&bus.mu)

	return bus
}
