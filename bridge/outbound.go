package bridge

import (
	"github.com/tethersim/tether/sim"
)

// An Outbound publishes a value drawn from the simulation to an external
// transport on a fixed virtual-time period, starting at time 0.
//
// All methods belong to the driver goroutine.
type Outbound[T any] struct {
	name      string
	topic     string
	transport Publisher[T]
	source    func() T
	period    sim.VTimeInSec

	staged    T
	published uint64
}

// Name returns the name of the publisher.
func (p *Outbound[T]) Name() string {
	return p.name
}

// Topic returns the topic the publisher publishes to.
func (p *Outbound[T]) Topic() string {
	return p.topic
}

// Secondary returns true. Publishes run in the secondary phase so that a
// commit at the same instant is applied first and the published value
// reflects it.
func (p *Outbound[T]) Secondary() bool {
	return true
}

// NextEventTime returns the next period tick that has not been published
// yet. There is always a next publish.
func (p *Outbound[T]) NextEventTime(_ sim.VTimeInSec) (sim.VTimeInSec, bool) {
	return sim.VTimeInSec(float64(p.published)) * p.period, true
}

// ComputeUpdate evaluates the source into the staged value.
func (p *Outbound[T]) ComputeUpdate(_ sim.VTimeInSec) {
	p.staged = p.source()
}

// CommitUpdate publishes the staged value and records the tick.
func (p *Outbound[T]) CommitUpdate(_ sim.VTimeInSec) {
	p.transport.Publish(p.topic, p.staged)
	p.published++
}

// InitState resets the publish history so that the first publish happens at
// time 0.
func (p *Outbound[T]) InitState() {
	var zero T
	p.staged = zero
	p.published = 0
}

// PublishCount returns the number of publishes committed so far.
func (p *Outbound[T]) PublishCount() uint64 {
	return p.published
}
