package driver

import (
	"log"

	"github.com/tethersim/tether/sim"
)

// Builder can build drivers.
type Builder struct {
	engine   sim.Engine
	pollFreq sim.Freq
}

// MakeBuilder creates a Builder with the default poll frequency of 1 KHz.
func MakeBuilder() Builder {
	return Builder{
		pollFreq: 1 * sim.KHz,
	}
}

// WithEngine sets the engine the driver schedules on.
func (b Builder) WithEngine(e sim.Engine) Builder {
	b.engine = e
	return b
}

// WithPollFreq sets the virtual frequency at which the driver polls the
// systems for pending updates.
func (b Builder) WithPollFreq(f sim.Freq) Builder {
	b.pollFreq = f
	return b
}

// Build creates the driver.
func (b Builder) Build(name string) *Driver {
	sim.NameMustBeValid(name)

	if b.engine == nil {
		log.Panic("driver requires an engine")
	}

	if b.pollFreq <= 0 {
		log.Panic("poll frequency must be positive")
	}

	return &Driver{
		name:      name,
		engine:    b.engine,
		pollFreq:  b.pollFreq,
		byName:    make(map[string]System),
		pendingAt: make(map[string]sim.VTimeInSec),
	}
}
