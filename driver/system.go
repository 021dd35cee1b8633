// Package driver runs pull style systems on top of a discrete event engine.
//
// A system does not schedule its own events. Instead the driver polls each
// system for the time of its next required update, schedules that update on
// the engine, and applies it with the compute and commit calls when the
// engine reaches that time.
package driver

import (
	"github.com/tethersim/tether/sim"
)

// A System is a unit of simulation state driven by the query, compute,
// commit protocol. All methods except InitState are called on the driver
// goroutine, strictly sequentially. InitState is called once before the
// first poll.
type System interface {
	sim.Named

	// InitState establishes the state baseline before the first update.
	InitState()

	// NextEventTime returns the time at which the system needs its next
	// update, and whether such an update is pending at all. The returned
	// time must not precede now. The query must not mutate any state.
	NextEventTime(now sim.VTimeInSec) (sim.VTimeInSec, bool)

	// ComputeUpdate stages the update that was announced by NextEventTime.
	ComputeUpdate(t sim.VTimeInSec)

	// CommitUpdate applies the staged update to the committed state.
	CommitUpdate(t sim.VTimeInSec)

	// Secondary reports whether the system's updates run in the secondary
	// event phase, after all same-time primary updates.
	Secondary() bool
}
