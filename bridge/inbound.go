package bridge

import (
	"sync"

	"github.com/tethersim/tether/sim"
)

// DefaultEpsilon is the default forward step used to schedule an update for
// a pending arrival at the next representable instant.
const DefaultEpsilon sim.VTimeInSec = 0.0001

// An Inbound bridges one asynchronously written message stream into the
// simulation. It buffers the most recent message of type T, counts arrivals,
// and exposes the query, compute, and commit protocol that lets a driver
// apply arrivals at deterministic virtual times.
//
// Deliver may be called from any number of goroutines. All other methods
// belong to the driver goroutine.
type Inbound[T any] struct {
	name    string
	topic   string
	epsilon sim.VTimeInSec

	// The buffer is the only state shared with transport goroutines.
	bufLock  sync.Mutex
	cond     *sync.Cond
	latest   T
	arrivals uint64

	staged      T
	stagedCount uint64

	committed      T
	committedCount uint64
}

// Name returns the name of the bridge.
func (b *Inbound[T]) Name() string {
	return b.name
}

// Topic returns the topic the bridge is subscribed to. The topic only
// identifies the bridge for naming and logging.
func (b *Inbound[T]) Topic() string {
	return b.topic
}

// Secondary returns false. Inbound commits run in the primary phase so that
// same-instant publishers observe the freshly committed value.
func (b *Inbound[T]) Secondary() bool {
	return false
}

// Deliver stores msg as the latest message and wakes the goroutines blocked
// in WaitForMessage. The slot holds only the most recent value. Earlier
// undelivered messages are coalesced away.
func (b *Inbound[T]) Deliver(msg T) {
	b.bufLock.Lock()
	b.latest = msg
	b.arrivals++
	b.cond.Broadcast()
	b.bufLock.Unlock()
}

// NextEventTime reports the time at which a pending arrival must be applied.
// It returns now plus the configured epsilon when arrivals have not been
// committed yet, and ok=false when the bridge is quiescent. It never
// mutates any state.
func (b *Inbound[T]) NextEventTime(now sim.VTimeInSec) (sim.VTimeInSec, bool) {
	b.bufLock.Lock()
	arrivals := b.arrivals
	b.bufLock.Unlock()

	if arrivals == b.committedCount {
		return 0, false
	}

	return now + b.epsilon, true
}

// ComputeUpdate copies the latest message and the arrival count into the
// staged update. The copy is atomic with respect to Deliver.
func (b *Inbound[T]) ComputeUpdate(_ sim.VTimeInSec) {
	b.bufLock.Lock()
	b.staged = b.latest
	b.stagedCount = b.arrivals
	b.bufLock.Unlock()
}

// CommitUpdate moves the staged update into the committed state. It is the
// sole writer of committed state. Committing again without an intervening
// Deliver and ComputeUpdate leaves the state unchanged.
func (b *Inbound[T]) CommitUpdate(_ sim.VTimeInSec) {
	b.committed = b.staged
	b.committedCount = b.stagedCount
}

// InitState resets the committed state to the zero value of T and count 0,
// the baseline before any message arrives.
func (b *Inbound[T]) InitState() {
	var zero T
	b.staged = zero
	b.stagedCount = 0
	b.committed = zero
	b.committedCount = 0
}

// OutputValue returns the last committed message. It never touches the
// inbound buffer, so it is always consistent with the last commit, never
// with a not yet committed arrival.
func (b *Inbound[T]) OutputValue() T {
	return b.committed
}

// MessageCount returns the committed arrival count.
func (b *Inbound[T]) MessageCount() uint64 {
	return b.committedCount
}

// ArrivalCount returns the live arrival count.
func (b *Inbound[T]) ArrivalCount() uint64 {
	b.bufLock.Lock()
	arrivals := b.arrivals
	b.bufLock.Unlock()
	return arrivals
}

// WaitForMessage blocks the calling goroutine until the live arrival count
// differs from prior, then returns the new count. The predicate is
// re-checked after every wakeup.
func (b *Inbound[T]) WaitForMessage(prior uint64) uint64 {
	b.bufLock.Lock()
	for b.arrivals == prior {
		b.cond.Wait()
	}
	arrivals := b.arrivals
	b.bufLock.Unlock()
	return arrivals
}
