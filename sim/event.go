package sim

// VTimeInSec is the virtual time of the simulation, in seconds.
type VTimeInSec float64

// An Event is something that takes place at a known virtual time.
type Event interface {
	// Time returns the virtual time at which the event takes place.
	Time() VTimeInSec

	// Handler returns the handler that processes the event.
	Handler() Handler

	// IsSecondary tells if the event is a secondary event. Secondary events
	// are handled after all same-time primary events are handled.
	IsSecondary() bool
}

// A Handler processes events.
//
// An event always belongs to one handler. Only that handler may schedule the
// event, and handling the event may only mutate that handler's own state.
type Handler interface {
	Handle(e Event) error
}

// EventBase provides the fields and getters shared by all event types.
type EventBase struct {
	ID        string
	time      VTimeInSec
	handler   Handler
	secondary bool
}

// NewEventBase creates an EventBase that takes place at time t.
func NewEventBase(t VTimeInSec, handler Handler) *EventBase {
	e := new(EventBase)
	e.ID = GetIDGenerator().Generate()
	e.time = t
	e.handler = handler
	return e
}

// NewSecondaryEventBase creates an EventBase for an event that runs after
// all the primary events scheduled at the same time.
func NewSecondaryEventBase(t VTimeInSec, handler Handler) *EventBase {
	e := NewEventBase(t, handler)
	e.secondary = true
	return e
}

// Time returns the virtual time at which the event takes place.
func (e EventBase) Time() VTimeInSec {
	return e.time
}

// Handler returns the handler that processes the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// IsSecondary returns true if the event runs in the secondary phase of its
// time step.
func (e EventBase) IsSecondary() bool {
	return e.secondary
}
