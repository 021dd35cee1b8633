package sim

import (
	"log"
	"reflect"
)

// LogHookBase provides the common logic for hooks that write into a logger.
type LogHookBase struct {
	*log.Logger
}

// An EventLogger prints a line for every event the engine dispatches.
type EventLogger struct {
	LogHookBase
}

// NewEventLogger creates an EventLogger that writes into the given logger.
func NewEventLogger(logger *log.Logger) *EventLogger {
	h := new(EventLogger)
	h.Logger = logger

	return h
}

// Func writes the event information into the logger.
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	owner, ok := evt.Handler().(Named)
	if ok {
		h.Printf("%.10f, %s -> %s",
			evt.Time(), reflect.TypeOf(evt), owner.Name())

		return
	}

	h.Printf("%.10f, %s", evt.Time(), reflect.TypeOf(evt))
}
