package driver

import (
	"log"
	"reflect"
	"sync"

	"github.com/tethersim/tether/sim"
)

// HookPosPoll triggers after a poll pass over the registered systems.
var HookPosPoll = &sim.HookPos{Name: "Poll"}

// HookPosSystemCommit triggers after a system commits an update. Item is
// the System, Detail is the commit time.
var HookPosSystemCommit = &sim.HookPos{Name: "SystemCommit"}

// A Driver owns the simulation clock for a set of systems. It polls the
// systems for pending updates at a fixed virtual frequency, schedules one
// update event per system per due time, and applies the compute and commit
// calls when the engine dispatches those events.
//
// The driver serializes all of its event handling with an internal lock, so
// the protocol calls stay strictly sequential even on a parallel engine.
type Driver struct {
	sim.HookableBase

	name     string
	engine   sim.Engine
	pollFreq sim.Freq

	mu          sync.Mutex
	systems     []System
	byName      map[string]System
	pendingAt   map[string]sim.VTimeInSec
	horizon     sim.VTimeInSec
	initialized bool
	running     bool
}

type pollEvent struct {
	*sim.EventBase
}

type updateEvent struct {
	*sim.EventBase
	sys System
}

// Name returns the name of the driver.
func (d *Driver) Name() string {
	return d.name
}

// Register adds a system to the driver. Registering two systems with the
// same name is a fatal error.
func (d *Driver) Register(sys System) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		log.Panic("cannot register a system while the driver is running")
	}

	name := sys.Name()
	if _, exists := d.byName[name]; exists {
		log.Panicf("system %s is already registered", name)
	}

	d.byName[name] = sys
	d.systems = append(d.systems, sys)

	if d.initialized {
		sys.InitState()
	}
}

// Systems returns the registered systems in registration order.
func (d *Driver) Systems() []System {
	d.mu.Lock()
	defer d.mu.Unlock()

	systems := make([]System, len(d.systems))
	copy(systems, d.systems)
	return systems
}

// SystemByName returns the registered system with the given name, or nil.
func (d *Driver) SystemByName(name string) System {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.byName[name]
}

// CurrentTime returns the current virtual time of the engine.
func (d *Driver) CurrentTime() sim.VTimeInSec {
	return d.engine.CurrentTime()
}

// Run initializes the systems on the first call, then processes events
// until no event at or before the horizon is left. Updates that fall past
// the horizon are not scheduled and remain pending for a later run.
func (d *Driver) Run(until sim.VTimeInSec) error {
	d.mu.Lock()

	if d.running {
		d.mu.Unlock()
		log.Panic("driver is already running")
	}

	start := d.engine.CurrentTime()
	if until <= start {
		d.mu.Unlock()
		log.Panic("run horizon must be after the current time")
	}

	d.running = true
	d.horizon = until

	if !d.initialized {
		for _, sys := range d.systems {
			sys.InitState()
		}
		d.initialized = true
	}

	d.engine.Schedule(pollEvent{
		EventBase: sim.NewEventBase(d.pollFreq.ThisTick(start), d),
	})
	d.mu.Unlock()

	err := d.engine.Run()

	d.mu.Lock()
	d.running = false
	d.mu.Unlock()

	return err
}

// Handle dispatches the driver's own events.
func (d *Driver) Handle(e sim.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch evt := e.(type) {
	case pollEvent:
		d.poll(evt)
	case updateEvent:
		d.update(evt)
	default:
		log.Panicf("driver cannot handle event %s", reflect.TypeOf(e))
	}

	return nil
}

func (d *Driver) poll(evt pollEvent) {
	now := evt.Time()

	for _, sys := range d.systems {
		d.querySystem(sys, now)
	}

	d.scheduleNextPoll(now)

	hookCtx := sim.HookCtx{
		Domain: d,
		Pos:    HookPosPoll,
		Item:   evt,
	}
	d.InvokeHook(hookCtx)
}

func (d *Driver) update(evt updateEvent) {
	now := evt.Time()
	sys := evt.sys

	sys.ComputeUpdate(now)
	sys.CommitUpdate(now)
	delete(d.pendingAt, sys.Name())

	hookCtx := sim.HookCtx{
		Domain: d,
		Pos:    HookPosSystemCommit,
		Item:   sys,
		Detail: now,
	}
	d.InvokeHook(hookCtx)

	// Re-query right away so that a periodic system keeps its exact
	// cadence instead of waiting for the next poll.
	d.querySystem(sys, now)
}

// querySystem schedules an update event for the system if it reports one
// pending. A system has at most one update event outstanding.
func (d *Driver) querySystem(sys System, now sim.VTimeInSec) {
	if _, outstanding := d.pendingAt[sys.Name()]; outstanding {
		return
	}

	t, pending := sys.NextEventTime(now)
	if !pending {
		return
	}

	if t > d.horizon {
		return
	}

	d.pendingAt[sys.Name()] = t
	d.engine.Schedule(d.makeUpdateEvent(t, sys))
}

func (d *Driver) makeUpdateEvent(t sim.VTimeInSec, sys System) updateEvent {
	if sys.Secondary() {
		return updateEvent{
			EventBase: sim.NewSecondaryEventBase(t, d),
			sys:       sys,
		}
	}

	return updateEvent{
		EventBase: sim.NewEventBase(t, d),
		sys:       sys,
	}
}

func (d *Driver) scheduleNextPoll(now sim.VTimeInSec) {
	next := d.pollFreq.NextTick(now)
	if next > d.horizon {
		return
	}

	d.engine.Schedule(pollEvent{
		EventBase: sim.NewEventBase(next, d),
	})
}
