package simulation

import (
	"github.com/tethersim/tether/datarecording"
	"github.com/tethersim/tether/driver"
	"github.com/tethersim/tether/monitoring"
	"github.com/tethersim/tether/sim"
)

// A Simulation provides the services required to run a tether simulation.
type Simulation struct {
	id string

	engine       sim.Engine
	driver       *driver.Driver
	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
	commitLogger *driver.CommitLogger
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// GetEngine returns the engine used in the simulation.
func (s *Simulation) GetEngine() sim.Engine {
	return s.engine
}

// GetDriver returns the driver that schedules system updates.
func (s *Simulation) GetDriver() *driver.Driver {
	return s.driver
}

// GetDataRecorder returns the data recorder used in the simulation.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation. The monitor is nil
// when monitoring is disabled.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// RegisterSystem registers a system with the simulation.
func (s *Simulation) RegisterSystem(sys driver.System) {
	s.driver.Register(sys)
}

// Systems returns all registered systems.
func (s *Simulation) Systems() []driver.System {
	return s.driver.Systems()
}

// GetSystemByName returns the system with the given name.
func (s *Simulation) GetSystemByName(name string) driver.System {
	return s.driver.SystemByName(name)
}

// Run advances the simulation until the given time.
func (s *Simulation) Run(until sim.VTimeInSec) error {
	return s.driver.Run(until)
}

// Terminate terminates the simulation.
func (s *Simulation) Terminate() {
	err := s.dataRecorder.Close()
	if err != nil {
		panic(err)
	}
}
