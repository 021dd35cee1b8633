package simulation

import (
	"github.com/rs/xid"

	"github.com/tethersim/tether/datarecording"
	"github.com/tethersim/tether/driver"
	"github.com/tethersim/tether/monitoring"
	"github.com/tethersim/tether/sim"
)

// Builder can be used to build a simulation.
type Builder struct {
	parallelEngine bool
	monitorOn      bool
	monitorPort    int
	launchBrowser  bool
	pollFreq       sim.Freq
	outputFileName string
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		parallelEngine: false,
		monitorOn:      true,
		pollFreq:       1 * sim.KHz,
	}
}

// WithParallelEngine sets the simulation to use a parallel engine.
func (b Builder) WithParallelEngine() Builder {
	b.parallelEngine = true
	return b
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithBrowserLaunch opens the monitoring dashboard in the default browser
// when the simulation starts.
func (b Builder) WithBrowserLaunch() Builder {
	b.launchBrowser = true
	return b
}

// WithPollFreq sets the frequency at which the driver polls systems for
// pending updates.
func (b Builder) WithPollFreq(freq sim.Freq) Builder {
	b.pollFreq = freq
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.monitorOn && b.launchBrowser {
		panic("browser launch requires monitoring to be enabled")
	}

	if b.pollFreq <= 0 {
		panic("poll frequency must be positive")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{}
	s.id = xid.New().String()

	outputPath := b.outputFileName
	if outputPath == "" {
		outputPath = "tether_sim_" + s.id
	}
	s.dataRecorder = datarecording.NewDataRecorder(outputPath)

	s.engine = sim.NewSerialEngine()
	if b.parallelEngine {
		s.engine = sim.NewParallelEngine()
	}

	s.driver = driver.MakeBuilder().
		WithEngine(s.engine).
		WithPollFreq(b.pollFreq).
		Build("Driver")

	s.commitLogger = driver.NewCommitLogger(s.dataRecorder)
	s.driver.AcceptHook(s.commitLogger)

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor = s.monitor.WithPortNumber(b.monitorPort)
		}
		if b.launchBrowser {
			s.monitor = s.monitor.WithBrowserLaunch()
		}
		s.monitor.RegisterEngine(s.engine)
		s.monitor.RegisterDriver(s.driver)
		s.monitor.StartServer()
	}

	return s
}
