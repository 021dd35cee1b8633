package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tethersim/tether/examples/sensorfeed"
	"github.com/tethersim/tether/monitoring"
	"github.com/tethersim/tether/sim"
	"github.com/tethersim/tether/simulation"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the sensor feed demo simulation",
	Long: `Run builds the sensor feed demo and runs it for a configurable ` +
		`stretch of virtual time. A background goroutine publishes synthetic ` +
		`readings at a wall clock rate while the simulation runs, so the ` +
		`readings arrive at unpredictable points of the virtual timeline.`,
	Run: func(cmd *cobra.Command, _ []string) {
		runFeed(cmd)
	},
}

func init() {
	runCmd.Flags().Float64("until", 10,
		"virtual time to run until, in seconds")
	runCmd.Flags().Float64("poll-hz", 1000,
		"virtual frequency at which the driver polls the systems")
	runCmd.Flags().Float64("publish-period", 0.25,
		"virtual time between two display publishes, in seconds")
	runCmd.Flags().Float64("feed-hz", 200,
		"wall clock frequency at which synthetic readings are published")
	runCmd.Flags().Int("monitor-port", 0,
		"port for the monitoring server, 0 picks a random port")
	runCmd.Flags().Bool("no-monitor", false,
		"disable the monitoring server")
	runCmd.Flags().Bool("open", false,
		"open the monitoring dashboard in the browser")
	runCmd.Flags().Bool("trace-events", false,
		"print a line for every event the engine dispatches")

	rootCmd.AddCommand(runCmd)
}

func runFeed(cmd *cobra.Command) {
	until := sim.VTimeInSec(
		float64Setting(cmd, "until", "TETHER_RUN_UNTIL"))
	pollHz := float64Setting(cmd, "poll-hz", "TETHER_POLL_HZ")
	monitorPort := intSetting(cmd, "monitor-port", "TETHER_MONITOR_PORT")
	period := mustFloat64Flag(cmd, "publish-period")
	feedHz := mustFloat64Flag(cmd, "feed-hz")
	noMonitor, _ := cmd.Flags().GetBool("no-monitor")
	open, _ := cmd.Flags().GetBool("open")
	traceEvents, _ := cmd.Flags().GetBool("trace-events")

	builder := simulation.MakeBuilder().
		WithPollFreq(sim.Freq(pollHz) * sim.Hz)
	if noMonitor {
		builder = builder.WithoutMonitoring()
	}
	if monitorPort > 0 {
		builder = builder.WithMonitorPort(monitorPort)
	}
	if open {
		builder = builder.WithBrowserLaunch()
	}

	s := builder.Build()

	if traceEvents {
		s.GetEngine().AcceptHook(
			sim.NewEventLogger(log.New(os.Stderr, "", 0)))
	}

	var bar *monitoring.ProgressBar

	feed := sensorfeed.MakeBuilder().
		WithDriver(s.GetDriver()).
		WithPublishPeriod(sim.VTimeInSec(period)).
		WithDisplayFunc(func(r sensorfeed.Reading) {
			fmt.Printf("display <- %.2f C\n", r.Celsius)
			if bar != nil {
				bar.IncrementFinished(1)
			}
		}).
		Build("Feed")

	if m := s.GetMonitor(); m != nil {
		total := uint64(float64(until)/period) + 1
		bar = m.CreateProgressBar("DisplayPublishes", total)
	}

	stop := make(chan struct{})
	go produceReadings(feed, feedHz, stop)

	err := s.Run(until)
	if err != nil {
		log.Panic(err)
	}

	close(stop)
	feed.Drain()
	feed.Close()

	if bar != nil {
		s.GetMonitor().CompleteProgressBar(bar)
	}

	fmt.Printf("feed applied %d of %d readings, display published %d times\n",
		feed.Sensor.MessageCount(),
		feed.Sensor.ArrivalCount(),
		feed.Display.PublishCount())

	s.Terminate()
}

// produceReadings publishes a synthetic temperature curve at the given wall
// clock frequency until stop is closed.
func produceReadings(
	feed *sensorfeed.Feed,
	hz float64,
	stop <-chan struct{},
) {
	if hz <= 0 {
		return
	}

	ticker := time.NewTicker(time.Duration(float64(time.Second) / hz))
	defer ticker.Stop()

	seq := 0
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			seq++
			feed.Publish(sensorfeed.Reading{
				Station: "North",
				Celsius: 20 + 5*math.Sin(float64(seq)/20),
			})
		}
	}
}

// float64Setting reads a flag, letting an environment variable provide the
// value when the flag is not set on the command line.
func float64Setting(cmd *cobra.Command, flag, env string) float64 {
	if !cmd.Flags().Changed(flag) {
		if v, ok := os.LookupEnv(env); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				log.Panicf("cannot parse %s=%q as a number", env, v)
			}

			return f
		}
	}

	return mustFloat64Flag(cmd, flag)
}

// intSetting reads an integer flag, letting an environment variable provide
// the value when the flag is not set on the command line.
func intSetting(cmd *cobra.Command, flag, env string) int {
	if !cmd.Flags().Changed(flag) {
		if v, ok := os.LookupEnv(env); ok {
			i, err := strconv.Atoi(v)
			if err != nil {
				log.Panicf("cannot parse %s=%q as an integer", env, v)
			}

			return i
		}
	}

	i, err := cmd.Flags().GetInt(flag)
	if err != nil {
		log.Panic(err)
	}

	return i
}

func mustFloat64Flag(cmd *cobra.Command, flag string) float64 {
	f, err := cmd.Flags().GetFloat64(flag)
	if err != nil {
		log.Panic(err)
	}

	return f
}
