package simulation

import (
	"context"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/tethersim/tether/datarecording"
	"github.com/tethersim/tether/driver"
	"github.com/tethersim/tether/sim"
)

var _ = Describe("Simulation", func() {
	var (
		mockCtrl   *gomock.Controller
		simulation *Simulation
		sys        *MockSystem
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		simulation = MakeBuilder().WithoutMonitoring().Build()

		sys = NewMockSystem(mockCtrl)
		sys.EXPECT().Name().Return("Sensor").AnyTimes()
	})

	AfterEach(func() {
		mockCtrl.Finish()

		simulation.Terminate()

		os.Remove("tether_sim_" + simulation.ID() + ".sqlite3")
	})

	It("should register a system", func() {
		simulation.RegisterSystem(sys)

		Expect(simulation.GetSystemByName("Sensor")).To(Equal(sys))
		Expect(simulation.Systems()).To(HaveLen(1))
	})

	It("should run registered systems to the horizon", func() {
		sys.EXPECT().InitState()
		sys.EXPECT().Secondary().Return(false).AnyTimes()

		pending := true
		sys.EXPECT().
			NextEventTime(gomock.Any()).
			DoAndReturn(func(now sim.VTimeInSec) (sim.VTimeInSec, bool) {
				if pending {
					return now + 0.0001, true
				}
				return 0, false
			}).
			AnyTimes()

		compute := sys.EXPECT().ComputeUpdate(gomock.Any())
		sys.EXPECT().
			CommitUpdate(gomock.Any()).
			Do(func(t sim.VTimeInSec) { pending = false }).
			After(compute)

		simulation.RegisterSystem(sys)

		Expect(simulation.Run(0.01)).To(Succeed())
		Expect(simulation.GetEngine().CurrentTime()).
			To(BeNumerically(">", 0))
	})

	It("should record system commits", func() {
		sys.EXPECT().InitState()
		sys.EXPECT().Secondary().Return(false).AnyTimes()

		pending := true
		sys.EXPECT().
			NextEventTime(gomock.Any()).
			DoAndReturn(func(now sim.VTimeInSec) (sim.VTimeInSec, bool) {
				if pending {
					return now + 0.0001, true
				}
				return 0, false
			}).
			AnyTimes()
		sys.EXPECT().ComputeUpdate(gomock.Any())
		sys.EXPECT().
			CommitUpdate(gomock.Any()).
			Do(func(t sim.VTimeInSec) { pending = false })

		simulation.RegisterSystem(sys)

		Expect(simulation.Run(0.01)).To(Succeed())

		simulation.Terminate()

		reader := datarecording.NewReader(
			"tether_sim_" + simulation.ID() + ".sqlite3")
		defer reader.Close()

		reader.MapTable("system_commits", driver.SystemCommitEntry{})

		results, _, err := reader.Query(
			context.Background(), "system_commits",
			datarecording.QueryParams{})
		Expect(err).To(BeNil())
		Expect(results).To(HaveLen(1))

		entry := results[0].(*driver.SystemCommitEntry)
		Expect(entry.System).To(Equal("Sensor"))
		Expect(entry.Time).To(BeNumerically("~", 0.0001, 1e-9))
	})

	Context("Builder with custom output file", func() {
		var customSim *Simulation

		AfterEach(func() {
			if customSim != nil {
				customSim.Terminate()
				os.Remove("test_custom_output.sqlite3")
				customSim = nil
			}
		})

		It("should allow custom output file to be set", func() {
			builder := MakeBuilder().
				WithoutMonitoring().
				WithOutputFileName("test_custom_output")
			customSim = builder.Build()

			Expect(customSim).ToNot(BeNil())
			Expect(customSim.GetDataRecorder()).ToNot(BeNil())
		})
	})

	It("should reject a monitor port without monitoring", func() {
		Expect(func() {
			MakeBuilder().WithoutMonitoring().WithMonitorPort(8080).Build()
		}).To(Panic())
	})
})
