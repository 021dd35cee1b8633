package driver

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/tethersim/tether/sim"
)

// hookRecorder keeps every hook invocation for later inspection.
type hookRecorder struct {
	entries []sim.HookCtx
}

func (r *hookRecorder) Func(ctx sim.HookCtx) {
	r.entries = append(r.entries, ctx)
}

func (r *hookRecorder) entriesAt(pos *sim.HookPos) []sim.HookCtx {
	filtered := []sim.HookCtx{}
	for _, entry := range r.entries {
		if entry.Pos == pos {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

var _ = Describe("Driver", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *sim.SerialEngine
		drv      *Driver
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = sim.NewSerialEngine()
		drv = MakeBuilder().WithEngine(engine).Build("Driver")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	newSystem := func(name string, secondary bool) *MockSystem {
		sys := NewMockSystem(mockCtrl)
		sys.EXPECT().Name().Return(name).AnyTimes()
		sys.EXPECT().Secondary().Return(secondary).AnyTimes()
		return sys
	}

	It("should initialize a system exactly once across runs", func() {
		sys := newSystem("Sensor", false)
		sys.EXPECT().InitState().Times(1)
		sys.EXPECT().
			NextEventTime(gomock.Any()).
			Return(sim.VTimeInSec(0), false).
			AnyTimes()

		drv.Register(sys)

		Expect(drv.Run(0.002)).To(Succeed())
		Expect(drv.Run(0.004)).To(Succeed())
	})

	It("should run compute before commit at the announced time", func() {
		sys := newSystem("Sensor", false)
		sys.EXPECT().InitState()

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

		var computeTime, commitTime sim.VTimeInSec
		compute := sys.EXPECT().
			ComputeUpdate(gomock.Any()).
			Do(func(t sim.VTimeInSec) { computeTime = t })
		sys.EXPECT().
			CommitUpdate(gomock.Any()).
			Do(func(t sim.VTimeInSec) {
				commitTime = t
				pending = false
			}).
			After(compute)

		drv.Register(sys)

		Expect(drv.Run(0.01)).To(Succeed())
		Expect(computeTime).To(BeNumerically("~", 0.0001, 1e-12))
		Expect(commitTime).To(BeNumerically("~", 0.0001, 1e-12))
	})

	It("should keep at most one outstanding update per system", func() {
		sys := newSystem("Sensor", false)
		sys.EXPECT().InitState()

		pending := true
		sys.EXPECT().
			NextEventTime(gomock.Any()).
			DoAndReturn(func(now sim.VTimeInSec) (sim.VTimeInSec, bool) {
				if pending {
					return now + 0.0055, true
				}
				return 0, false
			}).
			AnyTimes()

		// Polls at 0.001 through 0.005 must not schedule extra updates
		// while the one at 0.0055 is outstanding.
		compute := sys.EXPECT().ComputeUpdate(gomock.Any()).Times(1)
		sys.EXPECT().
			CommitUpdate(gomock.Any()).
			Do(func(t sim.VTimeInSec) {
				Expect(t).To(BeNumerically("~", 0.0055, 1e-12))
				pending = false
			}).
			After(compute).
			Times(1)

		drv.Register(sys)

		Expect(drv.Run(0.01)).To(Succeed())
	})

	It("should not schedule updates past the horizon", func() {
		sys := newSystem("Sensor", false)
		sys.EXPECT().InitState()
		sys.EXPECT().
			NextEventTime(gomock.Any()).
			DoAndReturn(func(now sim.VTimeInSec) (sim.VTimeInSec, bool) {
				return now + 10, true
			}).
			AnyTimes()

		drv.Register(sys)

		Expect(drv.Run(0.002)).To(Succeed())
	})

	It("should sustain a periodic cadence between polls", func() {
		drv = MakeBuilder().
			WithEngine(engine).
			WithPollFreq(1 * sim.Hz).
			Build("Driver")

		sys := newSystem("Echo", true)
		sys.EXPECT().InitState()

		published := 0
		sys.EXPECT().
			NextEventTime(gomock.Any()).
			DoAndReturn(func(now sim.VTimeInSec) (sim.VTimeInSec, bool) {
				return sim.VTimeInSec(float64(published)) * 0.25, true
			}).
			AnyTimes()

		commits := []sim.VTimeInSec{}
		sys.EXPECT().ComputeUpdate(gomock.Any()).AnyTimes()
		sys.EXPECT().
			CommitUpdate(gomock.Any()).
			Do(func(t sim.VTimeInSec) {
				published++
				commits = append(commits, t)
			}).
			AnyTimes()

		drv.Register(sys)

		Expect(drv.Run(1.0)).To(Succeed())
		Expect(commits).To(HaveLen(5))
		Expect(commits[0]).To(BeNumerically("~", 0.0, 1e-12))
		Expect(commits[1]).To(BeNumerically("~", 0.25, 1e-12))
		Expect(commits[2]).To(BeNumerically("~", 0.5, 1e-12))
		Expect(commits[3]).To(BeNumerically("~", 0.75, 1e-12))
		Expect(commits[4]).To(BeNumerically("~", 1.0, 1e-12))
	})

	It("should run a secondary update after the same-time primary update", func() {
		sysA := newSystem("Sensor", false)
		sysB := newSystem("Echo", true)
		sysA.EXPECT().InitState()
		sysB.EXPECT().InitState()

		pendingA := true
		sysA.EXPECT().
			NextEventTime(gomock.Any()).
			DoAndReturn(func(now sim.VTimeInSec) (sim.VTimeInSec, bool) {
				if pendingA {
					return 0.25, true
				}
				return 0, false
			}).
			AnyTimes()

		pendingB := true
		sysB.EXPECT().
			NextEventTime(gomock.Any()).
			DoAndReturn(func(now sim.VTimeInSec) (sim.VTimeInSec, bool) {
				if pendingB {
					return 0.25, true
				}
				return 0, false
			}).
			AnyTimes()

		computeA := sysA.EXPECT().ComputeUpdate(gomock.Any())
		commitA := sysA.EXPECT().
			CommitUpdate(gomock.Any()).
			Do(func(t sim.VTimeInSec) { pendingA = false }).
			After(computeA)
		computeB := sysB.EXPECT().ComputeUpdate(gomock.Any()).After(commitA)
		sysB.EXPECT().
			CommitUpdate(gomock.Any()).
			Do(func(t sim.VTimeInSec) { pendingB = false }).
			After(computeB)

		drv.Register(sysA)
		drv.Register(sysB)

		Expect(drv.Run(0.5)).To(Succeed())
	})

	It("should fire the poll and commit hooks", func() {
		recorder := &hookRecorder{}
		drv.AcceptHook(recorder)

		sys := newSystem("Sensor", false)
		sys.EXPECT().InitState()

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

		drv.Register(sys)

		Expect(drv.Run(0.002)).To(Succeed())

		commits := recorder.entriesAt(HookPosSystemCommit)
		Expect(commits).To(HaveLen(1))
		Expect(commits[0].Item).To(BeIdenticalTo(sys))
		Expect(commits[0].Detail).To(BeNumerically("~", 0.0001, 1e-12))

		polls := recorder.entriesAt(HookPosPoll)
		Expect(len(polls)).To(BeNumerically(">=", 1))
	})

	It("should panic when two systems share a name", func() {
		sysA := newSystem("Sensor", false)
		sysB := newSystem("Sensor", false)

		drv.Register(sysA)

		Expect(func() { drv.Register(sysB) }).To(Panic())
	})

	It("should panic when the horizon is not ahead of the clock", func() {
		Expect(func() { drv.Run(0) }).To(Panic())
	})

	It("should look up systems by name", func() {
		sys := newSystem("Sensor", false)
		drv.Register(sys)

		Expect(drv.SystemByName("Sensor")).To(BeIdenticalTo(sys))
		Expect(drv.SystemByName("Missing")).To(BeNil())
		Expect(drv.Systems()).To(HaveLen(1))
	})
})
