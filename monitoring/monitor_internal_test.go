package monitoring

import (
	"encoding/json"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/forcelab/stepsim/sim"
)

type fakeStatus struct {
	timestep      uint64
	tps           float64
	walltime      time.Duration
	finalTimestep uint64
}

func (s fakeStatus) CurrentTimestep() uint64 {
	return s.timestep
}

func (s fakeStatus) TPS() float64 {
	return s.tps
}

func (s fakeStatus) Walltime() time.Duration {
	return s.walltime
}

func (s fakeStatus) FinalTimestep() uint64 {
	return s.finalTimestep
}

type fakeUpdater struct {
	sim.TriggeredOperationBase
}

func newFakeUpdater(name string) *fakeUpdater {
	return &fakeUpdater{
		TriggeredOperationBase: sim.NewTriggeredOperationBase(
			name, sim.TriggerFunc(func(uint64) bool { return true })),
	}
}

func (u *fakeUpdater) Update(_ uint64) error {
	return nil
}

var _ = Describe("Monitor", func() {
	var m *Monitor

	BeforeEach(func() {
		m = NewMonitor()
	})

	It("should report the status of its provider", func() {
		m.RegisterStatusProvider(fakeStatus{
			timestep:      75,
			tps:           1000,
			walltime:      2 * time.Second,
			finalTimestep: 100,
		})

		rec := httptest.NewRecorder()
		m.reportStatus(rec, nil)

		var rsp statusRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Timestep).To(Equal(uint64(75)))
		Expect(rsp.TPS).To(Equal(1000.0))
		Expect(rsp.WalltimeSeconds).To(Equal(2.0))
		Expect(rsp.FinalTimestep).To(Equal(uint64(100)))
	})

	It("should list registered operations", func() {
		ops := sim.NewOperations()
		Expect(ops.AddUpdater(newFakeUpdater("u1"))).To(Succeed())
		Expect(ops.AddUpdater(newFakeUpdater("u2"))).To(Succeed())
		m.operations = ops

		rec := httptest.NewRecorder()
		m.listOperations(rec, nil)

		var rsp []operationRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp).To(HaveLen(2))
		Expect(rsp[0].Name).To(Equal("u1"))
		Expect(rsp[0].Category).To(Equal(sim.CategoryUpdater.String()))
	})

	It("should track run progress through hooks", func() {
		h := &progressHook{monitor: m}

		h.Func(sim.HookCtx{
			Pos:  sim.HookPosRunStart,
			Item: sim.RunSpan{Start: 0, End: 100},
		})

		Expect(m.progressBars).To(HaveLen(1))
		Expect(m.progressBars[0].Total).To(Equal(uint64(100)))

		h.Func(sim.HookCtx{Pos: sim.HookPosStepEnd})
		h.Func(sim.HookCtx{Pos: sim.HookPosStepEnd})

		Expect(m.progressBars[0].Finished).To(Equal(uint64(2)))

		h.Func(sim.HookCtx{Pos: sim.HookPosRunEnd})

		Expect(m.progressBars).To(BeEmpty())
	})
})
