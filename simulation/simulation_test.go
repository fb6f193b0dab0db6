package simulation_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/forcelab/stepsim/datarecording"
	"github.com/forcelab/stepsim/integrate"
	"github.com/forcelab/stepsim/sim"
	"github.com/forcelab/stepsim/simulation"
	"github.com/forcelab/stepsim/trigger"
	"github.com/forcelab/stepsim/update"
	"github.com/forcelab/stepsim/write"
)

func testSnapshot() sim.Snapshot {
	return sim.Snapshot{
		Box: sim.Box{Lx: 10, Ly: 10, Lz: 10},
		Position: []sim.Vec3{
			{0, 0, 0},
			{1, 0, 0},
		},
		Velocity: []sim.Vec3{
			{0.001, 0, 0},
			{0, 0.002, 0},
		},
		Mass:   []float64{1, 1},
		TypeID: []int{0, 0},
	}
}

var _ = Describe("Simulation", func() {
	var (
		outputPath string
		s          *simulation.Simulation
	)

	BeforeEach(func() {
		outputPath = filepath.Join(GinkgoT().TempDir(), "output")

		s = simulation.MakeBuilder().
			WithoutMonitoring().
			WithOutputFileName(outputPath).
			Build()
	})

	AfterEach(func() {
		s.Terminate()
	})

	It("should have an ID and a data recorder", func() {
		Expect(s.ID()).NotTo(BeEmpty())
		Expect(s.DataRecorder()).NotTo(BeNil())
		Expect(s.Monitor()).To(BeNil())
	})

	It("should not run before the state is created", func() {
		err := s.Run(10, false)

		Expect(err).To(MatchError(sim.NotInitializedError{}))
	})

	It("should create the state only once", func() {
		Expect(s.CreateStateFromSnapshot(testSnapshot())).To(Succeed())

		err := s.CreateStateFromSnapshot(testSnapshot())

		Expect(err).To(MatchError(sim.AlreadyInitializedError{}))
	})

	It("should let the timestep override take precedence", func() {
		Expect(s.SetTimestep(5000)).To(Succeed())

		snap := testSnapshot()
		snap.Timestep = 100
		Expect(s.CreateStateFromSnapshot(snap)).To(Succeed())

		Expect(s.Timestep()).To(Equal(uint64(5000)))
	})

	It("should refuse a timestep override after initialization", func() {
		Expect(s.CreateStateFromSnapshot(testSnapshot())).To(Succeed())

		err := s.SetTimestep(5000)

		Expect(err).To(MatchError(sim.AlreadyInitializedError{}))
	})

	It("should run operations and advance the timestep", func() {
		integrator, err := integrate.NewConstantVelocity("integrator", 0.005)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Operations().SetIntegrator(integrator)).To(Succeed())

		Expect(s.Operations().AddUpdater(update.NewZeroMomentum(
			"zero_momentum", trigger.MustPeriodic(100, 0)))).To(Succeed())

		Expect(s.Operations().AddWriter(write.NewTable(
			"table", trigger.MustPeriodic(100, 0),
			s.DataRecorder(), "quantities"))).To(Succeed())

		Expect(s.CreateStateFromSnapshot(testSnapshot())).To(Succeed())

		Expect(s.Run(250, false)).To(Succeed())

		Expect(s.Timestep()).To(Equal(uint64(250)))
		Expect(s.FinalTimestep()).To(Equal(uint64(250)))
		Expect(s.Walltime()).To(BeNumerically(">", 0))
		Expect(s.TPS()).To(BeNumerically(">", 0))
	})

	It("should record table rows at the writer period", func() {
		integrator, err := integrate.NewConstantVelocity("integrator", 0.005)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Operations().SetIntegrator(integrator)).To(Succeed())

		Expect(s.Operations().AddWriter(write.NewTable(
			"table", trigger.MustPeriodic(100, 0),
			s.DataRecorder(), "quantities"))).To(Succeed())

		Expect(s.CreateStateFromSnapshot(testSnapshot())).To(Succeed())
		Expect(s.Run(250, false)).To(Succeed())

		s.Terminate()

		reader := datarecording.NewReader(outputPath + ".sqlite3")
		defer reader.Close()

		reader.MapTable("quantities", struct {
			Timestep uint64
		}{})

		results, total, err := reader.Query(
			context.Background(), "quantities",
			datarecording.QueryParams{OrderBy: "Timestep ASC"})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(2))
		Expect(results).To(HaveLen(2))
	})

	It("should round-trip the state through a snapshot file", func() {
		integrator, err := integrate.NewConstantVelocity("integrator", 0.005)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Operations().SetIntegrator(integrator)).To(Succeed())

		Expect(s.CreateStateFromSnapshot(testSnapshot())).To(Succeed())
		Expect(s.Run(100, false)).To(Succeed())

		snapshotFile := filepath.Join(GinkgoT().TempDir(), "state.json")
		Expect(s.WriteSnapshot(snapshotFile)).To(Succeed())

		restoredPath := filepath.Join(GinkgoT().TempDir(), "restored")
		restored := simulation.MakeBuilder().
			WithoutMonitoring().
			WithOutputFileName(restoredPath).
			Build()
		defer restored.Terminate()

		Expect(restored.CreateStateFromFile(snapshotFile)).To(Succeed())

		Expect(restored.Timestep()).To(Equal(uint64(100)))
		Expect(restored.State().Position()).
			To(Equal(s.State().Position()))
	})

	It("should detach operations on terminate", func() {
		integrator, err := integrate.NewConstantVelocity("integrator", 0.005)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Operations().SetIntegrator(integrator)).To(Succeed())

		Expect(s.CreateStateFromSnapshot(testSnapshot())).To(Succeed())
		Expect(s.Run(10, false)).To(Succeed())
		Expect(s.Operations().IsScheduled()).To(BeTrue())

		s.Terminate()

		Expect(s.Operations().IsScheduled()).To(BeFalse())
		Expect(integrator.IsAttached()).To(BeFalse())
	})
})

var _ = Describe("Builder", func() {
	It("should refuse a monitor port without monitoring", func() {
		Expect(func() {
			simulation.MakeBuilder().
				WithoutMonitoring().
				WithMonitorPort(8080).
				Build()
		}).To(Panic())
	})
})
