package main

import (
	"log"
	"math"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/forcelab/stepsim/datarecording"
	"github.com/forcelab/stepsim/integrate"
	"github.com/forcelab/stepsim/sim"
	"github.com/forcelab/stepsim/simulation"
	"github.com/forcelab/stepsim/trigger"
	"github.com/forcelab/stepsim/tune"
	"github.com/forcelab/stepsim/update"
	"github.com/forcelab/stepsim/write"
)

var runFlags struct {
	steps        uint64
	particles    int
	boxL         float64
	dt           float64
	seed         int64
	snapshot     string
	output       string
	clickhouse   string
	clickhouseDB string
	tablePeriod  uint64
	trajectory   string
	trajPeriod   uint64
	sortPeriod   uint64
	writeAtStart bool
	logOps       bool
	monitor      bool
	monitorPort  int
	dashboard    bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Advance a demo particle system a number of timesteps.",
	RunE:  runSimulation,
}

func init() {
	f := runCmd.Flags()
	f.Uint64Var(&runFlags.steps, "steps", 1000, "number of timesteps to run")
	f.IntVar(&runFlags.particles, "particles", 1000,
		"number of particles in the generated system")
	f.Float64Var(&runFlags.boxL, "box", 10.0, "edge length of the cubic box")
	f.Float64Var(&runFlags.dt, "dt", 0.005, "timestep length")
	f.Int64Var(&runFlags.seed, "seed", 1,
		"seed for the generated initial velocities")
	f.StringVar(&runFlags.snapshot, "snapshot", "",
		"snapshot file to initialize from instead of a generated system")
	f.StringVar(&runFlags.output, "output",
		envOr("STEPSIM_OUTPUT", ""), "output file name for recorded data")
	f.StringVar(&runFlags.clickhouse, "clickhouse",
		envOr("STEPSIM_CLICKHOUSE", ""),
		"record data into a ClickHouse server at this address "+
			"instead of a SQLite file")
	f.StringVar(&runFlags.clickhouseDB, "clickhouse-db",
		envOr("STEPSIM_CLICKHOUSE_DB", "default"),
		"ClickHouse database to record into")
	f.Uint64Var(&runFlags.tablePeriod, "table-period", 100,
		"period of the quantity table writer")
	f.StringVar(&runFlags.trajectory, "trajectory", "",
		"trajectory file to append frames to")
	f.Uint64Var(&runFlags.trajPeriod, "trajectory-period", 100,
		"period of the trajectory writer")
	f.Uint64Var(&runFlags.sortPeriod, "sort-period", 200,
		"period of the particle sorter tuner")
	f.BoolVar(&runFlags.writeAtStart, "write-at-start", false,
		"invoke writers for the initial timestep before stepping")
	f.BoolVar(&runFlags.logOps, "log-ops", false,
		"print every triggered operation invocation")
	f.BoolVar(&runFlags.monitor, "monitor", false,
		"serve run status over HTTP")
	f.IntVar(&runFlags.monitorPort, "monitor-port", 0,
		"port for the monitoring server")
	f.BoolVar(&runFlags.dashboard, "dashboard", false,
		"open the monitor dashboard in a browser")

	rootCmd.AddCommand(runCmd)
}

func runSimulation(_ *cobra.Command, _ []string) error {
	builder := simulation.MakeBuilder()

	if runFlags.clickhouse != "" {
		recorder, err := datarecording.NewClickHouse(
			datarecording.ClickHouseOptions{
				Addr:     runFlags.clickhouse,
				Database: runFlags.clickhouseDB,
				Username: envOr("STEPSIM_CLICKHOUSE_USER", "default"),
				Password: envOr("STEPSIM_CLICKHOUSE_PASSWORD", ""),
			})
		if err != nil {
			return err
		}

		builder = builder.WithDataRecorder(recorder)
	} else {
		builder = builder.WithOutputFileName(runFlags.output)
	}

	if runFlags.monitor {
		if runFlags.monitorPort > 0 {
			builder = builder.WithMonitorPort(runFlags.monitorPort)
		}
	} else {
		builder = builder.WithoutMonitoring()
	}

	s := builder.Build()
	defer s.Terminate()

	if runFlags.dashboard && s.Monitor() != nil {
		s.Monitor().OpenDashboard()
	}

	if err := registerOperations(s); err != nil {
		return err
	}

	if err := createState(s); err != nil {
		return err
	}

	if runFlags.logOps {
		s.Scheduler().AcceptHook(
			sim.NewOpLogger(log.New(os.Stderr, "", 0)))
	}

	if err := s.Run(runFlags.steps, runFlags.writeAtStart); err != nil {
		return err
	}

	log.Printf("completed %d steps to timestep %d, %.0f steps/s",
		runFlags.steps, s.Timestep(), s.TPS())

	return nil
}

func registerOperations(s *simulation.Simulation) error {
	ops := s.Operations()

	integrator, err := integrate.NewConstantVelocity("integrator", runFlags.dt)
	if err != nil {
		return err
	}
	if err := ops.SetIntegrator(integrator); err != nil {
		return err
	}

	sortTrigger, err := trigger.NewPeriodic(runFlags.sortPeriod, 0)
	if err != nil {
		return err
	}
	sorter, err := tune.NewSorter("sorter", sortTrigger, 8)
	if err != nil {
		return err
	}
	if err := ops.AddTuner(sorter); err != nil {
		return err
	}

	momentumTrigger, err := trigger.NewPeriodic(runFlags.tablePeriod, 0)
	if err != nil {
		return err
	}
	if err := ops.AddUpdater(update.NewZeroMomentum(
		"zero-momentum", momentumTrigger)); err != nil {
		return err
	}

	tableTrigger, err := trigger.NewPeriodic(runFlags.tablePeriod, 0)
	if err != nil {
		return err
	}
	if err := ops.AddWriter(write.NewTable(
		"table", tableTrigger, s.DataRecorder(), "quantities")); err != nil {
		return err
	}

	if runFlags.trajectory != "" {
		traj, err := write.NewTrajectory("trajectory",
			runFlags.trajectory, runFlags.trajPeriod, 0)
		if err != nil {
			return err
		}
		if err := ops.AddWriter(traj); err != nil {
			return err
		}
	}

	return nil
}

func createState(s *simulation.Simulation) error {
	if runFlags.snapshot != "" {
		return s.CreateStateFromFile(runFlags.snapshot)
	}

	return s.CreateStateFromSnapshot(
		randomSnapshot(runFlags.particles, runFlags.boxL, runFlags.seed))
}

// randomSnapshot places particles on a cubic lattice with seeded random
// velocities, so that runs with the same seed are reproducible.
func randomSnapshot(n int, boxL float64, seed int64) sim.Snapshot {
	rng := rand.New(rand.NewSource(seed))

	perEdge := int(math.Ceil(math.Cbrt(float64(n))))
	spacing := boxL / float64(perEdge)

	snap := sim.Snapshot{
		Box:      sim.Box{Lx: boxL, Ly: boxL, Lz: boxL},
		Position: make([]sim.Vec3, n),
		Velocity: make([]sim.Vec3, n),
		Mass:     make([]float64, n),
		TypeID:   make([]int, n),
	}

	for i := 0; i < n; i++ {
		x := i % perEdge
		y := (i / perEdge) % perEdge
		z := i / (perEdge * perEdge)

		snap.Position[i] = sim.Vec3{
			(float64(x)+0.5)*spacing - boxL/2,
			(float64(y)+0.5)*spacing - boxL/2,
			(float64(z)+0.5)*spacing - boxL/2,
		}
		snap.Velocity[i] = sim.Vec3{
			rng.NormFloat64(),
			rng.NormFloat64(),
			rng.NormFloat64(),
		}
		snap.Mass[i] = 1.0
	}

	return snap
}
