// Package simulation assembles a scheduler, an operation collection, a
// data recorder, and an optional monitor into one simulation.
package simulation

import (
	"time"

	"github.com/forcelab/stepsim/datarecording"
	"github.com/forcelab/stepsim/monitoring"
	"github.com/forcelab/stepsim/sim"
)

// A Simulation provides the services required to define and run a
// simulation: the operation collection, the state lifecycle, and the run
// loop, plus the data recorder and monitor that support them.
type Simulation struct {
	id string

	operations *sim.Operations
	scheduler  *sim.Scheduler

	timestep    uint64
	timestepSet bool

	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
}

// ID returns the ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Operations returns the operation collection of the simulation.
func (s *Simulation) Operations() *sim.Operations {
	return s.operations
}

// DataRecorder returns the data recorder used in the simulation.
func (s *Simulation) DataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// Monitor returns the monitor used in the simulation, or nil when
// monitoring is disabled.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// Scheduler returns the scheduler of the simulation, or nil before
// initialization. The scheduler accepts hooks for run observation.
func (s *Simulation) Scheduler() *sim.Scheduler {
	return s.scheduler
}

// State returns the simulation state, or nil before initialization.
func (s *Simulation) State() *sim.State {
	if s.scheduler == nil {
		return nil
	}

	return s.scheduler.State()
}

// SetTimestep overrides the initial timestep before the state is created.
// The override takes precedence over the timestep stored in a snapshot
// file. Setting the timestep after the state exists fails.
func (s *Simulation) SetTimestep(timestep uint64) error {
	if s.scheduler != nil {
		return sim.AlreadyInitializedError{}
	}

	s.timestep = timestep
	s.timestepSet = true

	return nil
}

// Timestep returns the current timestep of the simulation, or the pending
// override before the state is created.
func (s *Simulation) Timestep() uint64 {
	if s.scheduler == nil {
		return s.timestep
	}

	return s.scheduler.CurrentTimestep()
}

// CreateStateFromSnapshot creates the simulation state from a snapshot.
// Exactly one state creation is permitted per simulation.
func (s *Simulation) CreateStateFromSnapshot(snap sim.Snapshot) error {
	if s.scheduler != nil {
		return sim.AlreadyInitializedError{}
	}

	if s.timestepSet {
		snap.Timestep = s.timestep
	}

	state, err := sim.NewState(snap)
	if err != nil {
		return err
	}

	s.bindState(state)

	return nil
}

// CreateStateFromFile creates the simulation state from a snapshot file.
// The timestep stored in the file becomes the initial timestep unless
// SetTimestep was called before.
func (s *Simulation) CreateStateFromFile(filename string) error {
	if s.scheduler != nil {
		return sim.AlreadyInitializedError{}
	}

	snap, err := sim.ReadSnapshotFile(filename)
	if err != nil {
		return err
	}

	return s.CreateStateFromSnapshot(snap)
}

func (s *Simulation) bindState(state *sim.State) {
	s.scheduler = sim.NewScheduler(state, s.operations)

	if s.monitor != nil {
		s.monitor.RegisterScheduler(s.scheduler)
	}
}

// Run advances the simulation the given number of steps. See
// sim.Scheduler.Run for the loop contract.
func (s *Simulation) Run(steps uint64, writeAtStart bool) error {
	if s.scheduler == nil {
		return sim.NotInitializedError{}
	}

	return s.scheduler.Run(steps, writeAtStart)
}

// TPS returns the steps per second executed by the last Run call.
func (s *Simulation) TPS() float64 {
	if s.scheduler == nil {
		return 0
	}

	return s.scheduler.TPS()
}

// Walltime returns the wall time spent in the last Run call.
func (s *Simulation) Walltime() time.Duration {
	if s.scheduler == nil {
		return 0
	}

	return s.scheduler.Walltime()
}

// FinalTimestep returns the timestep at which the current or most recent
// Run call completes.
func (s *Simulation) FinalTimestep() uint64 {
	if s.scheduler == nil {
		return s.timestep
	}

	return s.scheduler.FinalTimestep()
}

// CurrentTimestep implements monitoring.StatusProvider.
func (s *Simulation) CurrentTimestep() uint64 {
	return s.Timestep()
}

// WriteSnapshot saves the current state to a snapshot file.
func (s *Simulation) WriteSnapshot(filename string) error {
	if s.scheduler == nil {
		return sim.NotInitializedError{}
	}

	return sim.WriteSnapshotFile(filename, s.scheduler.State().TakeSnapshot())
}

// Terminate detaches all operations and closes the data recorder.
func (s *Simulation) Terminate() {
	if s.operations.IsScheduled() {
		s.operations.Unschedule()
	}

	s.dataRecorder.Close()
}
