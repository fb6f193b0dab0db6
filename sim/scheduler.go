package sim

import (
	"time"
)

// A Scheduler drives the timestep loop of one simulation. It owns the
// state for mutation purposes, consults the operation collection for the
// ordered operation lists, and invokes each triggered operation in the
// fixed category order tuners, updaters, integrator, writers.
//
// The scheduler is single-threaded: each act call is a synchronous,
// blocking unit of work, and a step is atomic from the scheduler's point
// of view.
type Scheduler struct {
	HookableBase

	state      *State
	operations *Operations

	walltime      time.Duration
	lastTPS       float64
	finalTimestep uint64
}

// NewScheduler creates a scheduler that advances the given state using the
// given operation collection.
func NewScheduler(state *State, operations *Operations) *Scheduler {
	if state == nil {
		panic("scheduler requires a state")
	}

	if operations == nil {
		operations = NewOperations()
	}

	return &Scheduler{
		state:         state,
		operations:    operations,
		finalTimestep: state.Timestep(),
	}
}

// State returns the state the scheduler advances.
func (s *Scheduler) State() *State {
	return s.state
}

// Operations returns the operation collection the scheduler consults.
func (s *Scheduler) Operations() *Operations {
	return s.operations
}

// CurrentTimestep returns the authoritative timestep counter.
func (s *Scheduler) CurrentTimestep() uint64 {
	return s.state.Timestep()
}

// TPS returns the number of steps per second executed by the last Run
// call. It resets to zero at the start of each Run call.
func (s *Scheduler) TPS() float64 {
	return s.lastTPS
}

// Walltime returns the wall time the last Run call took. It resets to zero
// at the start of each Run call.
func (s *Scheduler) Walltime() time.Duration {
	return s.walltime
}

// FinalTimestep returns the timestep at which the current or most recent
// Run call will complete.
func (s *Scheduler) FinalTimestep() uint64 {
	return s.finalTimestep
}

// Run advances the simulation the given number of steps.
//
// If the operation collection is not yet scheduled, Run attaches it first.
// When writeAtStart is true, writers whose triggers fire at the current
// timestep are invoked before any step is taken, capturing the state
// exactly as it is at the start of the run.
//
// Within each step, every tuner and updater whose trigger fires at the
// current timestep is invoked in registration order, then the integrator
// runs unconditionally, the timestep counter advances, and writers whose
// triggers fire at the new timestep are invoked.
//
// A failing operation aborts the run at the current step boundary; the
// error carries the timestep at which it occurred. The timestep counter
// only advances once the integrator for that step has run, so a failure in
// a tuner or updater leaves the counter unadvanced for that iteration.
func (s *Scheduler) Run(steps uint64, writeAtStart bool) error {
	if s.state == nil {
		return NotInitializedError{}
	}

	if !s.operations.IsScheduled() {
		if err := s.operations.Schedule(s.state); err != nil {
			return err
		}
	}

	start := s.state.Timestep()
	if steps > MaxRunSteps || steps > MaxRunSteps-start {
		return StepCountError{Steps: steps, Timestep: start}
	}

	end := start + steps

	s.walltime = 0
	s.lastTPS = 0
	s.finalTimestep = end

	startTime := time.Now()
	defer func() {
		s.walltime = time.Since(startTime)
		executed := s.state.Timestep() - start
		if secs := s.walltime.Seconds(); secs > 0 {
			s.lastTPS = float64(executed) / secs
		}
	}()

	span := RunSpan{Start: start, End: end}
	s.InvokeHook(HookCtx{Domain: s, Pos: HookPosRunStart, Item: span})
	defer s.InvokeHook(HookCtx{Domain: s, Pos: HookPosRunEnd, Item: span})

	if writeAtStart {
		if err := s.invokeWriters(start); err != nil {
			return err
		}
	}

	for s.state.Timestep() < end {
		if err := s.step(); err != nil {
			return err
		}
	}

	return nil
}

// step executes one full iteration of the run loop.
func (s *Scheduler) step() error {
	t := s.state.Timestep()

	for _, tuner := range s.operations.tuners {
		if !tuner.Trigger().Evaluate(t) {
			continue
		}

		inv := Invocation{Category: CategoryTuner, Op: tuner, Timestep: t}
		s.InvokeHook(HookCtx{Domain: s, Pos: HookPosBeforeOp, Item: inv})

		if err := tuner.Tune(t); err != nil {
			return OperationError{
				Timestep: t,
				Category: CategoryTuner,
				Op:       tuner.Name(),
				Err:      err,
			}
		}

		s.InvokeHook(HookCtx{Domain: s, Pos: HookPosAfterOp, Item: inv})
	}

	for _, updater := range s.operations.updaters {
		if !updater.Trigger().Evaluate(t) {
			continue
		}

		inv := Invocation{Category: CategoryUpdater, Op: updater, Timestep: t}
		s.InvokeHook(HookCtx{Domain: s, Pos: HookPosBeforeOp, Item: inv})

		if err := updater.Update(t); err != nil {
			return OperationError{
				Timestep: t,
				Category: CategoryUpdater,
				Op:       updater.Name(),
				Err:      err,
			}
		}

		s.InvokeHook(HookCtx{Domain: s, Pos: HookPosAfterOp, Item: inv})
	}

	if integrator := s.operations.integrator; integrator != nil {
		inv := Invocation{
			Category: CategoryIntegrator,
			Op:       integrator,
			Timestep: t,
		}
		s.InvokeHook(HookCtx{Domain: s, Pos: HookPosBeforeOp, Item: inv})

		if err := integrator.Advance(t); err != nil {
			return OperationError{
				Timestep: t,
				Category: CategoryIntegrator,
				Op:       integrator.Name(),
				Err:      err,
			}
		}

		s.InvokeHook(HookCtx{Domain: s, Pos: HookPosAfterOp, Item: inv})
	}

	s.state.advanceTimestep()

	if err := s.invokeWriters(s.state.Timestep()); err != nil {
		return err
	}

	s.InvokeHook(HookCtx{
		Domain: s,
		Pos:    HookPosStepEnd,
		Item:   s.state.Timestep(),
	})

	return nil
}

func (s *Scheduler) invokeWriters(t uint64) error {
	for _, writer := range s.operations.writers {
		if !writer.Trigger().Evaluate(t) {
			continue
		}

		inv := Invocation{Category: CategoryWriter, Op: writer, Timestep: t}
		s.InvokeHook(HookCtx{Domain: s, Pos: HookPosBeforeOp, Item: inv})

		if err := writer.Write(t); err != nil {
			return OperationError{
				Timestep: t,
				Category: CategoryWriter,
				Op:       writer.Name(),
				Err:      err,
			}
		}

		s.InvokeHook(HookCtx{Domain: s, Pos: HookPosAfterOp, Item: inv})
	}

	return nil
}
