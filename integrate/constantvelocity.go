// Package integrate provides the built-in integrators that advance the
// simulation state by one timestep.
package integrate

import (
	"github.com/forcelab/stepsim/sim"
)

// ConstantVelocity advances particle positions by their velocities over a
// fixed timestep length, wrapping positions back into the box. It is the
// distinguished integrator of a simulation: it has no trigger and runs on
// every step.
type ConstantVelocity struct {
	sim.OperationBase

	dt float64
}

// NewConstantVelocity creates a ConstantVelocity integrator with the given
// timestep length in simulation time units.
func NewConstantVelocity(name string, dt float64) (*ConstantVelocity, error) {
	if dt <= 0 {
		return nil, sim.ConfigurationError{
			Reason: "integrator timestep length must be positive",
		}
	}

	return &ConstantVelocity{
		OperationBase: sim.NewOperationBase(name),
		dt:            dt,
	}, nil
}

// DT returns the timestep length.
func (i *ConstantVelocity) DT() float64 {
	return i.dt
}

// Attach binds the integrator to the state. A state with a degenerate box
// cannot be integrated.
func (i *ConstantVelocity) Attach(state *sim.State) error {
	if state != nil && state.Box().Volume() <= 0 {
		return sim.AttachmentError{
			Op:     i.Name(),
			Reason: "state box has non-positive volume",
		}
	}

	return i.OperationBase.Attach(state)
}

// Advance moves every particle by v*dt and wraps it into the box.
func (i *ConstantVelocity) Advance(timestep uint64) error {
	state := i.State()

	box := state.Box()
	position := state.Position()
	velocity := state.Velocity()

	for k := range position {
		position[k][0] += velocity[k][0] * i.dt
		position[k][1] += velocity[k][1] * i.dt
		position[k][2] += velocity[k][2] * i.dt
		position[k] = box.Wrap(position[k])
	}

	return nil
}
