// Package update provides the built-in updaters that mutate the simulation
// state when triggered.
package update

import (
	"github.com/forcelab/stepsim/sim"
)

// ZeroMomentum subtracts the center-of-mass velocity from every particle,
// removing any net linear momentum from the system.
type ZeroMomentum struct {
	sim.TriggeredOperationBase
}

// NewZeroMomentum creates a ZeroMomentum updater gated by the given
// trigger.
func NewZeroMomentum(name string, trigger sim.Trigger) *ZeroMomentum {
	return &ZeroMomentum{
		TriggeredOperationBase: sim.NewTriggeredOperationBase(name, trigger),
	}
}

// Update removes the net momentum from the state.
func (u *ZeroMomentum) Update(timestep uint64) error {
	state := u.State()

	mass := state.Mass()
	velocity := state.Velocity()

	totalMass := 0.0
	var p sim.Vec3
	for i, v := range velocity {
		totalMass += mass[i]
		p[0] += mass[i] * v[0]
		p[1] += mass[i] * v[1]
		p[2] += mass[i] * v[2]
	}

	if totalMass == 0 {
		return nil
	}

	var vCOM sim.Vec3
	vCOM[0] = p[0] / totalMass
	vCOM[1] = p[1] / totalMass
	vCOM[2] = p[2] / totalMass

	for i := range velocity {
		velocity[i][0] -= vCOM[0]
		velocity[i][1] -= vCOM[1]
		velocity[i][2] -= vCOM[2]
	}

	return nil
}
