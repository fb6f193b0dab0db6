package update

import (
	"github.com/forcelab/stepsim/sim"
)

// BoxResize linearly interpolates the simulation box between an initial
// and a final box over a timestep window, rescaling particle positions
// with the box.
type BoxResize struct {
	sim.TriggeredOperationBase

	initial sim.Box
	final   sim.Box
	t0      uint64
	t1      uint64
}

// NewBoxResize creates a BoxResize updater that morphs the box from
// initial at timestep t0 to final at timestep t1.
func NewBoxResize(
	name string,
	trigger sim.Trigger,
	initial, final sim.Box,
	t0, t1 uint64,
) (*BoxResize, error) {
	if t1 <= t0 {
		return nil, sim.ConfigurationError{
			Reason: "box resize window must end after it starts",
		}
	}

	if initial.Volume() <= 0 || final.Volume() <= 0 {
		return nil, sim.ConfigurationError{
			Reason: "box resize requires boxes with positive volume",
		}
	}

	return &BoxResize{
		TriggeredOperationBase: sim.NewTriggeredOperationBase(name, trigger),
		initial:                initial,
		final:                  final,
		t0:                     t0,
		t1:                     t1,
	}, nil
}

// BoxAt returns the interpolated box for a timestep. Timesteps before the
// window yield the initial box, timesteps after it the final box.
func (u *BoxResize) BoxAt(timestep uint64) sim.Box {
	if timestep <= u.t0 {
		return u.initial
	}

	if timestep >= u.t1 {
		return u.final
	}

	f := float64(timestep-u.t0) / float64(u.t1-u.t0)

	return sim.Box{
		Lx: u.initial.Lx + f*(u.final.Lx-u.initial.Lx),
		Ly: u.initial.Ly + f*(u.final.Ly-u.initial.Ly),
		Lz: u.initial.Lz + f*(u.final.Lz-u.initial.Lz),
	}
}

// Update sets the interpolated box and rescales positions accordingly.
func (u *BoxResize) Update(timestep uint64) error {
	state := u.State()

	oldBox := state.Box()
	newBox := u.BoxAt(timestep)
	if newBox == oldBox {
		return nil
	}

	sx := newBox.Lx / oldBox.Lx
	sy := newBox.Ly / oldBox.Ly
	sz := newBox.Lz / oldBox.Lz

	position := state.Position()
	for i := range position {
		position[i][0] *= sx
		position[i][1] *= sy
		position[i][2] *= sz
	}

	state.SetBox(newBox)

	return nil
}
