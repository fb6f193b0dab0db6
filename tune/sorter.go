// Package tune provides the built-in tuners. Tuners adjust runtime
// parameters, such as the memory layout of the particle storage, and never
// change observable physics.
package tune

import (
	"math"
	"sort"

	"github.com/forcelab/stepsim/sim"
)

// Sorter reorders the particle storage along a spatial grid so that
// particles close in space stay close in memory. The particle identities
// and their physical values are untouched; only the storage order changes.
type Sorter struct {
	sim.TriggeredOperationBase

	gridSize int
}

// NewSorter creates a Sorter tuner that sorts particles into a grid with
// the given number of cells per box edge.
func NewSorter(name string, trigger sim.Trigger, gridSize int) (*Sorter, error) {
	if gridSize <= 0 {
		return nil, sim.ConfigurationError{
			Reason: "sorter grid size must be positive",
		}
	}

	return &Sorter{
		TriggeredOperationBase: sim.NewTriggeredOperationBase(name, trigger),
		gridSize:               gridSize,
	}, nil
}

// Tune sorts the particle storage by grid cell index.
func (s *Sorter) Tune(timestep uint64) error {
	state := s.State()

	box := state.Box()
	position := state.Position()

	keys := make([]int, len(position))
	for i, p := range position {
		keys[i] = s.cellIndex(box, p)
	}

	index := make([]int, len(position))
	for i := range index {
		index[i] = i
	}

	// Stable so that equal keys preserve the existing storage order and
	// the tuner stays deterministic.
	sort.SliceStable(index, func(a, b int) bool {
		return keys[index[a]] < keys[index[b]]
	})

	order := make([]int, len(index))
	for rank, particle := range index {
		order[particle] = rank
	}

	state.Permute(order)

	return nil
}

func (s *Sorter) cellIndex(box sim.Box, p sim.Vec3) int {
	n := s.gridSize

	cx := cellCoord(p[0], box.Lx, n)
	cy := cellCoord(p[1], box.Ly, n)
	cz := cellCoord(p[2], box.Lz, n)

	return (cz*n+cy)*n + cx
}

func cellCoord(x, l float64, n int) int {
	if l <= 0 {
		return 0
	}

	c := int(math.Floor((x/l + 0.5) * float64(n)))
	if c < 0 {
		c = 0
	}
	if c >= n {
		c = n - 1
	}

	return c
}
