package sim

import (
	"fmt"
	"math"
)

// A Vec3 is a position, velocity, or momentum in simulation space.
type Vec3 [3]float64

// A Box is an orthorhombic simulation box centered at the origin.
type Box struct {
	Lx float64 `json:"lx"`
	Ly float64 `json:"ly"`
	Lz float64 `json:"lz"`
}

// Volume returns the volume of the box.
func (b Box) Volume() float64 {
	return b.Lx * b.Ly * b.Lz
}

// Wrap folds a position back into the box.
func (b Box) Wrap(p Vec3) Vec3 {
	p[0] = wrapCoord(p[0], b.Lx)
	p[1] = wrapCoord(p[1], b.Ly)
	p[2] = wrapCoord(p[2], b.Lz)
	return p
}

func wrapCoord(x, l float64) float64 {
	if l == 0 {
		return x
	}

	x = math.Mod(x+l/2, l)
	if x < 0 {
		x += l
	}

	return x - l/2
}

// A State holds the particle data, the box, and the authoritative timestep
// counter of one simulation. Exactly one State exists per simulation. All
// attached operations share it and may mutate its contents during their own
// invocation only.
type State struct {
	box      Box
	position []Vec3
	velocity []Vec3
	mass     []float64
	typeID   []int
	timestep uint64
}

// NewState creates a State from a snapshot.
func NewState(snap Snapshot) (*State, error) {
	if err := snap.validate(); err != nil {
		return nil, err
	}

	s := &State{
		box:      snap.Box,
		position: append([]Vec3(nil), snap.Position...),
		velocity: append([]Vec3(nil), snap.Velocity...),
		mass:     append([]float64(nil), snap.Mass...),
		typeID:   append([]int(nil), snap.TypeID...),
		timestep: snap.Timestep,
	}

	return s, nil
}

// NumParticles returns the number of particles in the state.
func (s *State) NumParticles() int {
	return len(s.position)
}

// Box returns the current simulation box.
func (s *State) Box() Box {
	return s.box
}

// SetBox replaces the simulation box.
func (s *State) SetBox(b Box) {
	s.box = b
}

// Position returns the particle positions. The returned slice aliases the
// state storage so that operations can mutate positions in place.
func (s *State) Position() []Vec3 {
	return s.position
}

// Velocity returns the particle velocities. The returned slice aliases the
// state storage.
func (s *State) Velocity() []Vec3 {
	return s.velocity
}

// Mass returns the particle masses. The returned slice aliases the state
// storage.
func (s *State) Mass() []float64 {
	return s.mass
}

// TypeID returns the particle type IDs. The returned slice aliases the
// state storage.
func (s *State) TypeID() []int {
	return s.typeID
}

// Timestep returns the current timestep counter.
func (s *State) Timestep() uint64 {
	return s.timestep
}

func (s *State) advanceTimestep() {
	s.timestep++
}

// Permute reorders the particle storage so that particle i moves to
// position order[i]. Every entry must appear exactly once.
func (s *State) Permute(order []int) {
	if len(order) != len(s.position) {
		panic(fmt.Sprintf("permutation has %d entries for %d particles",
			len(order), len(s.position)))
	}

	position := make([]Vec3, len(s.position))
	velocity := make([]Vec3, len(s.velocity))
	mass := make([]float64, len(s.mass))
	typeID := make([]int, len(s.typeID))
	seen := make([]bool, len(order))

	for i, j := range order {
		if j < 0 || j >= len(order) || seen[j] {
			panic("invalid permutation")
		}

		seen[j] = true
		position[j] = s.position[i]
		velocity[j] = s.velocity[i]
		mass[j] = s.mass[i]
		typeID[j] = s.typeID[i]
	}

	s.position = position
	s.velocity = velocity
	s.mass = mass
	s.typeID = typeID
}

// KineticEnergy returns the total kinetic energy of the particles.
func (s *State) KineticEnergy() float64 {
	ke := 0.0
	for i, v := range s.velocity {
		ke += 0.5 * s.mass[i] * (v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	}

	return ke
}

// TotalMomentum returns the total momentum of the particles.
func (s *State) TotalMomentum() Vec3 {
	var p Vec3
	for i, v := range s.velocity {
		p[0] += s.mass[i] * v[0]
		p[1] += s.mass[i] * v[1]
		p[2] += s.mass[i] * v[2]
	}

	return p
}

// TakeSnapshot copies the current state into a snapshot.
func (s *State) TakeSnapshot() Snapshot {
	return Snapshot{
		Box:      s.box,
		Position: append([]Vec3(nil), s.position...),
		Velocity: append([]Vec3(nil), s.velocity...),
		Mass:     append([]float64(nil), s.mass...),
		TypeID:   append([]int(nil), s.typeID...),
		Timestep: s.timestep,
	}
}
