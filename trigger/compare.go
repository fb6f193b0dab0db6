package trigger

import "fmt"

// On fires exactly at one timestep.
type On struct {
	timestep uint64
}

// NewOn creates a trigger that fires only at the given timestep.
func NewOn(timestep uint64) *On {
	return &On{timestep: timestep}
}

// Evaluate returns true if the timestep equals the configured timestep.
func (t *On) Evaluate(timestep uint64) bool {
	return timestep == t.timestep
}

func (t *On) String() string {
	return fmt.Sprintf("on(%d)", t.timestep)
}

// Before fires on all timesteps smaller than a cutoff.
type Before struct {
	timestep uint64
}

// NewBefore creates a trigger that fires strictly before the given
// timestep.
func NewBefore(timestep uint64) *Before {
	return &Before{timestep: timestep}
}

// Evaluate returns true if the timestep is smaller than the cutoff.
func (t *Before) Evaluate(timestep uint64) bool {
	return timestep < t.timestep
}

func (t *Before) String() string {
	return fmt.Sprintf("before(%d)", t.timestep)
}

// After fires on all timesteps larger than a cutoff.
type After struct {
	timestep uint64
}

// NewAfter creates a trigger that fires strictly after the given timestep.
func NewAfter(timestep uint64) *After {
	return &After{timestep: timestep}
}

// Evaluate returns true if the timestep is larger than the cutoff.
func (t *After) Evaluate(timestep uint64) bool {
	return timestep > t.timestep
}

func (t *After) String() string {
	return fmt.Sprintf("after(%d)", t.timestep)
}
