// Package trigger provides the built-in timestep predicates that gate
// operation execution. All triggers in this package are pure: they answer
// from the timestep and their construction parameters alone and have no
// observable side effects.
package trigger

import (
	"fmt"

	"github.com/forcelab/stepsim/sim"
)

// Periodic fires on timesteps where (t + phase) % period == 0.
type Periodic struct {
	period uint64
	phase  uint64
}

// NewPeriodic creates a Periodic trigger. A period of zero is a
// construction-time error.
func NewPeriodic(period, phase uint64) (*Periodic, error) {
	if period == 0 {
		return nil, sim.ConfigurationError{
			Reason: "trigger period must be positive",
		}
	}

	return &Periodic{period: period, phase: phase}, nil
}

// MustPeriodic creates a Periodic trigger and panics on invalid parameters.
func MustPeriodic(period, phase uint64) *Periodic {
	t, err := NewPeriodic(period, phase)
	if err != nil {
		panic(err)
	}

	return t
}

// Period returns the period of the trigger.
func (t *Periodic) Period() uint64 {
	return t.period
}

// Phase returns the phase of the trigger.
func (t *Periodic) Phase() uint64 {
	return t.phase
}

// Evaluate returns true if (timestep + phase) % period == 0.
func (t *Periodic) Evaluate(timestep uint64) bool {
	return (timestep+t.phase)%t.period == 0
}

func (t *Periodic) String() string {
	return fmt.Sprintf("periodic(period=%d, phase=%d)", t.period, t.phase)
}
