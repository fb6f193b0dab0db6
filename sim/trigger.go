package sim

// A Trigger decides whether an operation fires at a given timestep.
//
// Evaluate must be a pure function of the timestep and the trigger's own
// construction parameters. The scheduler evaluates triggers fresh at every
// step and may query the same timestep more than once, so a trigger must
// produce the same answer for the same timestep regardless of how often it
// is asked.
type Trigger interface {
	Evaluate(timestep uint64) bool
}

// TriggerFunc adapts an arbitrary predicate function into a Trigger.
//
// The purity obligation of the Trigger contract transfers to the function
// author; the scheduler does not enforce it.
type TriggerFunc func(timestep uint64) bool

// Evaluate calls the wrapped predicate.
func (f TriggerFunc) Evaluate(timestep uint64) bool {
	return f(timestep)
}
