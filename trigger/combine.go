package trigger

import (
	"github.com/forcelab/stepsim/sim"
)

// And fires when all child triggers fire. Every child is evaluated on
// every query; there is no short-circuiting, so internally counting custom
// triggers observe the same query sequence regardless of their siblings.
type And struct {
	children []sim.Trigger
}

// NewAnd creates an And trigger over the given children. At least one
// child is required.
func NewAnd(children ...sim.Trigger) (*And, error) {
	if len(children) == 0 {
		return nil, sim.ConfigurationError{
			Reason: "and trigger requires at least one child",
		}
	}

	return &And{children: append([]sim.Trigger(nil), children...)}, nil
}

// Evaluate returns true if all children fire at the timestep.
func (t *And) Evaluate(timestep uint64) bool {
	result := true
	for _, c := range t.children {
		if !c.Evaluate(timestep) {
			result = false
		}
	}

	return result
}

// Or fires when any child trigger fires. Every child is evaluated on every
// query; there is no short-circuiting.
type Or struct {
	children []sim.Trigger
}

// NewOr creates an Or trigger over the given children. At least one child
// is required.
func NewOr(children ...sim.Trigger) (*Or, error) {
	if len(children) == 0 {
		return nil, sim.ConfigurationError{
			Reason: "or trigger requires at least one child",
		}
	}

	return &Or{children: append([]sim.Trigger(nil), children...)}, nil
}

// Evaluate returns true if any child fires at the timestep.
func (t *Or) Evaluate(timestep uint64) bool {
	result := false
	for _, c := range t.children {
		if c.Evaluate(timestep) {
			result = true
		}
	}

	return result
}

// Not negates a child trigger.
type Not struct {
	child sim.Trigger
}

// NewNot creates a trigger that fires when the child does not.
func NewNot(child sim.Trigger) *Not {
	return &Not{child: child}
}

// Evaluate returns true if the child does not fire at the timestep.
func (t *Not) Evaluate(timestep uint64) bool {
	return !t.child.Evaluate(timestep)
}
