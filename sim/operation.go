package sim

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// Category tags the kind of an operation within the scheduler's fixed
// execution order.
type Category int

// The four operation categories, in their execution order within a step.
const (
	CategoryTuner Category = iota
	CategoryUpdater
	CategoryIntegrator
	CategoryWriter
)

func (c Category) String() string {
	switch c {
	case CategoryTuner:
		return "tuner"
	case CategoryUpdater:
		return "updater"
	case CategoryIntegrator:
		return "integrator"
	case CategoryWriter:
		return "writer"
	default:
		return "unknown"
	}
}

// An Operation is a unit of work that can bind to a simulation state and be
// invoked by the scheduler.
//
// The lifecycle is Unattached -> Attached -> Unattached. Attach is valid
// only while unattached; the operation stays unattached when Attach fails.
// Detach is idempotent and never fails. Acting on an unattached operation
// is a programming error and panics.
type Operation interface {
	Named

	Attach(state *State) error
	Detach()
	IsAttached() bool
}

// A TriggeredOperation is an operation gated by a trigger. Tuners,
// updaters, and writers are triggered; the integrator is not.
type TriggeredOperation interface {
	Operation

	Trigger() Trigger
}

// A Tuner adjusts runtime parameters of other operations or of the state
// storage. Tuners never change observable physics.
type Tuner interface {
	TriggeredOperation

	Tune(timestep uint64) error
}

// An Updater mutates the simulation state when triggered.
type Updater interface {
	TriggeredOperation

	Update(timestep uint64) error
}

// An Integrator advances the state by one timestep. The integrator has no
// trigger; it runs on every step by construction.
type Integrator interface {
	Operation

	Advance(timestep uint64) error
}

// A Writer observes the state when triggered and records output. Writers
// must not mutate the state.
type Writer interface {
	TriggeredOperation

	Write(timestep uint64) error
}

// OperationBase provides the name and lifecycle bookkeeping that concrete
// operations embed.
type OperationBase struct {
	name  string
	state *State
}

// NewOperationBase creates a new OperationBase.
func NewOperationBase(name string) OperationBase {
	return OperationBase{name: name}
}

// Name returns the name of the operation.
func (b *OperationBase) Name() string {
	return b.name
}

// Attach binds the operation to the given state.
func (b *OperationBase) Attach(state *State) error {
	if b.state != nil {
		panic("operation " + b.name + " is already attached")
	}

	if state == nil {
		panic("operation " + b.name + " cannot attach to a nil state")
	}

	b.state = state

	return nil
}

// Detach unbinds the operation from the state. Detaching an unattached
// operation is a no-op.
func (b *OperationBase) Detach() {
	b.state = nil
}

// IsAttached returns true if the operation is bound to a state.
func (b *OperationBase) IsAttached() bool {
	return b.state != nil
}

// State returns the bound state, panicking if the operation is not
// attached. Concrete operations call State from their act methods so that
// acting while unattached fails loudly.
func (b *OperationBase) State() *State {
	if b.state == nil {
		panic("operation " + b.name + " is not attached")
	}

	return b.state
}

// TriggeredOperationBase extends OperationBase with a trigger.
type TriggeredOperationBase struct {
	OperationBase

	trigger Trigger
}

// NewTriggeredOperationBase creates a new TriggeredOperationBase.
func NewTriggeredOperationBase(
	name string,
	trigger Trigger,
) TriggeredOperationBase {
	if trigger == nil {
		panic("operation " + name + " requires a trigger")
	}

	return TriggeredOperationBase{
		OperationBase: NewOperationBase(name),
		trigger:       trigger,
	}
}

// Trigger returns the trigger that gates the operation.
func (b *TriggeredOperationBase) Trigger() Trigger {
	return b.trigger
}
