package sim

import (
	"fmt"
	"math"
)

// MaxRunSteps is the largest number of steps a single Run call may request.
// One step is reserved so that the end timestep can never wrap around.
const MaxRunSteps = math.MaxUint64 - 1

// A ConfigurationError reports invalid construction parameters, such as a
// zero trigger period or re-binding a retired writer.
type ConfigurationError struct {
	Reason string
}

func (e ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// A NotInitializedError reports that Run was called before a state was
// bound to the simulation.
type NotInitializedError struct{}

func (e NotInitializedError) Error() string {
	return "cannot run before the state is created"
}

// An AlreadyInitializedError reports an attempt to create the simulation
// state a second time.
type AlreadyInitializedError struct{}

func (e AlreadyInitializedError) Error() string {
	return "cannot initialize the state more than once"
}

// An AttachmentError reports that an operation could not bind to the
// current state.
type AttachmentError struct {
	Op     string
	Reason string
	Err    error
}

func (e AttachmentError) Error() string {
	msg := fmt.Sprintf("operation %s cannot attach: %s", e.Op, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e AttachmentError) Unwrap() error {
	return e.Err
}

// An OperationError reports that a triggered operation failed mid-run. The
// run aborts at the current step boundary and the timestep at which the
// failure happened is carried as context.
type OperationError struct {
	Timestep uint64
	Category Category
	Op       string
	Err      error
}

func (e OperationError) Error() string {
	return fmt.Sprintf("%s %s failed at timestep %d: %s",
		e.Category, e.Op, e.Timestep, e.Err)
}

func (e OperationError) Unwrap() error {
	return e.Err
}

// A StepCountError reports an out-of-range steps argument to Run.
type StepCountError struct {
	Steps    uint64
	Timestep uint64
}

func (e StepCountError) Error() string {
	return fmt.Sprintf(
		"cannot run %d steps from timestep %d: end timestep must not exceed %d",
		e.Steps, e.Timestep, uint64(MaxRunSteps))
}

// A DuplicateRegistrationError reports that the same operation instance was
// added to the operation list twice.
type DuplicateRegistrationError struct {
	Op string
}

func (e DuplicateRegistrationError) Error() string {
	return "operation " + e.Op + " is already registered"
}

// A NotFoundError reports a removal of an operation that is not registered.
type NotFoundError struct {
	Op string
}

func (e NotFoundError) Error() string {
	return "operation " + e.Op + " is not registered"
}
