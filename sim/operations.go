package sim

// Operations owns the ordered collections of operations that apply to a
// simulation state: tuners, updaters, and writers in registration order,
// plus at most one integrator.
//
// Scheduling binds every contained operation to a state as a unit, in the
// fixed order tuners, updaters, integrator, writers. Unscheduling detaches
// them in reverse. Partial attachment is never left observable: if any
// operation fails to attach, everything attached so far is detached again
// before the error propagates.
type Operations struct {
	tuners     []Tuner
	updaters   []Updater
	writers    []Writer
	integrator Integrator

	scheduled bool
	state     *State
}

// NewOperations creates an empty operation collection.
func NewOperations() *Operations {
	return &Operations{}
}

// IsScheduled returns true if the collection is currently bound to a
// running simulation.
func (o *Operations) IsScheduled() bool {
	return o.scheduled
}

// Tuners returns the registered tuners in registration order.
func (o *Operations) Tuners() []Tuner {
	return append([]Tuner(nil), o.tuners...)
}

// Updaters returns the registered updaters in registration order.
func (o *Operations) Updaters() []Updater {
	return append([]Updater(nil), o.updaters...)
}

// Writers returns the registered writers in registration order.
func (o *Operations) Writers() []Writer {
	return append([]Writer(nil), o.writers...)
}

// Integrator returns the integrator, or nil if none is set.
func (o *Operations) Integrator() Integrator {
	return o.integrator
}

// AddTuner appends a tuner to the tuner list. If the collection is
// scheduled, the tuner is attached immediately.
func (o *Operations) AddTuner(t Tuner) error {
	for _, existing := range o.tuners {
		if existing == t {
			return DuplicateRegistrationError{Op: t.Name()}
		}
	}

	if o.scheduled {
		if err := t.Attach(o.state); err != nil {
			return err
		}
	}

	o.tuners = append(o.tuners, t)

	return nil
}

// AddUpdater appends an updater to the updater list. If the collection is
// scheduled, the updater is attached immediately.
func (o *Operations) AddUpdater(u Updater) error {
	for _, existing := range o.updaters {
		if existing == u {
			return DuplicateRegistrationError{Op: u.Name()}
		}
	}

	if o.scheduled {
		if err := u.Attach(o.state); err != nil {
			return err
		}
	}

	o.updaters = append(o.updaters, u)

	return nil
}

// AddWriter appends a writer to the writer list. If the collection is
// scheduled, the writer is attached immediately.
func (o *Operations) AddWriter(w Writer) error {
	for _, existing := range o.writers {
		if existing == w {
			return DuplicateRegistrationError{Op: w.Name()}
		}
	}

	if o.scheduled {
		if err := w.Attach(o.state); err != nil {
			return err
		}
	}

	o.writers = append(o.writers, w)

	return nil
}

// SetIntegrator sets the integrator, replacing any prior occupant. Passing
// nil clears the slot. If the collection is scheduled, the old integrator
// is detached and the new one attached as one transition; when the new one
// fails to attach, the old integrator is restored and the error propagates.
func (o *Operations) SetIntegrator(i Integrator) error {
	if i != nil && i == o.integrator {
		return DuplicateRegistrationError{Op: i.Name()}
	}

	old := o.integrator

	if o.scheduled {
		if old != nil {
			old.Detach()
		}

		if i != nil {
			if err := i.Attach(o.state); err != nil {
				if old != nil {
					mustAttach(old, o.state)
				}

				return err
			}
		}
	}

	o.integrator = i

	return nil
}

// RemoveTuner removes a tuner by identity, detaching it if the collection
// is scheduled.
func (o *Operations) RemoveTuner(t Tuner) error {
	for i, existing := range o.tuners {
		if existing != t {
			continue
		}

		if o.scheduled {
			t.Detach()
		}

		o.tuners = append(o.tuners[:i], o.tuners[i+1:]...)

		return nil
	}

	return NotFoundError{Op: t.Name()}
}

// RemoveUpdater removes an updater by identity, detaching it if the
// collection is scheduled.
func (o *Operations) RemoveUpdater(u Updater) error {
	for i, existing := range o.updaters {
		if existing != u {
			continue
		}

		if o.scheduled {
			u.Detach()
		}

		o.updaters = append(o.updaters[:i], o.updaters[i+1:]...)

		return nil
	}

	return NotFoundError{Op: u.Name()}
}

// RemoveWriter removes a writer by identity, detaching it if the
// collection is scheduled.
func (o *Operations) RemoveWriter(w Writer) error {
	for i, existing := range o.writers {
		if existing != w {
			continue
		}

		if o.scheduled {
			w.Detach()
		}

		o.writers = append(o.writers[:i], o.writers[i+1:]...)

		return nil
	}

	return NotFoundError{Op: w.Name()}
}

// Schedule attaches every registered operation to the given state, in the
// order tuners, updaters, integrator, writers. If any attach fails, every
// operation attached by this call is detached again, in reverse order, and
// the original error propagates.
func (o *Operations) Schedule(state *State) error {
	if o.scheduled {
		panic("operations are already scheduled")
	}

	attached := make([]Operation, 0,
		len(o.tuners)+len(o.updaters)+len(o.writers)+1)

	attach := func(op Operation) error {
		if err := op.Attach(state); err != nil {
			for i := len(attached) - 1; i >= 0; i-- {
				attached[i].Detach()
			}

			return err
		}

		attached = append(attached, op)

		return nil
	}

	for _, t := range o.tuners {
		if err := attach(t); err != nil {
			return err
		}
	}

	for _, u := range o.updaters {
		if err := attach(u); err != nil {
			return err
		}
	}

	if o.integrator != nil {
		if err := attach(o.integrator); err != nil {
			return err
		}
	}

	for _, w := range o.writers {
		if err := attach(w); err != nil {
			return err
		}
	}

	o.scheduled = true
	o.state = state

	return nil
}

// Unschedule detaches every operation in reverse of the attach order. It
// tolerates operations that are already unattached and never fails.
func (o *Operations) Unschedule() {
	for i := len(o.writers) - 1; i >= 0; i-- {
		o.writers[i].Detach()
	}

	if o.integrator != nil {
		o.integrator.Detach()
	}

	for i := len(o.updaters) - 1; i >= 0; i-- {
		o.updaters[i].Detach()
	}

	for i := len(o.tuners) - 1; i >= 0; i-- {
		o.tuners[i].Detach()
	}

	o.scheduled = false
	o.state = nil
}

func mustAttach(op Operation, state *State) {
	if err := op.Attach(state); err != nil {
		panic("cannot restore operation " + op.Name() + ": " + err.Error())
	}
}
