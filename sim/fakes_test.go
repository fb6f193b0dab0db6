package sim

// The fakes in this file record every invocation so that tests can assert
// on the exact (category, operation, timestep) sequence of a run.

type call struct {
	Category Category
	Op       string
	Timestep uint64
}

type callLog struct {
	calls []call
}

func (l *callLog) record(c Category, op string, timestep uint64) {
	l.calls = append(l.calls, call{Category: c, Op: op, Timestep: timestep})
}

func everyStep() Trigger {
	return TriggerFunc(func(uint64) bool { return true })
}

func periodic(period, phase uint64) Trigger {
	return TriggerFunc(func(t uint64) bool {
		return (t+phase)%period == 0
	})
}

type fakeTuner struct {
	TriggeredOperationBase
	log *callLog
	err error
}

func newFakeTuner(name string, trigger Trigger, log *callLog) *fakeTuner {
	return &fakeTuner{
		TriggeredOperationBase: NewTriggeredOperationBase(name, trigger),
		log:                    log,
	}
}

func (f *fakeTuner) Tune(timestep uint64) error {
	f.State()
	f.log.record(CategoryTuner, f.Name(), timestep)
	return f.err
}

type fakeUpdater struct {
	TriggeredOperationBase
	log       *callLog
	err       error
	attachErr error
}

func newFakeUpdater(name string, trigger Trigger, log *callLog) *fakeUpdater {
	return &fakeUpdater{
		TriggeredOperationBase: NewTriggeredOperationBase(name, trigger),
		log:                    log,
	}
}

func (f *fakeUpdater) Attach(state *State) error {
	if f.attachErr != nil {
		return f.attachErr
	}

	return f.OperationBase.Attach(state)
}

func (f *fakeUpdater) Update(timestep uint64) error {
	f.State()
	f.log.record(CategoryUpdater, f.Name(), timestep)
	return f.err
}

type fakeIntegrator struct {
	OperationBase
	log *callLog
	err error
}

func newFakeIntegrator(name string, log *callLog) *fakeIntegrator {
	return &fakeIntegrator{
		OperationBase: NewOperationBase(name),
		log:           log,
	}
}

func (f *fakeIntegrator) Advance(timestep uint64) error {
	f.State()
	f.log.record(CategoryIntegrator, f.Name(), timestep)
	return f.err
}

type fakeWriter struct {
	TriggeredOperationBase
	log       *callLog
	err       error
	attachErr error
}

func newFakeWriter(name string, trigger Trigger, log *callLog) *fakeWriter {
	return &fakeWriter{
		TriggeredOperationBase: NewTriggeredOperationBase(name, trigger),
		log:                    log,
	}
}

func (f *fakeWriter) Attach(state *State) error {
	if f.attachErr != nil {
		return f.attachErr
	}

	return f.OperationBase.Attach(state)
}

func (f *fakeWriter) Write(timestep uint64) error {
	f.State()
	f.log.record(CategoryWriter, f.Name(), timestep)
	return f.err
}

func testSnapshot(n int) Snapshot {
	snap := Snapshot{
		Box:      Box{Lx: 10, Ly: 10, Lz: 10},
		Position: make([]Vec3, n),
		Velocity: make([]Vec3, n),
		Mass:     make([]float64, n),
		TypeID:   make([]int, n),
	}

	for i := 0; i < n; i++ {
		snap.Position[i] = Vec3{float64(i), 0, 0}
		snap.Velocity[i] = Vec3{0, float64(i), 0}
		snap.Mass[i] = 1
	}

	return snap
}

func mustState(snap Snapshot) *State {
	state, err := NewState(snap)
	if err != nil {
		panic(err)
	}

	return state
}
