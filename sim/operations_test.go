package sim

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Operations", func() {
	var (
		state *State
		ops   *Operations
		log   *callLog

		tuner      *fakeTuner
		updater    *fakeUpdater
		integrator *fakeIntegrator
		writer     *fakeWriter
	)

	BeforeEach(func() {
		state = mustState(testSnapshot(4))
		ops = NewOperations()
		log = &callLog{}

		tuner = newFakeTuner("t", everyStep(), log)
		updater = newFakeUpdater("u", everyStep(), log)
		integrator = newFakeIntegrator("i", log)
		writer = newFakeWriter("w", everyStep(), log)
	})

	It("should reject duplicate registrations", func() {
		Expect(ops.AddTuner(tuner)).To(Succeed())

		err := ops.AddTuner(tuner)

		var dupErr DuplicateRegistrationError
		Expect(errors.As(err, &dupErr)).To(BeTrue())
		Expect(ops.Tuners()).To(HaveLen(1))
	})

	It("should reject removing an unregistered operation", func() {
		err := ops.RemoveWriter(writer)

		var notFoundErr NotFoundError
		Expect(errors.As(err, &notFoundErr)).To(BeTrue())
	})

	It("should attach all operations on schedule", func() {
		Expect(ops.AddTuner(tuner)).To(Succeed())
		Expect(ops.AddUpdater(updater)).To(Succeed())
		Expect(ops.SetIntegrator(integrator)).To(Succeed())
		Expect(ops.AddWriter(writer)).To(Succeed())

		Expect(ops.Schedule(state)).To(Succeed())

		Expect(ops.IsScheduled()).To(BeTrue())
		Expect(tuner.IsAttached()).To(BeTrue())
		Expect(updater.IsAttached()).To(BeTrue())
		Expect(integrator.IsAttached()).To(BeTrue())
		Expect(writer.IsAttached()).To(BeTrue())
	})

	It("should roll back all attachments when one fails", func() {
		Expect(ops.AddTuner(tuner)).To(Succeed())
		Expect(ops.AddUpdater(updater)).To(Succeed())
		Expect(ops.SetIntegrator(integrator)).To(Succeed())
		Expect(ops.AddWriter(writer)).To(Succeed())

		attachErr := AttachmentError{Op: "w", Reason: "incompatible state"}
		writer.attachErr = attachErr

		err := ops.Schedule(state)

		Expect(err).To(MatchError(attachErr))
		Expect(ops.IsScheduled()).To(BeFalse())
		Expect(tuner.IsAttached()).To(BeFalse())
		Expect(updater.IsAttached()).To(BeFalse())
		Expect(integrator.IsAttached()).To(BeFalse())
		Expect(writer.IsAttached()).To(BeFalse())
	})

	It("should detach all operations on unschedule", func() {
		Expect(ops.AddTuner(tuner)).To(Succeed())
		Expect(ops.SetIntegrator(integrator)).To(Succeed())
		Expect(ops.AddWriter(writer)).To(Succeed())
		Expect(ops.Schedule(state)).To(Succeed())

		ops.Unschedule()

		Expect(ops.IsScheduled()).To(BeFalse())
		Expect(tuner.IsAttached()).To(BeFalse())
		Expect(integrator.IsAttached()).To(BeFalse())
		Expect(writer.IsAttached()).To(BeFalse())
	})

	It("should tolerate unschedule of already detached operations", func() {
		Expect(ops.AddWriter(writer)).To(Succeed())
		Expect(ops.Schedule(state)).To(Succeed())

		writer.Detach()

		Expect(ops.Unschedule).NotTo(Panic())
		Expect(ops.IsScheduled()).To(BeFalse())
	})

	It("should attach operations added while scheduled", func() {
		Expect(ops.Schedule(state)).To(Succeed())

		Expect(ops.AddUpdater(updater)).To(Succeed())

		Expect(updater.IsAttached()).To(BeTrue())
	})

	It("should not add an operation that fails to attach while scheduled",
		func() {
			Expect(ops.Schedule(state)).To(Succeed())

			updater.attachErr = AttachmentError{Op: "u", Reason: "no"}

			Expect(ops.AddUpdater(updater)).NotTo(Succeed())
			Expect(ops.Updaters()).To(BeEmpty())
		})

	It("should detach an operation removed while scheduled", func() {
		Expect(ops.AddWriter(writer)).To(Succeed())
		Expect(ops.Schedule(state)).To(Succeed())

		Expect(ops.RemoveWriter(writer)).To(Succeed())

		Expect(writer.IsAttached()).To(BeFalse())
		Expect(ops.Writers()).To(BeEmpty())
	})

	It("should replace the integrator while scheduled", func() {
		Expect(ops.SetIntegrator(integrator)).To(Succeed())
		Expect(ops.Schedule(state)).To(Succeed())

		replacement := newFakeIntegrator("i2", log)
		Expect(ops.SetIntegrator(replacement)).To(Succeed())

		Expect(integrator.IsAttached()).To(BeFalse())
		Expect(replacement.IsAttached()).To(BeTrue())
		Expect(ops.Integrator()).To(BeIdenticalTo(replacement))
	})

	It("should restore the old integrator when the replacement fails to "+
		"attach", func() {
		Expect(ops.SetIntegrator(integrator)).To(Succeed())
		Expect(ops.Schedule(state)).To(Succeed())

		replacement := &failingIntegrator{
			OperationBase: NewOperationBase("bad"),
		}

		Expect(ops.SetIntegrator(replacement)).NotTo(Succeed())

		Expect(integrator.IsAttached()).To(BeTrue())
		Expect(ops.Integrator()).To(BeIdenticalTo(integrator))
	})

	It("should reject setting the same integrator twice", func() {
		Expect(ops.SetIntegrator(integrator)).To(Succeed())

		err := ops.SetIntegrator(integrator)

		var dupErr DuplicateRegistrationError
		Expect(errors.As(err, &dupErr)).To(BeTrue())
	})

	It("should preserve registration order across attach cycles", func() {
		w2 := newFakeWriter("w2", everyStep(), log)
		w3 := newFakeWriter("w3", everyStep(), log)

		Expect(ops.AddWriter(writer)).To(Succeed())
		Expect(ops.AddWriter(w2)).To(Succeed())
		Expect(ops.AddWriter(w3)).To(Succeed())

		Expect(ops.Schedule(state)).To(Succeed())
		ops.Unschedule()
		Expect(ops.Schedule(state)).To(Succeed())

		writers := ops.Writers()
		Expect(writers).To(HaveLen(3))
		Expect(writers[0].Name()).To(Equal("w"))
		Expect(writers[1].Name()).To(Equal("w2"))
		Expect(writers[2].Name()).To(Equal("w3"))
	})

	It("should panic when scheduled twice", func() {
		Expect(ops.Schedule(state)).To(Succeed())

		Expect(func() { _ = ops.Schedule(state) }).To(Panic())
	})
})

type failingIntegrator struct {
	OperationBase
}

func (f *failingIntegrator) Attach(state *State) error {
	return AttachmentError{Op: f.Name(), Reason: "cannot bind"}
}

func (f *failingIntegrator) Advance(timestep uint64) error {
	return nil
}
