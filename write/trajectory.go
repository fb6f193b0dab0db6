package write

import (
	"encoding/binary"
	"log"
	"os"

	"github.com/forcelab/stepsim/sim"
	"github.com/forcelab/stepsim/trigger"
)

var trajectoryMagic = [8]byte{'S', 'T', 'E', 'P', 'T', 'R', 'J', 0}

const trajectoryVersion uint32 = 1

// A Trajectory appends binary position frames to a file at a fixed period.
//
// The output target is append-only: frames already written can never be
// replayed consistently. Once a Trajectory has been detached it is retired
// for good; reattaching it fails with a configuration error, and its
// period can never be changed.
type Trajectory struct {
	sim.TriggeredOperationBase

	filename string
	file     *os.File
	retired  bool
}

type trajectoryHeader struct {
	Magic   [8]byte
	Version uint32
	_       uint32
}

type frameHeader struct {
	Timestep     uint64
	NumParticles uint32
	_            uint32
}

// NewTrajectory creates a Trajectory writer that appends a frame to the
// file every period steps. A period of zero is a construction-time error.
func NewTrajectory(
	name string,
	filename string,
	period, phase uint64,
) (*Trajectory, error) {
	t, err := trigger.NewPeriodic(period, phase)
	if err != nil {
		return nil, err
	}

	return &Trajectory{
		TriggeredOperationBase: sim.NewTriggeredOperationBase(name, t),
		filename:               filename,
	}, nil
}

// Filename returns the output file name.
func (w *Trajectory) Filename() string {
	return w.filename
}

// SetPeriod always fails: the period of a trajectory writer cannot change
// without making the time data in the file inconsistent.
func (w *Trajectory) SetPeriod(period uint64) error {
	return sim.ConfigurationError{
		Reason: "cannot change the period of a trajectory writer",
	}
}

// Attach opens the output file for appending, writing the file header if
// the file is new. Attaching a retired writer fails.
func (w *Trajectory) Attach(state *sim.State) error {
	if w.retired {
		return sim.ConfigurationError{
			Reason: "cannot reattach trajectory writer " + w.Name() +
				" after it has been detached",
		}
	}

	file, err := os.OpenFile(
		w.filename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return sim.AttachmentError{
			Op:     w.Name(),
			Reason: "cannot open trajectory file",
			Err:    err,
		}
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return sim.AttachmentError{
			Op:     w.Name(),
			Reason: "cannot stat trajectory file",
			Err:    err,
		}
	}

	if info.Size() == 0 {
		header := trajectoryHeader{
			Magic:   trajectoryMagic,
			Version: trajectoryVersion,
		}
		if err := binary.Write(file, binary.LittleEndian, header); err != nil {
			file.Close()
			return sim.AttachmentError{
				Op:     w.Name(),
				Reason: "cannot write trajectory header",
				Err:    err,
			}
		}
	}

	if err := w.OperationBase.Attach(state); err != nil {
		file.Close()
		return err
	}

	w.file = file

	return nil
}

// Detach closes the output file and retires the writer.
func (w *Trajectory) Detach() {
	if !w.IsAttached() {
		return
	}

	if err := w.file.Close(); err != nil {
		log.Printf("closing trajectory file %s: %v", w.filename, err)
	}

	w.file = nil
	w.retired = true

	w.OperationBase.Detach()
}

// Write appends one frame with the current particle positions.
func (w *Trajectory) Write(timestep uint64) error {
	state := w.State()

	position := state.Position()

	header := frameHeader{
		Timestep:     timestep,
		NumParticles: uint32(len(position)),
	}
	if err := binary.Write(w.file, binary.LittleEndian, header); err != nil {
		return err
	}

	coords := make([]float32, 0, 3*len(position))
	for _, p := range position {
		coords = append(coords,
			float32(p[0]), float32(p[1]), float32(p[2]))
	}

	return binary.Write(w.file, binary.LittleEndian, coords)
}
