// Package write provides the built-in writers. Writers observe the state
// when triggered and record output; they never mutate the state.
package write

import (
	"github.com/forcelab/stepsim/datarecording"
	"github.com/forcelab/stepsim/sim"
)

// A Table periodically records scalar quantities of the state into a data
// recorder table.
type Table struct {
	sim.TriggeredOperationBase

	recorder  datarecording.DataRecorder
	tableName string
	created   bool
}

type quantityRow struct {
	Timestep      uint64
	KineticEnergy float64
	MomentumX     float64
	MomentumY     float64
	MomentumZ     float64
	Volume        float64
}

// NewTable creates a Table writer that records into the named table of the
// recorder.
func NewTable(
	name string,
	trigger sim.Trigger,
	recorder datarecording.DataRecorder,
	tableName string,
) *Table {
	return &Table{
		TriggeredOperationBase: sim.NewTriggeredOperationBase(name, trigger),
		recorder:               recorder,
		tableName:              tableName,
	}
}

// Attach binds the writer to the state and creates the output table on the
// first attachment.
func (w *Table) Attach(state *sim.State) error {
	if err := w.OperationBase.Attach(state); err != nil {
		return err
	}

	if !w.created {
		w.recorder.CreateTable(w.tableName, quantityRow{})
		w.created = true
	}

	return nil
}

// Write records one row of quantities at the given timestep.
func (w *Table) Write(timestep uint64) error {
	state := w.State()

	p := state.TotalMomentum()
	w.recorder.InsertData(w.tableName, quantityRow{
		Timestep:      timestep,
		KineticEnergy: state.KineticEnergy(),
		MomentumX:     p[0],
		MomentumY:     p[1],
		MomentumZ:     p[2],
		Volume:        state.Box().Volume(),
	})

	return nil
}
