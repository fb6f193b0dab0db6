package sim

import (
	"encoding/json"
	"fmt"
	"os"
)

// A Snapshot is a plain serializable copy of a simulation state. Snapshots
// are the only way to create a State and the only way to persist one.
type Snapshot struct {
	Box      Box       `json:"box"`
	Position []Vec3    `json:"position"`
	Velocity []Vec3    `json:"velocity"`
	Mass     []float64 `json:"mass"`
	TypeID   []int     `json:"type_id"`
	Timestep uint64    `json:"timestep"`
}

func (s Snapshot) validate() error {
	n := len(s.Position)

	if len(s.Velocity) != n || len(s.Mass) != n || len(s.TypeID) != n {
		return ConfigurationError{Reason: fmt.Sprintf(
			"snapshot arrays disagree on particle count: "+
				"%d positions, %d velocities, %d masses, %d type IDs",
			n, len(s.Velocity), len(s.Mass), len(s.TypeID))}
	}

	for i, m := range s.Mass {
		if m <= 0 {
			return ConfigurationError{Reason: fmt.Sprintf(
				"particle %d has non-positive mass %g", i, m)}
		}
	}

	return nil
}

// ReadSnapshotFile loads a snapshot from a JSON file written by
// WriteSnapshotFile.
func ReadSnapshotFile(filename string) (Snapshot, error) {
	file, err := os.Open(filename)
	if err != nil {
		return Snapshot{}, err
	}
	defer file.Close()

	var snap Snapshot
	if err := json.NewDecoder(file).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot %s: %w", filename, err)
	}

	return snap, nil
}

// WriteSnapshotFile saves a snapshot to a JSON file, overwriting any
// existing file.
func WriteSnapshotFile(filename string, snap Snapshot) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")

	return enc.Encode(snap)
}
