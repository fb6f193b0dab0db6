package write

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/forcelab/stepsim/sim"
)

// A Frame is one trajectory frame read back from a file.
type Frame struct {
	Timestep uint64
	Position []sim.Vec3
}

// ReadTrajectoryFile reads all frames from a trajectory file.
func ReadTrajectoryFile(filename string) ([]Frame, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var header trajectoryHeader
	if err := binary.Read(file, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("reading trajectory header: %w", err)
	}

	if header.Magic != trajectoryMagic {
		return nil, fmt.Errorf("%s is not a trajectory file", filename)
	}

	if header.Version != trajectoryVersion {
		return nil, fmt.Errorf("unsupported trajectory version %d",
			header.Version)
	}

	var frames []Frame
	for {
		var fh frameHeader
		err := binary.Read(file, binary.LittleEndian, &fh)
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading frame header: %w", err)
		}

		coords := make([]float32, 3*fh.NumParticles)
		if err := binary.Read(file, binary.LittleEndian, coords); err != nil {
			return nil, fmt.Errorf("reading frame at timestep %d: %w",
				fh.Timestep, err)
		}

		frame := Frame{
			Timestep: fh.Timestep,
			Position: make([]sim.Vec3, fh.NumParticles),
		}
		for i := range frame.Position {
			frame.Position[i] = sim.Vec3{
				float64(coords[3*i]),
				float64(coords[3*i+1]),
				float64(coords[3*i+2]),
			}
		}

		frames = append(frames, frame)
	}
}
