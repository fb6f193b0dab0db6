package simulation

import (
	"github.com/rs/xid"

	"github.com/forcelab/stepsim/datarecording"
	"github.com/forcelab/stepsim/monitoring"
	"github.com/forcelab/stepsim/sim"
)

// Builder can be used to build a simulation.
type Builder struct {
	monitorOn      bool
	monitorPort    int
	outputFileName string
	dataRecorder   datarecording.DataRecorder
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		monitorOn: true,
	}
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithOutputFileName sets the custom output file name for the data
// recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithDataRecorder sets a custom data recorder, replacing the default
// SQLite recorder.
func (b Builder) WithDataRecorder(r datarecording.DataRecorder) Builder {
	b.dataRecorder = r
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if b.dataRecorder != nil && b.outputFileName != "" {
		panic("output file name cannot be set with a custom data recorder")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		operations: sim.NewOperations(),
	}

	s.id = xid.New().String()

	if b.dataRecorder != nil {
		s.dataRecorder = b.dataRecorder
	} else {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "stepsim_" + s.id
		}
		s.dataRecorder = datarecording.New(outputPath)
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.RegisterStatusProvider(s)
		s.monitor.StartServer()
	}

	return s
}
