// Package monitoring turns a running simulation into a small web server
// that reports run status, progress, and process resources.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/forcelab/stepsim/sim"
)

// A StatusProvider reports the externally observable counters of a
// simulation.
type StatusProvider interface {
	CurrentTimestep() uint64
	TPS() float64
	Walltime() time.Duration
	FinalTimestep() uint64
}

// Monitor allows external observation of a running simulation over HTTP.
// The monitor is strictly read-only: the run loop cannot be paused or
// preempted from outside; it can only be watched.
type Monitor struct {
	status     StatusProvider
	operations *sim.Operations
	portNumber int
	url        string

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterScheduler registers the scheduler to be monitored. The monitor
// hooks into the scheduler to track run progress.
func (m *Monitor) RegisterScheduler(s *sim.Scheduler) {
	m.status = s
	m.operations = s.Operations()

	s.AcceptHook(&progressHook{monitor: m})
}

// RegisterStatusProvider registers a status source without hooking into a
// scheduler.
func (m *Monitor) RegisterStatusProvider(sp StatusProvider) {
	m.status = sp
}

// StartServer starts the monitor as a web server with a custom port if
// wanted.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()

	r.HandleFunc("/api/status", m.reportStatus)
	r.HandleFunc("/api/operations", m.listOperations)
	r.HandleFunc("/api/operation/{name}", m.listOperationDetails)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.HandleFunc("/", m.dashboard)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	port := listener.Addr().(*net.TCPAddr).Port
	m.url = "http://localhost:" + strconv.Itoa(port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", m.url)

	go func() {
		err := http.Serve(listener, r)
		dieOnErr(err)
	}()
}

// OpenDashboard opens the monitor page in the system browser.
func (m *Monitor) OpenDashboard() {
	if m.url == "" {
		return
	}

	if err := browser.OpenURL(m.url); err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
	}
}

type statusRsp struct {
	Timestep        uint64  `json:"timestep"`
	TPS             float64 `json:"tps"`
	WalltimeSeconds float64 `json:"walltime_seconds"`
	FinalTimestep   uint64  `json:"final_timestep"`
}

func (m *Monitor) reportStatus(w http.ResponseWriter, _ *http.Request) {
	rsp := statusRsp{}
	if m.status != nil {
		rsp = statusRsp{
			Timestep:        m.status.CurrentTimestep(),
			TPS:             m.status.TPS(),
			WalltimeSeconds: m.status.Walltime().Seconds(),
			FinalTimestep:   m.status.FinalTimestep(),
		}
	}

	writeJSON(w, rsp)
}

type operationRsp struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

func (m *Monitor) listOperations(w http.ResponseWriter, _ *http.Request) {
	rsp := make([]operationRsp, 0)

	if m.operations != nil {
		for _, t := range m.operations.Tuners() {
			rsp = append(rsp, operationRsp{t.Name(), sim.CategoryTuner.String()})
		}

		for _, u := range m.operations.Updaters() {
			rsp = append(rsp,
				operationRsp{u.Name(), sim.CategoryUpdater.String()})
		}

		if i := m.operations.Integrator(); i != nil {
			rsp = append(rsp,
				operationRsp{i.Name(), sim.CategoryIntegrator.String()})
		}

		for _, wr := range m.operations.Writers() {
			rsp = append(rsp,
				operationRsp{wr.Name(), sim.CategoryWriter.String()})
		}
	}

	writeJSON(w, rsp)
}

func (m *Monitor) listOperationDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	op := m.findOperationOr404(w, name)
	if op == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(op)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) findOperationOr404(
	w http.ResponseWriter,
	name string,
) sim.Operation {
	var op sim.Operation

	if m.operations != nil {
		for _, t := range m.operations.Tuners() {
			if t.Name() == name {
				op = t
			}
		}

		for _, u := range m.operations.Updaters() {
			if u.Name() == name {
				op = u
			}
		}

		if i := m.operations.Integrator(); i != nil && i.Name() == name {
			op = i
		}

		for _, wr := range m.operations.Writers() {
			if wr.Name() == name {
				op = wr
			}
		}
	}

	if op == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Operation not found"))
		dieOnErr(err)
	}

	return op
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	writeJSON(w, m.progressBars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memoryInfo, err := proc.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func (m *Monitor) dashboard(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, `<html><body>
<h1>stepsim monitor</h1>
<ul>
<li><a href="/api/status">status</a></li>
<li><a href="/api/operations">operations</a></li>
<li><a href="/api/progress">progress</a></li>
<li><a href="/api/resource">resource</a></li>
</ul>
</body></html>`)
}

func (m *Monitor) createProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

func (m *Monitor) completeProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// progressHook tracks run progress through scheduler hooks.
type progressHook struct {
	monitor *Monitor
	bar     *ProgressBar
}

func (h *progressHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case sim.HookPosRunStart:
		span := ctx.Item.(sim.RunSpan)
		h.bar = h.monitor.createProgressBar(
			fmt.Sprintf("run to timestep %d", span.End),
			span.End-span.Start)
	case sim.HookPosStepEnd:
		if h.bar != nil {
			h.bar.IncrementFinished(1)
		}
	case sim.HookPosRunEnd:
		if h.bar != nil {
			h.monitor.completeProgressBar(h.bar)
			h.bar = nil
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(data)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
