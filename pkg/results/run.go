package results

import (
	"runtime"
	"time"

	"github.com/google/uuid"
)

// Host describes the machine a run was measured on.
type Host struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	NumCPU        int    `json:"num_cpu"`
	GoVersion     string `json:"go_version"`
	TotalMemBytes uint64 `json:"total_mem_bytes"`
	AvailMemBytes uint64 `json:"avail_mem_bytes,omitempty"`
	MemReliable   bool   `json:"mem_reliable"`
}

// CurrentHost fills Host from the runtime. Memory fields are left to the caller.
func CurrentHost() Host {
	return Host{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		NumCPU:    runtime.NumCPU(),
		GoVersion: runtime.Version(),
	}
}

// RunConfig echoes the inputs of a sweep.
type RunConfig struct {
	MaxSize        int    `json:"max_size"`
	Step           int    `json:"step"`
	Scenario       string `json:"scenario"`
	RecursionLimit int    `json:"recursion_limit"`
	Seed           int64  `json:"seed,omitempty"`
}

// Run is a completed sweep with its metadata.
type Run struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Config    RunConfig     `json:"config"`
	Host      Host          `json:"host"`
	Summary   Summary       `json:"summary"`
	Samples   []Sample      `json:"samples"`
}

// NewRun wraps a table with a fresh run ID.
func NewRun(cfg RunConfig, host Host, started time.Time, elapsed time.Duration, table *Table) Run {
	return Run{
		ID:        uuid.NewString(),
		StartedAt: started.UTC(),
		Elapsed:   elapsed,
		Config:    cfg,
		Host:      host,
		Summary:   table.Summary(cfg.MaxSize),
		Samples:   table.Rows(),
	}
}

// Table rebuilds a frozen table from the run's samples.
func (r Run) Table() (*Table, error) {
	return FromSamples(r.Samples)
}
