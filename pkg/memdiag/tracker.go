package memdiag

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	// Registers pprof handlers on DefaultServeMux for the pprof HTTP server.
	_ "net/http/pprof"

	"github.com/eunmann/searchsweep/pkg/humanfmt"
	"github.com/eunmann/searchsweep/pkg/logging"
)

const (
	envDebug         = "SEARCHSWEEP_MEM_DEBUG"
	envPprof         = "SEARCHSWEEP_MEM_PPROF"
	defaultPprofAddr = ":6060"
)

// Config holds configuration for the tracker.
type Config struct {
	// Enabled controls whether periodic memory logging is active.
	Enabled bool

	// PprofAddr starts a pprof server on this address when non-empty.
	PprofAddr string

	LogInterval time.Duration
}

// DefaultConfig reads the tracker configuration from the environment.
func DefaultConfig() Config {
	cfg := Config{
		Enabled:     os.Getenv(envDebug) == "1",
		LogInterval: 5 * time.Second,
	}
	switch v := os.Getenv(envPprof); v {
	case "", "0":
	case "1":
		cfg.PprofAddr = defaultPprofAddr
	default:
		cfg.PprofAddr = v
	}
	return cfg
}

// Tracker logs process memory between measurements. Samples that would land
// inside an open trace are skipped, since logging allocates and would inflate
// the traced call's figure.
type Tracker struct {
	config  Config
	stopCh  chan struct{}
	doneCh  chan struct{}
	started atomic.Bool
	skipped atomic.Int64
	pprof   *http.Server

	mu            sync.Mutex
	phase         string
	peakFootprint uint64
}

// NewTracker creates a new memory tracker.
func NewTracker(config Config) *Tracker {
	return &Tracker{
		config: config,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
		phase:  "init",
	}
}

// Start begins periodic memory logging if enabled.
func (t *Tracker) Start() {
	if !t.config.Enabled {
		return
	}
	if !t.started.CompareAndSwap(false, true) {
		return
	}

	log := logging.L()
	log.Info().Dur("interval", t.config.LogInterval).Msg("memory diagnostics enabled")

	if t.config.PprofAddr != "" {
		t.pprof = &http.Server{Addr: t.config.PprofAddr, ReadHeaderTimeout: time.Second}
		go func() {
			log.Info().Str("addr", t.config.PprofAddr).Msg("starting pprof server")
			if err := t.pprof.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("pprof server failed")
			}
		}()
	}

	go t.logLoop()
}

// Stop stops the tracker and its pprof server.
func (t *Tracker) Stop() {
	if !t.started.Load() {
		return
	}
	close(t.stopCh)
	<-t.doneCh

	if t.pprof != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = t.pprof.Shutdown(ctx)
	}
}

// SetPhase names what the sweep is doing, e.g. "size=400".
func (t *Tracker) SetPhase(phase string) {
	t.mu.Lock()
	t.phase = phase
	t.mu.Unlock()

	t.LogNow("phase_change")
}

// LogNow logs current memory stats immediately, unless disabled or a trace is
// open. The sample holds the trace lock until it is logged, so a trace
// cannot open partway through and count the tracker's allocations.
func (t *Tracker) LogNow(reason string) {
	if !t.config.Enabled {
		return
	}
	if !untraced(func() { t.logStats(reason) }) {
		t.skipped.Add(1)
	}
}

func (t *Tracker) logStats(reason string) {
	stats := Read()

	t.mu.Lock()
	phase := t.phase
	t.peakFootprint = max(t.peakFootprint, stats.Footprint())
	peak := t.peakFootprint
	t.mu.Unlock()

	logging.L().Debug().
		Str("reason", reason).
		Str("phase", phase).
		Str("heap_alloc", humanfmt.Bytes(int64(stats.HeapAlloc))).
		Str("stack_inuse", humanfmt.Bytes(int64(stats.StackInuse))).
		Str("sys_total", humanfmt.Bytes(int64(stats.Sys))).
		Str("peak_footprint", humanfmt.Bytes(int64(peak))).
		Uint32("num_gc", stats.NumGC).
		Int64("skipped_in_trace", t.skipped.Load()).
		Msg("memory stats")
}

// PeakFootprint returns the largest heap plus stack footprint logged so far.
func (t *Tracker) PeakFootprint() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.peakFootprint
}

// Skipped returns how many samples fell inside an open trace.
func (t *Tracker) Skipped() int64 {
	return t.skipped.Load()
}

func (t *Tracker) logLoop() {
	defer close(t.doneCh)

	ticker := time.NewTicker(t.config.LogInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopCh:
			t.LogNow("shutdown")
			return
		case <-ticker.C:
			t.LogNow("periodic")
		}
	}
}

var (
	globalTracker *Tracker
	globalOnce    sync.Once
)

// Global returns the process tracker, configured from the environment on first use.
func Global() *Tracker {
	globalOnce.Do(func() {
		globalTracker = NewTracker(DefaultConfig())
	})
	return globalTracker
}

// StartGlobal starts the process tracker.
func StartGlobal() {
	Global().Start()
}

// StopGlobal stops the process tracker if it was created.
func StopGlobal() {
	if globalTracker != nil {
		globalTracker.Stop()
	}
}
