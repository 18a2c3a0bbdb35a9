package sweep

import (
	"context"
	"math/rand"
	"time"

	"github.com/eunmann/searchsweep/internal/logctx"
	"github.com/eunmann/searchsweep/pkg/results"
	"github.com/eunmann/searchsweep/pkg/sysmem"
)

// Record runs a sweep and wraps its table in a results.Run with host and
// config metadata. A non-zero seed makes the Average scenario reproducible.
// On failure the returned Run holds the partial table.
func Record(ctx context.Context, cfg Config, seed int64, opts ...Option) (results.Run, error) {
	if seed != 0 {
		opts = append(opts, WithRand(rand.New(rand.NewSource(seed))))
	}

	s, err := New(cfg, opts...)
	if err != nil {
		return results.Run{}, err
	}

	started := time.Now()
	table, err := s.Run(ctx)
	run := results.NewRun(RunConfig(cfg, seed), Host(), started, time.Since(started), table)

	log := logctx.FromContext(ctx)
	log.Debug().
		Str("run_id", run.ID).
		Int("samples", len(run.Samples)).
		Msg("run recorded")
	return run, err
}

// RunConfig echoes cfg for run metadata.
func RunConfig(cfg Config, seed int64) results.RunConfig {
	return results.RunConfig{
		MaxSize:        cfg.MaxSize,
		Step:           cfg.Step,
		Scenario:       cfg.Scenario.String(),
		RecursionLimit: cfg.EffectiveRecursionLimit(),
		Seed:           seed,
	}
}

// Host describes the current machine, including detected and free RAM.
func Host() results.Host {
	h := results.CurrentHost()
	mem := sysmem.Total()
	h.TotalMemBytes = mem.TotalBytes
	h.AvailMemBytes = mem.AvailableBytes
	h.MemReliable = mem.Reliable
	return h
}
