// Package sweep runs the measurement loop: for each size in an arithmetic
// progression it generates a dataset, selects a target, and measures the
// iterative and recursive searches for time and peak memory.
//
// A sweep is strictly sequential. Steps never overlap, since concurrent work
// would perturb the timings being recorded.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/eunmann/searchsweep/internal/logctx"
	"github.com/eunmann/searchsweep/pkg/dataset"
	"github.com/eunmann/searchsweep/pkg/logging"
	"github.com/eunmann/searchsweep/pkg/membudget"
	"github.com/eunmann/searchsweep/pkg/memdiag"
	"github.com/eunmann/searchsweep/pkg/oracle"
	"github.com/eunmann/searchsweep/pkg/results"
	"github.com/eunmann/searchsweep/pkg/scenario"
	"github.com/eunmann/searchsweep/pkg/search"
)

// ErrVerification indicates a search returned a wrong index. It aborts the sweep.
var ErrVerification = errors.New("search verification failed")

// Progress is reported once per recorded step.
type Progress struct {
	Step         int
	Total        int
	Size         int
	Fraction     float64
	Elapsed      time.Duration
	ETA          time.Duration
	RecursiveGap bool
}

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithRand sets the random source of the Average scenario.
func WithRand(rng *rand.Rand) Option {
	return func(s *Sweeper) { s.rng = rng }
}

// WithProgress registers a callback invoked after every recorded step.
func WithProgress(fn func(Progress)) Option {
	return func(s *Sweeper) { s.onProgress = fn }
}

// WithStateHook registers a callback invoked on every state transition with
// the size being processed (0 for Idle and Done).
func WithStateHook(fn func(State, int)) Option {
	return func(s *Sweeper) { s.onState = fn }
}

// WithBudget guards each step's dataset allocation with b.
func WithBudget(b *membudget.Budget) Option {
	return func(s *Sweeper) { s.budget = b }
}

// WithTracer replaces the memory tracer.
func WithTracer(t memdiag.Tracer) Option {
	return func(s *Sweeper) { s.tracer = t }
}

// Sweeper executes one configured sweep.
type Sweeper struct {
	cfg        Config
	limit      int
	algs       map[search.Algorithm]search.Func
	rng        *rand.Rand
	onProgress func(Progress)
	onState    func(State, int)
	budget     *membudget.Budget
	tracer     memdiag.Tracer
	state      State
}

// New validates cfg and returns a Sweeper.
func New(cfg Config, opts ...Option) (*Sweeper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Sweeper{
		cfg:    cfg,
		limit:  cfg.EffectiveRecursionLimit(),
		tracer: memdiag.DefaultTracer,
	}
	s.algs = search.Algorithms(s.limit)
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the sweep's configuration.
func (s *Sweeper) Config() Config {
	return s.cfg
}

// State returns the current state.
func (s *Sweeper) State() State {
	return s.state
}

// Run performs the sweep and returns the frozen result table. On an
// unexpected failure it returns the samples recorded so far together with
// the error. Recursion-limit failures are recorded as gaps, not errors.
// ctx is only checked between steps.
func (s *Sweeper) Run(ctx context.Context) (*results.Table, error) {
	sizes := Sizes(s.cfg.MaxSize, s.cfg.Step)
	table := results.NewTable(len(sizes))
	defer table.Freeze()

	ctx = logctx.WithScenario(ctx, s.cfg.Scenario.String())
	log := logctx.FromContext(ctx).With().Str("phase", "sweep").Logger()

	if s.budget != nil {
		if need := dataset.Footprint(s.cfg.MaxSize); !s.budget.Fits(need) {
			return table, fmt.Errorf("largest dataset needs %s, budget is %s: %w",
				membudget.FormatBytes(need), membudget.FormatBytes(s.budget.Total()), membudget.ErrBudgetExceeded)
		}
	}

	s.enter(Idle, 0)
	log.Info().
		Int("max_size", s.cfg.MaxSize).
		Int("step", s.cfg.Step).
		Int("steps", len(sizes)).
		Int("recursion_limit", s.limit).
		Bool("verify", s.cfg.Verify).
		Msg("sweep started")

	selector := scenario.NewSelector(s.cfg.Scenario, s.rng)
	tracker := logging.NewProgressTracker("sweep", sizes)
	started := time.Now()

	for i, n := range sizes {
		if err := ctx.Err(); err != nil {
			return table, fmt.Errorf("sweep stopped before size %d: %w", n, err)
		}

		logging.StepStarted(log, "sweep", n, int64(i), int64(len(sizes)))
		memdiag.Global().SetPhase(fmt.Sprintf("sweep n=%d", n))
		stepStart := time.Now()

		sample, err := s.step(logctx.WithSize(ctx, n), selector, n)
		if err != nil {
			return table, fmt.Errorf("size %d: %w", n, err)
		}
		if err := table.Append(sample); err != nil {
			return table, fmt.Errorf("size %d: %w", n, err)
		}
		s.enter(Recorded, n)

		elapsed := time.Since(stepStart)
		tracker.RecordCompletion(elapsed)
		logStep(log, sample, elapsed, tracker)

		if s.onProgress != nil {
			s.onProgress(Progress{
				Step:         i + 1,
				Total:        len(sizes),
				Size:         n,
				Fraction:     tracker.Fraction(),
				Elapsed:      time.Since(started),
				ETA:          tracker.ETA(),
				RecursiveGap: !sample.HasRecursive(),
			})
		}
	}

	s.enter(Done, 0)
	ev := logging.PhaseComplete(log, "sweep", time.Since(started)).
		Count("samples", int64(table.Len()))
	if s.budget != nil {
		ev.BytesUint64("budget_peak", s.budget.Peak())
	}
	ev.Log("sweep finished")

	return table, nil
}

func (s *Sweeper) step(ctx context.Context, selector *scenario.Selector, n int) (results.Sample, error) {
	log := logctx.FromContext(ctx)
	s.enter(Preparing, n)

	if s.budget != nil {
		res, err := s.budget.Reserve(dataset.Footprint(n))
		if err != nil {
			return results.Sample{}, err
		}
		defer res.Release()
	}

	seq, err := dataset.Generate(n)
	if err != nil {
		return results.Sample{}, err
	}
	target, err := selector.Select(seq)
	if err != nil {
		return results.Sample{}, fmt.Errorf("select target: %w", err)
	}

	sample := results.Sample{Size: n, Target: target}

	s.enter(MeasuringIterative, n)
	it, itDur, itPeak, err := s.measure(search.AlgorithmIterative, seq, target)
	if err != nil {
		return results.Sample{}, fmt.Errorf("iterative: %w", err)
	}
	sample.IterativeIndex = it.Index
	sample.IterativeComparisons = it.Comparisons
	sample.IterativeDuration = itDur
	sample.IterativePeakBytes = itPeak

	s.enter(MeasuringRecursive, n)
	rec, recDur, recPeak, err := s.measure(search.AlgorithmRecursive, seq, target)
	switch {
	case errors.Is(err, search.ErrRecursionLimitExceeded):
		log.Debug().Err(err).Int("recursion_limit", s.limit).Msg("recursive measurement skipped")
	case err != nil:
		return results.Sample{}, fmt.Errorf("recursive: %w", err)
	default:
		sample.RecursiveIndex = &rec.Index
		sample.RecursiveComparisons = &rec.Comparisons
		sample.RecursiveDuration = &recDur
		sample.RecursivePeakBytes = &recPeak
	}

	if err := s.verify(seq, sample); err != nil {
		return results.Sample{}, err
	}
	return sample, nil
}

// measure times one call of alg, then traces a second call for memory.
// The memory figure therefore belongs to a different invocation than the
// duration; tracing overhead would otherwise skew the timing. A limit
// failure on either call is returned as is.
func (s *Sweeper) measure(alg search.Algorithm, seq []int64, target int64) (search.Result, time.Duration, uint64, error) {
	fn := s.algs[alg]

	start := time.Now()
	res, err := fn(seq, target)
	elapsed := time.Since(start)
	if err != nil {
		return search.Result{}, 0, 0, err
	}

	peak, err := s.tracer.Measure(func() error {
		_, err := fn(seq, target)
		return err
	})
	if err != nil {
		return search.Result{}, 0, 0, err
	}
	return res, elapsed, peak, nil
}

func (s *Sweeper) verify(seq []int64, sample results.Sample) error {
	if sample.RecursiveIndex != nil && *sample.RecursiveIndex != sample.IterativeIndex {
		return fmt.Errorf("%w: iterative index %d, recursive index %d",
			ErrVerification, sample.IterativeIndex, *sample.RecursiveIndex)
	}
	if !s.cfg.Verify {
		return nil
	}

	idx, err := oracle.Build(seq)
	if err != nil {
		return fmt.Errorf("build oracle: %w", err)
	}
	if err := idx.Check(sample.Target, sample.IterativeIndex); err != nil {
		return fmt.Errorf("%w: iterative: %w", ErrVerification, err)
	}
	if sample.RecursiveIndex != nil {
		if err := idx.Check(sample.Target, *sample.RecursiveIndex); err != nil {
			return fmt.Errorf("%w: recursive: %w", ErrVerification, err)
		}
	}
	return nil
}

func (s *Sweeper) enter(state State, n int) {
	s.state = state
	if s.onState != nil {
		s.onState(state, n)
	}
}

func logStep(log zerolog.Logger, sample results.Sample, elapsed time.Duration, tracker *logging.ProgressTracker) {
	ev := logging.StepComplete(log, "sweep", elapsed).
		Int("size", sample.Size).
		Int64("target", sample.Target).
		Int("iterative_index", sample.IterativeIndex).
		Duration("iterative", sample.IterativeDuration).
		BytesUint64("iterative_peak", sample.IterativePeakBytes).
		Bool("recursive_gap", !sample.HasRecursive())
	if sample.HasRecursive() {
		ev.Duration("recursive", *sample.RecursiveDuration).
			BytesUint64("recursive_peak", *sample.RecursivePeakBytes)
	}
	ev.ProgressFromTracker(tracker).LogDebug("step recorded")
}
