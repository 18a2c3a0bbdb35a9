// Package server exposes sweeps over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/eunmann/searchsweep/internal/logctx"
	"github.com/eunmann/searchsweep/pkg/membudget"
	"github.com/eunmann/searchsweep/pkg/results"
	"github.com/eunmann/searchsweep/pkg/scenario"
	"github.com/eunmann/searchsweep/pkg/sweep"
)

const (
	contentTypeJSON        = "application/json"
	defaultShutdownTimeout = 5 * time.Second
)

// Recorder runs one sweep and returns the recorded run.
type Recorder func(ctx context.Context, cfg sweep.Config, seed int64) (results.Run, error)

// Server answers sweep requests. Sweeps run one at a time; memory tracing is
// process-wide, so a request that arrives during a sweep gets 409.
type Server struct {
	defaults sweep.Config
	record   Recorder
	mu       sync.Mutex
	log      zerolog.Logger

	httpServer *http.Server
	addr       string
}

// Option configures a Server.
type Option func(*Server)

// WithRecorder replaces the function that executes sweeps.
func WithRecorder(r Recorder) Option {
	return func(s *Server) { s.record = r }
}

// WithBudget guards every sweep's datasets with b.
func WithBudget(b *membudget.Budget) Option {
	return func(s *Server) {
		s.record = func(ctx context.Context, cfg sweep.Config, seed int64) (results.Run, error) {
			return sweep.Record(ctx, cfg, seed, sweep.WithBudget(b))
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New creates a server listening on addr. defaults fills query parameters a
// request omits.
func New(addr string, defaults sweep.Config, opts ...Option) *Server {
	s := &Server{
		defaults: defaults,
		record: func(ctx context.Context, cfg sweep.Config, seed int64) (results.Run, error) {
			return sweep.Record(ctx, cfg, seed)
		},
		log:  logctx.DefaultLogger(),
		addr: addr,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.handleHealth)
	r.Get("/api/sweep", s.handleSweep)
	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info().Str("addr", s.addr).Msg("HTTP server started")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		s.log.Info().Msg("HTTP server stopped")
		return nil
	})
	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, NewOKResponse())
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	cfg, seed, err := s.parseSweep(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, NewErrorResponse(err.Error()))
		return
	}

	if !s.mu.TryLock() {
		s.writeJSON(w, http.StatusConflict, NewErrorResponse("a sweep is already running"))
		return
	}
	defer s.mu.Unlock()

	ctx := logctx.WithLogger(r.Context(), s.log)
	run, err := s.record(ctx, cfg, seed)
	if err != nil {
		s.log.Error().Err(err).Int("samples", len(run.Samples)).Msg("sweep failed")
		s.writeJSON(w, http.StatusInternalServerError, NewErrorResponse(err.Error()))
		return
	}

	s.log.Info().
		Str("run_id", run.ID).
		Int("samples", len(run.Samples)).
		Dur("elapsed", run.Elapsed).
		Msg("sweep served")
	s.writeJSON(w, http.StatusOK, run)
}

// parseSweep reads max, step, scenario, recursion_limit, verify, and seed
// from the query, falling back to the server defaults.
func (s *Server) parseSweep(r *http.Request) (sweep.Config, int64, error) {
	q := r.URL.Query()
	cfg := s.defaults

	intParam := func(name string, dst *int) error {
		v := q.Get(name)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", name, v)
		}
		*dst = n
		return nil
	}
	if err := intParam("max", &cfg.MaxSize); err != nil {
		return cfg, 0, err
	}
	if err := intParam("step", &cfg.Step); err != nil {
		return cfg, 0, err
	}
	if err := intParam("recursion_limit", &cfg.RecursionLimit); err != nil {
		return cfg, 0, err
	}

	if v := q.Get("scenario"); v != "" {
		sc, err := scenario.Parse(v)
		if err != nil {
			return cfg, 0, err
		}
		cfg.Scenario = sc
	}
	if v := q.Get("verify"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, 0, fmt.Errorf("verify: %q is not a boolean", v)
		}
		cfg.Verify = b
	}

	var seed int64
	if v := q.Get("seed"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, 0, fmt.Errorf("seed: %q is not an integer", v)
		}
		seed = n
	}

	if err := cfg.Validate(); err != nil {
		return cfg, 0, err
	}
	return cfg, seed, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warn().Err(err).Msg("error encoding response")
	}
}
