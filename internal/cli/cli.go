// Package cli implements the command-line interface for searchsweep.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/eunmann/searchsweep/internal/config"
	"github.com/eunmann/searchsweep/internal/logctx"
	"github.com/eunmann/searchsweep/internal/report"
	"github.com/eunmann/searchsweep/internal/server"
	"github.com/eunmann/searchsweep/pkg/export"
	"github.com/eunmann/searchsweep/pkg/logging"
	"github.com/eunmann/searchsweep/pkg/membudget"
	"github.com/eunmann/searchsweep/pkg/memdiag"
	"github.com/eunmann/searchsweep/pkg/s3publish"
	"github.com/eunmann/searchsweep/pkg/sweep"
)

const usage = `usage: searchsweep <command> [options]
commands:
  run     run one sweep, print the table, optionally export and upload
  report  print the table and summary of a Parquet export
  serve   serve sweeps over HTTP`

// DotEnvPath is the .env file loaded before environment overrides apply.
const DotEnvPath = ".env"

// Run executes the CLI with the given arguments.
func Run(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, args, os.Stdout)
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	switch args[0] {
	case "run":
		return runSweep(ctx, args[1:], stdout)
	case "report":
		return runReport(args[1:], stdout)
	case "serve":
		return runServe(ctx, args[1:])
	case "-h", "--help", "help":
		fmt.Fprintln(stdout, usage)
		return nil
	default:
		return fmt.Errorf("unknown command: %s\n%s", args[0], usage)
	}
}

// loadConfig layers defaults, the YAML file, .env and environment
// variables, and finally the flags set on fs.
func loadConfig(fs *flag.FlagSet) (config.Config, error) {
	if err := config.LoadDotEnv(DotEnvPath); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(config.FlagString(fs, config.FlagConfig))
	if err != nil {
		return cfg, err
	}
	if err := config.ApplyFlags(&cfg, fs); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func setupLogging(ctx context.Context, cfg config.Config) context.Context {
	logging.Init(cfg.Logger.Debug, cfg.Logger.Human)
	return logctx.WithLogger(ctx, *logging.L())
}

func runSweep(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	config.RegisterSweepFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(fs)
	if err != nil {
		return err
	}
	ctx = setupLogging(ctx, cfg)
	log := logctx.FromContext(ctx)

	memdiag.StartGlobal()
	defer memdiag.StopGlobal()

	budget, err := membudget.Resolve(config.FlagString(fs, config.FlagMemBudget), cfg.MemBudget)
	if err != nil {
		return err
	}
	log.Info().
		Str("budget", membudget.FormatBytes(budget.Total())).
		Str("source", string(budget.Source())).
		Msg("memory budget")

	sweepCfg, err := cfg.ToSweep()
	if err != nil {
		return err
	}

	run, sweepErr := sweep.Record(ctx, sweepCfg, cfg.Sweep.Seed, sweep.WithBudget(budget))
	ctx = logctx.WithRunID(ctx, run.ID)
	if len(run.Samples) > 0 || sweepErr == nil {
		h := report.Header{RunID: run.ID, Scenario: sweepCfg.Scenario.Label(), Elapsed: run.Elapsed}
		table, err := run.Table()
		if err != nil {
			return err
		}
		if err := report.Write(stdout, h, table, sweepCfg.MaxSize); err != nil {
			return err
		}
	}
	if sweepErr != nil {
		return fmt.Errorf("sweep: %w", sweepErr)
	}

	if cfg.Output.Path == "" {
		return nil
	}
	format, err := exportFormat(cfg.Output)
	if err != nil {
		return err
	}
	if _, err := export.WriteFile(ctx, cfg.Output.Path, format, run); err != nil {
		return err
	}

	if cfg.Output.S3URI == "" {
		return nil
	}
	client, err := s3publish.NewClient(ctx)
	if err != nil {
		return err
	}
	up, err := client.UploadFile(ctx, cfg.Output.Path, cfg.Output.S3URI, export.ContentType(cfg.Output.Path, format))
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "\nUploaded %s\n", up.URI())
	return nil
}

// exportFormat prefers the file extension when it names a known format.
func exportFormat(out config.OutputConfig) (export.Format, error) {
	if f, err := export.FormatFromPath(out.Path); err == nil {
		return f, nil
	}
	return export.ParseFormat(out.Format)
}

func runReport(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	config.RegisterLogFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: searchsweep report <file.parquet>")
	}
	cfg := config.Default()
	if err := config.ApplyFlags(&cfg, fs); err != nil {
		return err
	}
	logging.Init(cfg.Logger.Debug, cfg.Logger.Human)

	imp, err := export.ReadParquet(fs.Arg(0))
	if err != nil {
		return err
	}
	return report.Write(stdout, report.Header{RunID: imp.RunID, Scenario: imp.Scenario}, imp.Table, imp.MaxSize)
}

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	config.RegisterSweepFlags(fs)
	fs.String("addr", config.Default().Server.Addr, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(fs)
	if err != nil {
		return err
	}
	ctx = setupLogging(ctx, cfg)

	budget, err := membudget.Resolve(config.FlagString(fs, config.FlagMemBudget), cfg.MemBudget)
	if err != nil {
		return err
	}
	defaults, err := cfg.ToSweep()
	if err != nil {
		return err
	}

	srv := server.New(cfg.Server.Addr, defaults,
		server.WithBudget(budget),
		server.WithLogger(logctx.FromContext(ctx)),
	)
	return srv.ListenAndServe(ctx)
}
