package config

import (
	"flag"
	"fmt"
)

// Flag names that are not plain overrides of a Config field.
const (
	FlagConfig    = "config"
	FlagMemBudget = "mem-budget"
)

// RegisterSweepFlags defines the sweep, output, and logging flags on fs. Flag
// defaults are documentation only: ApplyFlags copies just the flags that were
// set, so unset flags never mask file or environment values.
func RegisterSweepFlags(fs *flag.FlagSet) {
	def := Default()
	fs.String(FlagConfig, "", "path to a YAML config file")
	fs.Int("max", def.Sweep.MaxSize, "largest dataset size")
	fs.Int("step", def.Sweep.Step, "size increment, and the first size")
	fs.String("scenario", def.Sweep.Scenario, "target scenario: worst, best, or average")
	fs.Int("recursion-limit", 0, "recursive search depth limit (0 = max + headroom)")
	fs.Int64("seed", 0, "random seed for the average scenario (0 = unseeded)")
	fs.Bool("verify", false, "cross-check search results against a perfect-hash index")
	fs.String("out", "", "export path; .parquet, .csv, or .json, with .zst appended to compress csv or json")
	fs.String("format", def.Output.Format, "export format: parquet, csv, or json")
	fs.String("s3-uri", "", "upload the export to this s3://bucket/key")
	fs.String(FlagMemBudget, "", "memory budget for datasets (e.g. 512MiB, 4GiB)")
	RegisterLogFlags(fs)
}

// RegisterLogFlags defines the logging flags on fs.
func RegisterLogFlags(fs *flag.FlagSet) {
	def := Default()
	fs.Bool("debug", def.Logger.Debug, "enable debug logging")
	fs.Bool("human", def.Logger.Human, "human-readable console logs instead of JSON")
}

// ApplyFlags overrides cfg with every flag explicitly set on fs.
func ApplyFlags(cfg *Config, fs *flag.FlagSet) error {
	byFlag := make(map[string]binding, len(bindings))
	for _, b := range bindings {
		byFlag[b.flag] = b
	}

	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		b, ok := byFlag[f.Name]
		if !ok {
			return
		}
		if setErr := b.set(cfg, f.Value.String()); setErr != nil {
			err = fmt.Errorf("%w: --%s=%q: %w", ErrInvalidConfig, f.Name, f.Value.String(), setErr)
		}
	})
	return err
}

// FlagString returns the value of the named string flag, or "" if fs does not
// define it.
func FlagString(fs *flag.FlagSet, name string) string {
	f := fs.Lookup(name)
	if f == nil {
		return ""
	}
	return f.Value.String()
}
