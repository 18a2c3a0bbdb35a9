// Package config loads searchsweep settings from layered sources.
//
// Precedence, lowest first: Default, YAML file, .env file and SEARCHSWEEP_*
// environment variables, command-line flags. The memory budget is resolved
// separately by membudget.Resolve, which also consults SEARCHSWEEP_MEM_BUDGET.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/eunmann/searchsweep/pkg/export"
	"github.com/eunmann/searchsweep/pkg/logging"
	"github.com/eunmann/searchsweep/pkg/scenario"
	"github.com/eunmann/searchsweep/pkg/sweep"
)

// ErrInvalidConfig indicates a setting that cannot be parsed or is out of bounds.
var ErrInvalidConfig = errors.New("invalid config")

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SEARCHSWEEP_"

// Config is the root configuration.
type Config struct {
	Sweep     SweepConfig  `yaml:"sweep"`
	Output    OutputConfig `yaml:"output"`
	Logger    LoggerConfig `yaml:"logger"`
	Server    ServerConfig `yaml:"server"`
	MemBudget string       `yaml:"mem_budget"`
}

type SweepConfig struct {
	MaxSize        int    `yaml:"max_size"`
	Step           int    `yaml:"step"`
	Scenario       string `yaml:"scenario"`
	RecursionLimit int    `yaml:"recursion_limit"`
	Seed           int64  `yaml:"seed"`
	Verify         bool   `yaml:"verify"`
}

type OutputConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
	S3URI  string `yaml:"s3_uri"`
}

type LoggerConfig struct {
	Debug bool `yaml:"debug"`
	Human bool `yaml:"human"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Sweep: SweepConfig{
			MaxSize:  2000,
			Step:     200,
			Scenario: scenario.Worst.String(),
		},
		Output: OutputConfig{
			Format: string(export.FormatParquet),
		},
		Logger: LoggerConfig{
			Human: true,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// LoadFile overlays the YAML file at path onto Default. A missing file yields
// Default; an empty path skips the file entirely.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.L().Info().Str("path", path).Msg("config file not found, using defaults")
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parse %s: %w", ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads the YAML file at path and applies environment overrides.
func Load(path string) (Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with SEARCHSWEEP_* variables found through lookup.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for _, b := range bindings {
		v, ok := lookup(EnvPrefix + b.env)
		if !ok {
			continue
		}
		if err := b.set(cfg, strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("%w: %s%s=%q: %w", ErrInvalidConfig, EnvPrefix, b.env, v, err)
		}
	}
	return nil
}

// ToSweep converts the sweep section into a validated sweep.Config.
func (c Config) ToSweep() (sweep.Config, error) {
	sc, err := scenario.Parse(c.Sweep.Scenario)
	if err != nil {
		return sweep.Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	out := sweep.Config{
		MaxSize:        c.Sweep.MaxSize,
		Step:           c.Sweep.Step,
		Scenario:       sc,
		RecursionLimit: c.Sweep.RecursionLimit,
		Verify:         c.Sweep.Verify,
	}
	if err := out.Validate(); err != nil {
		return sweep.Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return out, nil
}

// Validate checks the sweep bounds and output format.
func (c Config) Validate() error {
	if _, err := c.ToSweep(); err != nil {
		return err
	}
	if c.Output.Format != "" {
		if _, err := export.ParseFormat(c.Output.Format); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	if c.Output.S3URI != "" && c.Output.Path == "" {
		return fmt.Errorf("%w: s3 upload requires an output path", ErrInvalidConfig)
	}
	return nil
}

// binding maps one setting to its environment suffix and flag name.
type binding struct {
	env  string
	flag string
	set  func(*Config, string) error
}

var bindings = []binding{
	{"MAX", "max", func(c *Config, v string) error { return setInt(&c.Sweep.MaxSize, v) }},
	{"STEP", "step", func(c *Config, v string) error { return setInt(&c.Sweep.Step, v) }},
	{"SCENARIO", "scenario", func(c *Config, v string) error { c.Sweep.Scenario = v; return nil }},
	{"RECURSION_LIMIT", "recursion-limit", func(c *Config, v string) error { return setInt(&c.Sweep.RecursionLimit, v) }},
	{"SEED", "seed", func(c *Config, v string) error { return setInt64(&c.Sweep.Seed, v) }},
	{"VERIFY", "verify", func(c *Config, v string) error { return setBool(&c.Sweep.Verify, v) }},
	{"OUT", "out", func(c *Config, v string) error { c.Output.Path = v; return nil }},
	{"FORMAT", "format", func(c *Config, v string) error { c.Output.Format = v; return nil }},
	{"S3_URI", "s3-uri", func(c *Config, v string) error { c.Output.S3URI = v; return nil }},
	{"DEBUG", "debug", func(c *Config, v string) error { return setBool(&c.Logger.Debug, v) }},
	{"HUMAN", "human", func(c *Config, v string) error { return setBool(&c.Logger.Human, v) }},
	{"ADDR", "addr", func(c *Config, v string) error { c.Server.Addr = v; return nil }},
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func setInt64(dst *int64, v string) error {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func setBool(dst *bool, v string) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}
