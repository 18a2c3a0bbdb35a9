package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eunmann/searchsweep/pkg/scenario"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func mapLookup(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	sc, err := cfg.ToSweep()
	require.NoError(t, err)
	assert.Equal(t, 2000, sc.MaxSize)
	assert.Equal(t, 200, sc.Step)
	assert.Equal(t, scenario.Worst, sc.Scenario)
}

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	path := writeFile(t, "sweep.yaml", `
sweep:
  max_size: 5000
  scenario: best
output:
  path: out/run.csv
  format: csv
mem_budget: 1GiB
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Sweep.MaxSize)
	assert.Equal(t, 200, cfg.Sweep.Step, "unset keys keep defaults")
	assert.Equal(t, "best", cfg.Sweep.Scenario)
	assert.Equal(t, "out/run.csv", cfg.Output.Path)
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.Equal(t, "1GiB", cfg.MemBudget)
	assert.True(t, cfg.Logger.Human)
}

func TestLoadFileRejectsBadYAML(t *testing.T) {
	path := writeFile(t, "bad.yaml", "sweep:\n  max_size: [1, 2\n")
	_, err := LoadFile(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := ApplyEnv(&cfg, mapLookup(map[string]string{
		"SEARCHSWEEP_MAX":      "3000",
		"SEARCHSWEEP_SCENARIO": "average",
		"SEARCHSWEEP_VERIFY":   "true",
		"SEARCHSWEEP_DEBUG":    "1",
		"SEARCHSWEEP_ADDR":     ":9090",
		"UNRELATED":            "x",
	}))
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Sweep.MaxSize)
	assert.Equal(t, "average", cfg.Sweep.Scenario)
	assert.True(t, cfg.Sweep.Verify)
	assert.True(t, cfg.Logger.Debug)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestApplyEnvInvalid(t *testing.T) {
	cfg := Default()
	err := ApplyEnv(&cfg, mapLookup(map[string]string{"SEARCHSWEEP_STEP": "ten"}))
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "SEARCHSWEEP_STEP")
}

func TestPrecedence(t *testing.T) {
	path := writeFile(t, "sweep.yaml", "sweep:\n  max_size: 5000\n  step: 500\n  scenario: best\n")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.NoError(t, ApplyEnv(&cfg, mapLookup(map[string]string{
		"SEARCHSWEEP_MAX":  "4000",
		"SEARCHSWEEP_STEP": "400",
	})))

	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	RegisterSweepFlags(fs)
	require.NoError(t, fs.Parse([]string{"--max", "3000"}))
	require.NoError(t, ApplyFlags(&cfg, fs))

	assert.Equal(t, 3000, cfg.Sweep.MaxSize, "flag beats env")
	assert.Equal(t, 400, cfg.Sweep.Step, "env beats file")
	assert.Equal(t, "best", cfg.Sweep.Scenario, "file beats default")
	assert.Equal(t, "parquet", cfg.Output.Format, "default survives")
}

func TestApplyFlagsIgnoresUnsetFlags(t *testing.T) {
	cfg := Default()
	cfg.Sweep.Scenario = "best"

	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	RegisterSweepFlags(fs)
	require.NoError(t, fs.Parse([]string{"--verify", "--out", "x.json", "--mem-budget", "1GiB"}))
	require.NoError(t, ApplyFlags(&cfg, fs))

	assert.Equal(t, "best", cfg.Sweep.Scenario)
	assert.True(t, cfg.Sweep.Verify)
	assert.Equal(t, "x.json", cfg.Output.Path)
	assert.Empty(t, cfg.MemBudget, "mem budget is resolved separately")
	assert.Equal(t, "1GiB", FlagString(fs, FlagMemBudget))
	assert.Empty(t, FlagString(fs, "nope"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"step above max", func(c *Config) { c.Sweep.Step = c.Sweep.MaxSize + 1 }},
		{"max too large", func(c *Config) { c.Sweep.MaxSize = 2_000_000 }},
		{"zero step", func(c *Config) { c.Sweep.Step = 0 }},
		{"bad scenario", func(c *Config) { c.Sweep.Scenario = "median" }},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }},
		{"s3 without path", func(c *Config) { c.Output.S3URI = "s3://b/k" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))

	path := writeFile(t, ".env", "SEARCHSWEEP_TEST_DOTENV=from-file\nSEARCHSWEEP_TEST_DOTENV_KEEP=from-file\n")
	t.Setenv("SEARCHSWEEP_TEST_DOTENV_KEEP", "from-env")
	require.NoError(t, LoadDotEnv(path))
	t.Cleanup(func() { os.Unsetenv("SEARCHSWEEP_TEST_DOTENV") })

	assert.Equal(t, "from-file", os.Getenv("SEARCHSWEEP_TEST_DOTENV"))
	assert.Equal(t, "from-env", os.Getenv("SEARCHSWEEP_TEST_DOTENV_KEEP"))
}
