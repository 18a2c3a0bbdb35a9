package membudget

import (
	"fmt"
	"os"
)

// EnvVar names the environment variable holding a budget such as "4GiB".
const EnvVar = "SEARCHSWEEP_MEM_BUDGET"

// Resolve picks the budget from, in priority order: the CLI flag value, the
// environment, the config file value, and finally 50% of system RAM.
func Resolve(cliValue, configValue string) (*Budget, error) {
	if cliValue != "" {
		total, err := ParseHumanSize(cliValue)
		if err != nil {
			return nil, fmt.Errorf("invalid --mem-budget %q: %w", cliValue, err)
		}
		return New(Config{TotalBytes: total, Source: BudgetSourceCLI}), nil
	}

	if envValue := os.Getenv(EnvVar); envValue != "" {
		total, err := ParseHumanSize(envValue)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvVar, envValue, err)
		}
		return New(Config{TotalBytes: total, Source: BudgetSourceEnv}), nil
	}

	if configValue != "" {
		total, err := ParseHumanSize(configValue)
		if err != nil {
			return nil, fmt.Errorf("invalid mem_budget %q in config: %w", configValue, err)
		}
		return New(Config{TotalBytes: total, Source: BudgetSourceConfig}), nil
	}

	return NewFromSystemRAM(), nil
}
