package membudget

import (
	"errors"
	"strings"
	"testing"
)

func TestBudgetBasic(t *testing.T) {
	budget := New(Config{
		TotalBytes: 1000,
		Source:     BudgetSourceCLI,
	})

	if budget.Total() != 1000 {
		t.Errorf("Total() = %d, want 1000", budget.Total())
	}
	if budget.Source() != BudgetSourceCLI {
		t.Errorf("Source() = %s, want %s", budget.Source(), BudgetSourceCLI)
	}
	if !budget.Fits(1000) || budget.Fits(1001) {
		t.Error("Fits() boundary wrong")
	}
}

func TestReserveRelease(t *testing.T) {
	budget := New(Config{TotalBytes: 1000})

	first, err := budget.Reserve(600)
	if err != nil {
		t.Fatalf("Reserve(600) error: %v", err)
	}
	if first.Bytes() != 600 {
		t.Errorf("Bytes() = %d, want 600", first.Bytes())
	}
	if budget.InUse() != 600 || budget.Available() != 400 {
		t.Errorf("InUse=%d Available=%d, want 600/400", budget.InUse(), budget.Available())
	}

	if _, err := budget.Reserve(500); !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("Reserve(500) error = %v, want ErrBudgetExceeded", err)
	}
	if budget.InUse() != 600 {
		t.Errorf("failed reservation changed InUse to %d", budget.InUse())
	}

	first.Release()
	if budget.InUse() != 0 {
		t.Errorf("InUse after release = %d, want 0", budget.InUse())
	}

	// A second release is a no-op.
	second, err := budget.Reserve(300)
	if err != nil {
		t.Fatalf("Reserve(300) error: %v", err)
	}
	first.Release()
	if budget.InUse() != 300 {
		t.Errorf("InUse after double release = %d, want 300", budget.InUse())
	}
	second.Release()

	var nilRes *Reservation
	nilRes.Release()
}

func TestReserveZero(t *testing.T) {
	budget := New(Config{TotalBytes: 10})
	res, err := budget.Reserve(0)
	if err != nil {
		t.Fatalf("Reserve(0) error: %v", err)
	}
	res.Release()
	if budget.InUse() != 0 {
		t.Errorf("InUse = %d, want 0", budget.InUse())
	}
}

func TestPeak(t *testing.T) {
	budget := New(Config{TotalBytes: 1000})

	a, _ := budget.Reserve(300)
	b, _ := budget.Reserve(400)
	a.Release()
	b.Release()
	c, _ := budget.Reserve(100)
	defer c.Release()

	if budget.Peak() != 700 {
		t.Errorf("Peak() = %d, want 700", budget.Peak())
	}
}

func TestStats(t *testing.T) {
	budget := New(Config{TotalBytes: 200, Source: BudgetSourceEnv})
	if _, err := budget.Reserve(50); err != nil {
		t.Fatal(err)
	}

	s := budget.Stats()
	if s.TotalBytes != 200 || s.InUseBytes != 50 || s.AvailableBytes != 150 || s.PeakBytes != 50 {
		t.Errorf("Stats = %+v", s)
	}
	if s.UsagePercent != 25 {
		t.Errorf("UsagePercent = %v, want 25", s.UsagePercent)
	}

	if New(Config{}).Stats().UsagePercent != 0 {
		t.Error("zero budget should report 0% usage")
	}
}

func TestNewFromSystemRAM(t *testing.T) {
	budget := NewFromSystemRAM()

	if budget.Source() != BudgetSourceAuto50Pct && budget.Source() != BudgetSourceDefault {
		t.Errorf("Source = %s, want auto-50pct or default", budget.Source())
	}
	if budget.Total() == 0 {
		t.Error("Total() = 0")
	}
}

func TestResolvePriority(t *testing.T) {
	t.Setenv(EnvVar, "2GiB")

	budget, err := Resolve("8GiB", "1GiB")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if budget.Total() != 8*1024*1024*1024 || budget.Source() != BudgetSourceCLI {
		t.Errorf("CLI: got %d from %s", budget.Total(), budget.Source())
	}

	budget, err = Resolve("", "1GiB")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if budget.Total() != 2*1024*1024*1024 || budget.Source() != BudgetSourceEnv {
		t.Errorf("env: got %d from %s", budget.Total(), budget.Source())
	}

	t.Setenv(EnvVar, "")
	budget, err = Resolve("", "1GiB")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if budget.Total() != 1024*1024*1024 || budget.Source() != BudgetSourceConfig {
		t.Errorf("config: got %d from %s", budget.Total(), budget.Source())
	}

	budget, err = Resolve("", "")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if budget.Source() != BudgetSourceAuto50Pct && budget.Source() != BudgetSourceDefault {
		t.Errorf("auto: Source() = %s", budget.Source())
	}
}

func TestResolveInvalid(t *testing.T) {
	if _, err := Resolve("invalid", ""); err == nil || !strings.Contains(err.Error(), "--mem-budget") {
		t.Errorf("invalid CLI error = %v, want mention of --mem-budget", err)
	}

	t.Setenv(EnvVar, "badvalue")
	if _, err := Resolve("", ""); err == nil || !strings.Contains(err.Error(), EnvVar) {
		t.Errorf("invalid env error = %v, want mention of %s", err, EnvVar)
	}

	t.Setenv(EnvVar, "")
	if _, err := Resolve("", "12XB"); err == nil || !strings.Contains(err.Error(), "mem_budget") {
		t.Errorf("invalid config error = %v, want mention of mem_budget", err)
	}
}

func TestParseHumanSize(t *testing.T) {
	tests := []struct {
		input   string
		want    uint64
		wantErr bool
	}{
		{"1024", 1024, false},
		{"100B", 100, false},
		{"1KB", 1000, false},
		{"1KiB", 1024, false},
		{"1K", 1024, false},
		{"1MB", 1000000, false},
		{"1MiB", 1024 * 1024, false},
		{"1GiB", 1024 * 1024 * 1024, false},
		{"0.5GiB", 512 * 1024 * 1024, false},
		{"4gib", 4 * 1024 * 1024 * 1024, false},
		{" 64 MiB ", 64 * 1024 * 1024, false},
		{"2T", 2 * 1024 * 1024 * 1024 * 1024, false},
		{"", 0, true},
		{"-1GiB", 0, true},
		{"1e30TB", 0, true},
		{"XYZ", 0, true},
		{"100XB", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseHumanSize(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidSize) {
				t.Errorf("ParseHumanSize(%q) error = %v, want ErrInvalidSize", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseHumanSize(%q) error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseHumanSize(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input uint64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.00 KiB"},
		{1536, "1.50 KiB"},
		{1024 * 1024, "1.00 MiB"},
		{4 * 1024 * 1024 * 1024, "4.00 GiB"},
	}

	for _, tt := range tests {
		got := FormatBytes(tt.input)
		if got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
