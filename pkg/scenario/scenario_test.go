package scenario

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/eunmann/searchsweep/pkg/dataset"
	"github.com/eunmann/searchsweep/pkg/search"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Scenario
		wantErr bool
	}{
		{"worst", Worst, false},
		{"WORST", Worst, false},
		{"Worst Case (NIM Tidak Hadir)", Worst, false},
		{"best", Best, false},
		{"Best Case", Best, false},
		{"best-case", Best, false},
		{"average", Average, false},
		{"avg", Average, false},
		{" Average Case (random ID) ", Average, false},
		{"", Worst, true},
		{"median", Worst, true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownScenario) {
				t.Errorf("Parse(%q) error = %v, want ErrUnknownScenario", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestTextRoundTrip(t *testing.T) {
	for _, s := range All {
		text, err := s.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v) error: %v", s, err)
		}
		var got Scenario
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q) error: %v", text, err)
		}
		if got != s {
			t.Errorf("round trip %v -> %q -> %v", s, text, got)
		}
	}

	if _, err := Scenario(9).MarshalText(); err == nil {
		t.Error("expected error marshaling invalid scenario")
	}
}

func TestSelectWorstIsAbsent(t *testing.T) {
	sel := NewSelector(Worst, nil)
	for n := 200; n <= 10000; n += 200 {
		seq := dataset.MustGenerate(n)
		target, err := sel.Select(seq)
		if err != nil {
			t.Fatalf("Select error: %v", err)
		}
		if idx := search.Iterative(seq, target).Index; idx != search.NotFound {
			t.Fatalf("n=%d: worst-case target %d found at %d", n, target, idx)
		}
	}
}

func TestSelectWorstAboveSentinel(t *testing.T) {
	seq := []int64{WorstCaseTarget - 1, WorstCaseTarget, WorstCaseTarget + 5}
	target, err := NewSelector(Worst, nil).Select(seq)
	if err != nil {
		t.Fatalf("Select error: %v", err)
	}
	if target != WorstCaseTarget+6 {
		t.Errorf("target = %d, want %d", target, WorstCaseTarget+6)
	}
}

func TestSelectBestIsFirst(t *testing.T) {
	sel := NewSelector(Best, nil)
	for _, n := range []int{1, 500, 1000} {
		seq := dataset.MustGenerate(n)
		target, err := sel.Select(seq)
		if err != nil {
			t.Fatalf("Select error: %v", err)
		}
		if target != seq[0] {
			t.Errorf("n=%d: target = %d, want %d", n, target, seq[0])
		}
		res := search.Iterative(seq, target)
		if res.Index != 0 || res.Comparisons != 1 {
			t.Errorf("n=%d: iterative = %+v, want index 0 after 1 comparison", n, res)
		}
	}
}

func TestSelectAverageIsPresent(t *testing.T) {
	sel := NewSelector(Average, rand.New(rand.NewSource(7)))
	for n := 1; n <= 2000; n += 97 {
		seq := dataset.MustGenerate(n)
		target, err := sel.Select(seq)
		if err != nil {
			t.Fatalf("Select error: %v", err)
		}
		if search.Iterative(seq, target).Index == search.NotFound {
			t.Fatalf("n=%d: average-case target %d not in sequence", n, target)
		}
	}
}

func TestSelectAverageSeeded(t *testing.T) {
	seq := dataset.MustGenerate(1000)
	a := NewSelector(Average, rand.New(rand.NewSource(99)))
	b := NewSelector(Average, rand.New(rand.NewSource(99)))
	for i := 0; i < 20; i++ {
		ta, _ := a.Select(seq)
		tb, _ := b.Select(seq)
		if ta != tb {
			t.Fatalf("draw %d: %d != %d with the same seed", i, ta, tb)
		}
	}
}

func TestSelectEmpty(t *testing.T) {
	for _, s := range All {
		if _, err := NewSelector(s, nil).Select(nil); !errors.Is(err, ErrEmptySequence) {
			t.Errorf("%v: error = %v, want ErrEmptySequence", s, err)
		}
	}
}
