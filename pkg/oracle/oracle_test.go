package oracle

import (
	"errors"
	"testing"

	"github.com/eunmann/searchsweep/pkg/dataset"
	"github.com/eunmann/searchsweep/pkg/search"
)

func TestBuildAndLookup(t *testing.T) {
	seq := dataset.MustGenerate(5000)
	idx, err := Build(seq)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if idx.Len() != len(seq) {
		t.Fatalf("Len() = %d, want %d", idx.Len(), len(seq))
	}

	for i, id := range seq {
		pos, ok := idx.Lookup(id)
		if !ok || pos != i {
			t.Fatalf("Lookup(%d) = %d, %v; want %d, true", id, pos, ok, i)
		}
	}

	for _, absent := range []int64{0, dataset.BaseID - 1, seq[len(seq)-1] + 1, 9999999999} {
		if pos, ok := idx.Lookup(absent); ok {
			t.Errorf("Lookup(%d) = %d, true; want absent", absent, pos)
		}
		if got := idx.Expect(absent); got != search.NotFound {
			t.Errorf("Expect(%d) = %d, want NotFound", absent, got)
		}
	}
}

func TestDuplicatesMapToFirst(t *testing.T) {
	idx, err := Build([]int64{7, 3, 7, 9, 3})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if idx.Len() != 3 {
		t.Errorf("Len() = %d, want 3", idx.Len())
	}
	if got := idx.Expect(7); got != 0 {
		t.Errorf("Expect(7) = %d, want 0", got)
	}
	if got := idx.Expect(3); got != 1 {
		t.Errorf("Expect(3) = %d, want 1", got)
	}
}

func TestEmpty(t *testing.T) {
	idx, err := Build(nil)
	if err != nil {
		t.Fatalf("Build(nil) error: %v", err)
	}
	if _, ok := idx.Lookup(1); ok {
		t.Error("Lookup on empty index found a value")
	}
}

func TestCheck(t *testing.T) {
	seq := dataset.MustGenerate(100)
	idx, err := Build(seq)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	if err := idx.Check(seq[42], 42); err != nil {
		t.Errorf("Check correct index: %v", err)
	}
	if err := idx.Check(9999999999, search.NotFound); err != nil {
		t.Errorf("Check correct miss: %v", err)
	}
	if err := idx.Check(seq[42], 41); !errors.Is(err, ErrMismatch) {
		t.Errorf("Check wrong index error = %v, want ErrMismatch", err)
	}
}

func TestAgreesWithSearch(t *testing.T) {
	seq := dataset.MustGenerate(300)
	idx, err := Build(seq)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	for _, target := range []int64{seq[0], seq[150], seq[299], 1} {
		res := search.Iterative(seq, target)
		if err := idx.Check(target, res.Index); err != nil {
			t.Errorf("target %d: %v", target, err)
		}
	}
}
