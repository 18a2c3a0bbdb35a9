package memdiag

import (
	"errors"
	"runtime/debug"
	"testing"
)

func TestStartTraceExclusive(t *testing.T) {
	tr, err := StartTrace()
	if err != nil {
		t.Fatalf("StartTrace error: %v", err)
	}
	if !Tracing() {
		t.Error("Tracing() = false with an open trace")
	}

	if _, err := StartTrace(); !errors.Is(err, ErrTraceActive) {
		t.Errorf("second StartTrace error = %v, want ErrTraceActive", err)
	}
	if _, err := Measure(func() error { return nil }); !errors.Is(err, ErrTraceActive) {
		t.Errorf("Measure during open trace error = %v, want ErrTraceActive", err)
	}

	tr.Stop()
	tr.Stop()
	if Tracing() {
		t.Error("Tracing() = true after Stop")
	}
}

func TestTraceRestoresGCPercent(t *testing.T) {
	prev := debug.SetGCPercent(150)
	defer debug.SetGCPercent(prev)

	if _, err := Measure(func() error { return nil }); err != nil {
		t.Fatalf("Measure error: %v", err)
	}

	if got := debug.SetGCPercent(150); got != 150 {
		t.Errorf("GC percent after trace = %d, want 150", got)
	}
}

func TestMeasureClosesTraceOnError(t *testing.T) {
	wantErr := errors.New("boom")
	_, err := Measure(func() error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("Measure error = %v, want %v", err, wantErr)
	}
	if Tracing() {
		t.Fatal("trace left open after failing call")
	}
}

func TestMeasureClosesTraceOnPanic(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic to propagate")
		}
		if Tracing() {
			t.Error("trace left open after panic")
		}
	}()
	_, _ = Measure(func() error { panic("kaboom") })
}

//go:noinline
func deep(n int) int {
	var pad [16]int64
	pad[n%16] = int64(n)
	if n == 0 {
		return int(pad[0])
	}
	return deep(n-1) + int(pad[n%16]&1)
}

func TestMeasureSeesStackGrowth(t *testing.T) {
	shallow, err := Measure(func() error {
		_ = deep(1)
		return nil
	})
	if err != nil {
		t.Fatalf("Measure error: %v", err)
	}

	deepPeak, err := Measure(func() error {
		_ = deep(50000)
		return nil
	})
	if err != nil {
		t.Fatalf("Measure error: %v", err)
	}

	if deepPeak <= shallow {
		t.Errorf("deep recursion peak %d <= shallow peak %d", deepPeak, shallow)
	}
	t.Logf("shallow=%d deep=%d bytes", shallow, deepPeak)
}

func TestMeasureSeesHeapAllocation(t *testing.T) {
	var sink []byte
	peak, err := Measure(func() error {
		sink = make([]byte, 1<<20)
		return nil
	})
	if err != nil {
		t.Fatalf("Measure error: %v", err)
	}
	if peak < 1<<20 {
		t.Errorf("peak = %d, want at least %d", peak, 1<<20)
	}
	_ = sink
}

func TestTracePeak(t *testing.T) {
	tr := &Trace{baseline: Stats{StackInuse: 100, TotalAlloc: 1000}}

	tests := []struct {
		end  Stats
		want uint64
	}{
		{Stats{StackInuse: 100, TotalAlloc: 1000}, 0},
		{Stats{StackInuse: 300, TotalAlloc: 1000}, 200},
		{Stats{StackInuse: 300, TotalAlloc: 1500}, 700},
		{Stats{StackInuse: 50, TotalAlloc: 1200}, 200},
	}
	for _, tt := range tests {
		if got := tr.Peak(tt.end); got != tt.want {
			t.Errorf("Peak(%+v) = %d, want %d", tt.end, got, tt.want)
		}
	}
}

func TestMeasureExcludesOwnState(t *testing.T) {
	floor := ^uint64(0)
	for range 5 {
		peak, err := Measure(func() error { return nil })
		if err != nil {
			t.Fatalf("Measure error: %v", err)
		}
		floor = min(floor, peak)
	}
	if floor >= 128 {
		t.Errorf("empty call peak = %d bytes, want under 128", floor)
	}
}
