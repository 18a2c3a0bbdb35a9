package logctx

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/eunmann/searchsweep/pkg/logging"
)

// useProcessLogger points the process logger at a buffer for one test.
func useProcessLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logging.SetLogger(zerolog.New(&buf).With().Str("source", "process").Logger())
	t.Cleanup(func() { logging.Init(false, false) })
	return &buf
}

// logInfo logs msg through the logger carried by ctx.
func logInfo(ctx context.Context, msg string) {
	log := FromContext(ctx)
	log.Info().Msg(msg)
}

func TestFromContextFallsBackToProcessLogger(t *testing.T) {
	for name, ctx := range map[string]context.Context{
		"nil":        nil, //nolint:staticcheck
		"background": context.Background(),
	} {
		t.Run(name, func(t *testing.T) {
			buf := useProcessLogger(t)
			logInfo(ctx, "step")
			if !strings.Contains(buf.String(), `"source":"process"`) {
				t.Errorf("expected process logger output, got: %s", buf.String())
			}
		})
	}
}

func TestWithLogger_AndFromContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), zerolog.New(&buf).With().Str("server", "http").Logger())
	logInfo(ctx, "sweep served")

	if !strings.Contains(buf.String(), `"server":"http"`) {
		t.Errorf("expected attached logger output, got: %s", buf.String())
	}
}

func TestWithLogger_NilContext(t *testing.T) {
	var buf bytes.Buffer

	ctx := WithLogger(nil, zerolog.New(&buf)) //nolint:staticcheck
	if ctx == nil {
		t.Fatal("expected non-nil context")
	}
	logInfo(ctx, "step")
	if buf.Len() == 0 {
		t.Error("expected logger to produce output")
	}
}

func TestSweepFields(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), zerolog.New(&buf))
	ctx = WithRunID(ctx, "run-1")
	ctx = WithScenario(ctx, "worst")
	ctx = WithSize(ctx, 400)

	logInfo(ctx, "step")

	output := buf.String()
	for _, want := range []string{`"run_id":"run-1"`, `"scenario":"worst"`, `"size":400`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output, got: %s", want, output)
		}
	}
}

func TestFieldsOnProcessLogger(t *testing.T) {
	buf := useProcessLogger(t)
	logInfo(WithSize(context.Background(), 25), "step")

	out := buf.String()
	if !strings.Contains(out, `"source":"process"`) || !strings.Contains(out, `"size":25`) {
		t.Errorf("expected size on the process logger, got: %s", out)
	}
}

func TestChildDoesNotLeakIntoParent(t *testing.T) {
	var buf bytes.Buffer
	parent := WithLogger(context.Background(), zerolog.New(&buf))
	_ = WithSize(parent, 10)

	logInfo(parent, "parent")
	if strings.Contains(buf.String(), `"size"`) {
		t.Errorf("parent logger picked up child field: %s", buf.String())
	}
}
