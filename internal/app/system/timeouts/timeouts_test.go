package timeouts_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/greenlink/internal/app/system/timeouts"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigure_IgnoresZero(t *testing.T) {
	t.Cleanup(timeouts.Reset)

	timeouts.Configure(timeouts.Config{Short: 7 * time.Second})

	if got := timeouts.Short(); got != 7*time.Second {
		t.Errorf("Short: got %v, want 7s", got)
	}
	if got := timeouts.Medium(); got != timeouts.DefaultMedium {
		t.Errorf("Medium: got %v, want default", got)
	}
}

func TestConfigureFromEnv(t *testing.T) {
	t.Cleanup(timeouts.Reset)
	t.Setenv("GREENLINK_TIMEOUT_LONG", "45s")
	t.Setenv("GREENLINK_TIMEOUT_PING", "not-a-duration")
	t.Setenv("GREENLINK_TIMEOUT_BATCH", "-1s")

	if n := timeouts.ConfigureFromEnv(); n != 1 {
		t.Errorf("ConfigureFromEnv: applied %d, want 1", n)
	}
	if got := timeouts.Long(); got != 45*time.Second {
		t.Errorf("Long: got %v, want 45s", got)
	}
	if got := timeouts.Ping(); got != timeouts.DefaultPing {
		t.Errorf("Ping: got %v, want default", got)
	}
	if got := timeouts.Batch(); got != timeouts.DefaultBatch {
		t.Errorf("Batch: got %v, want default", got)
	}
}

func TestWithTimeout_LogsOnDeadline(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)

	ctx, cancel := timeouts.WithTimeout(context.Background(), time.Millisecond, log, "assign route")
	<-ctx.Done()
	cancel()

	if logs.Len() != 1 {
		t.Fatalf("expected 1 warning, got %d", logs.Len())
	}
	entry := logs.All()[0]
	if entry.ContextMap()["operation"] != "assign route" {
		t.Errorf("operation field: got %v", entry.ContextMap()["operation"])
	}
}

func TestWithTimeout_NoLogWhenCanceledEarly(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	_, cancel := timeouts.WithTimeout(context.Background(), time.Hour, zap.New(core), "list households")
	cancel()

	if logs.Len() != 0 {
		t.Errorf("expected no warnings, got %d", logs.Len())
	}
}
