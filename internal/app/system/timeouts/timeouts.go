// Package timeouts provides the timeout values used with context.WithTimeout
// for database work in handlers, workflows, background jobs and the
// maintenance CLI.
//
// Guidelines for choosing a timeout:
//   - Ping: health checks
//   - Short: single-document reads (get by id, lookup by phone)
//   - Medium: list queries and single writes
//   - Long: workflows touching several collections (assign route, record collection)
//   - Batch: maintenance scripts and bulk seeding
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultBatch  = 5 * time.Minute
)

// Config holds timeout configuration values.
// Zero values are ignored (current values are kept).
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	Batch  time.Duration
}

func defaults() Config {
	return Config{
		Ping:   DefaultPing,
		Short:  DefaultShort,
		Medium: DefaultMedium,
		Long:   DefaultLong,
		Batch:  DefaultBatch,
	}
}

var (
	mu  sync.RWMutex
	cur = defaults()
)

// Current returns the active configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

func Ping() time.Duration   { return Current().Ping }
func Short() time.Duration  { return Current().Short }
func Medium() time.Duration { return Current().Medium }
func Long() time.Duration   { return Current().Long }
func Batch() time.Duration  { return Current().Batch }

// Configure overrides timeouts. Call it during startup, before handlers
// are registered.
func Configure(c Config) {
	mu.Lock()
	defer mu.Unlock()
	merge(&cur, c)
}

// Reset restores the defaults. Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = defaults()
}

func merge(dst *Config, src Config) {
	set := func(d *time.Duration, v time.Duration) {
		if v > 0 {
			*d = v
		}
	}
	set(&dst.Ping, src.Ping)
	set(&dst.Short, src.Short)
	set(&dst.Medium, src.Medium)
	set(&dst.Long, src.Long)
	set(&dst.Batch, src.Batch)
}

// ConfigureFromEnv reads GREENLINK_TIMEOUT_{PING,SHORT,MEDIUM,LONG,BATCH}
// (Go durations such as "500ms" or "2m"). Unset or invalid values are
// skipped. It returns how many values were applied.
func ConfigureFromEnv() int {
	var c Config
	n := 0
	for name, dst := range map[string]*time.Duration{
		"GREENLINK_TIMEOUT_PING":   &c.Ping,
		"GREENLINK_TIMEOUT_SHORT":  &c.Short,
		"GREENLINK_TIMEOUT_MEDIUM": &c.Medium,
		"GREENLINK_TIMEOUT_LONG":   &c.Long,
		"GREENLINK_TIMEOUT_BATCH":  &c.Batch,
	} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*dst = d
			n++
		}
	}
	Configure(c)
	return n
}

// WithTimeout is context.WithTimeout whose cancel func logs a warning when
// the deadline was hit, naming the operation.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "assign route")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
