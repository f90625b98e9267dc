// internal/app/system/tasks/runner.go
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// defaultTimeout bounds a single run when the job sets none.
const defaultTimeout = 30 * time.Second

// Job is a function run on a fixed interval.
type Job struct {
	Name     string
	Interval time.Duration
	// Timeout bounds each run. Zero means defaultTimeout.
	Timeout time.Duration
	// RunOnStart runs the job once immediately instead of waiting a full
	// interval.
	RunOnStart bool
	Run        func(ctx context.Context) error
}

// Runner runs each job on its own ticker goroutine until Stop.
type Runner struct {
	log  *zap.Logger
	jobs []Job

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewRunner creates a runner for jobs. Jobs without a Run func or with a
// non-positive interval are skipped with a warning at Start.
func NewRunner(logger *zap.Logger, jobs ...Job) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{log: logger, jobs: jobs}
}

// Add registers another job. It has no effect once the runner started.
func (r *Runner) Add(j Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		r.log.Warn("job added after start; ignored", zap.String("job", j.Name))
		return
	}
	r.jobs = append(r.jobs, j)
}

// Start launches every job. Cancelling ctx stops them as Stop does.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true

	ctx, r.cancel = context.WithCancel(ctx)
	for _, j := range r.jobs {
		if j.Run == nil || j.Interval <= 0 {
			r.log.Warn("skipping invalid job",
				zap.String("job", j.Name),
				zap.Duration("interval", j.Interval))
			continue
		}
		r.wg.Add(1)
		go r.loop(ctx, j)
		r.log.Info("background job started",
			zap.String("job", j.Name),
			zap.Duration("interval", j.Interval))
	}
}

// Stop cancels every job and waits for in-flight runs to return.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	r.wg.Wait()
	r.log.Info("background jobs stopped")
}

func (r *Runner) loop(ctx context.Context, j Job) {
	defer r.wg.Done()

	if j.RunOnStart {
		r.runOnce(ctx, j)
	}

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runOnce(ctx, j)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context, j Job) {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := safeRun(runCtx, j.Run)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		r.log.Error("background job failed",
			zap.String("job", j.Name),
			zap.Duration("took", time.Since(start)),
			zap.Error(err))
		return
	}
	r.log.Debug("background job ran",
		zap.String("job", j.Name),
		zap.Duration("took", time.Since(start)))
}

// safeRun turns a panic in run into an error so one bad job cannot take
// down the process.
func safeRun(ctx context.Context, run func(context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return run(ctx)
}
