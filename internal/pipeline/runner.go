package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/okarpov/jobradar/internal/pacing"
)

const (
	defaultInterval = time.Hour
	stopPoll        = time.Second
)

// Runner repeats pipeline runs on a fixed interval until stopped. Between
// runs it polls the stop flag so Stop takes effect quickly even with long
// intervals.
type Runner struct {
	pipeline *Pipeline
	interval time.Duration
	logger   *zap.Logger
	stopped  atomic.Bool
}

func NewRunner(p *Pipeline, interval time.Duration, logger *zap.Logger) *Runner {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Runner{pipeline: p, interval: interval, logger: logger}
}

// Run blocks, executing the pipeline immediately and then every interval.
// It returns nil after Stop and the context error after cancellation.
func (r *Runner) Run(ctx context.Context) error {
	for {
		if r.stopped.Load() {
			return nil
		}

		if _, err := r.pipeline.Run(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Error("pipeline run failed", zap.Error(err))
		}

		r.logger.Info("waiting for next run", zap.Duration("interval", r.interval))

		deadline := time.Now().Add(r.interval)
		for time.Now().Before(deadline) {
			if r.stopped.Load() {
				return nil
			}
			if err := pacing.Wait(ctx, stopPoll); err != nil {
				return err
			}
		}
	}
}

// Stop requests the runner to exit. Safe to call from another goroutine or
// more than once.
func (r *Runner) Stop() { r.stopped.Store(true) }
