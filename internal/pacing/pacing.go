// Package pacing centralizes the delays the pipeline inserts between
// external requests and AI batches, behind swappable funcs so tests run
// without real sleeps.
package pacing

import (
	"context"
	"math/rand"
	"time"
)

var (
	sleep = time.Sleep
	randN = rand.Int63n
)

// Wait blocks for d or until ctx is canceled, whichever comes first.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sleep(d)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Jitter returns a random duration in [min, max]. Used for politeness delays
// between requests to the same external origin.
func Jitter(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(randN(int64(max-min)))
}

// Politeness sleeps for a random duration in [min, max].
func Politeness(min, max time.Duration) {
	sleep(Jitter(min, max))
}
