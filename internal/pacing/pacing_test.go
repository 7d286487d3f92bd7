package pacing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitReturnsImmediatelyForNonPositive(t *testing.T) {
	require.NoError(t, Wait(context.Background(), 0))
	require.NoError(t, Wait(context.Background(), -time.Second))
}

func TestWaitHonorsCancellation(t *testing.T) {
	originalSleep := sleep
	sleep = func(time.Duration) { select {} }
	defer func() { sleep = originalSleep }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Wait(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJitterStaysInRange(t *testing.T) {
	t.Parallel()

	min, max := 100*time.Millisecond, 300*time.Millisecond
	for range 50 {
		d := Jitter(min, max)
		assert.GreaterOrEqual(t, d, min)
		assert.LessOrEqual(t, d, max)
	}
}

func TestJitterDegenerateRange(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Second, Jitter(time.Second, time.Second))
	assert.Equal(t, time.Second, Jitter(time.Second, time.Millisecond))
}

func TestPolitenessUsesSleep(t *testing.T) {
	var slept time.Duration
	originalSleep := sleep
	sleep = func(d time.Duration) { slept = d }
	defer func() { sleep = originalSleep }()

	Politeness(time.Second, 2*time.Second)
	assert.GreaterOrEqual(t, slept, time.Second)
	assert.LessOrEqual(t, slept, 2*time.Second)
}
