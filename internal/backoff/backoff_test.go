package backoff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/boltzsuite/internal/suite"
)

// fakeClock advances only when slept on or told to, and records every sleep.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func zeroJitter(time.Duration) time.Duration { return 0 }

func newController(clock Clock) *Controller {
	return New(DefaultConfig(), clock, zeroJitter, nil)
}

func TestExecute_SuccessShortCircuits(t *testing.T) {
	clock := newFakeClock()
	c := newController(clock)

	calls := 0
	out, elapsed, err := c.Execute(context.Background(), suite.EndpointLocal, suite.InterfaceAPI,
		func(ctx context.Context) (*suite.Outcome, error) {
			calls++
			clock.advance(3 * time.Second)
			return &suite.Outcome{}, nil
		})

	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 3*time.Second, elapsed)
	assert.Empty(t, clock.sleeps, "local calls get no pre-emptive throttle")
}

func TestExecute_HostedThrottleAppliedUnconditionally(t *testing.T) {
	clock := newFakeClock()
	c := newController(clock)

	_, _, err := c.Execute(context.Background(), suite.EndpointNvidia, suite.InterfaceAPI,
		func(ctx context.Context) (*suite.Outcome, error) {
			return &suite.Outcome{}, nil
		})

	require.NoError(t, err)
	require.Len(t, clock.sleeps, 1)
	assert.Equal(t, 6*time.Second, clock.sleeps[0])
}

func TestExecute_RateLimitedRetriesThenSucceeds(t *testing.T) {
	clock := newFakeClock()
	c := newController(clock)

	calls := 0
	out, elapsed, err := c.Execute(context.Background(), suite.EndpointNvidia, suite.InterfaceAPI,
		func(ctx context.Context) (*suite.Outcome, error) {
			calls++
			clock.advance(time.Duration(calls) * time.Second)
			if calls < 3 {
				return nil, errors.New("prediction failed: 429 Too Many Requests")
			}
			return &suite.Outcome{}, nil
		})

	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, 3, calls)

	// Duration spans only the final attempt, not the waits before it.
	assert.Equal(t, 3*time.Second, elapsed)

	// Pre-emptive throttle, then exponential backoff: 6s, then 6*2^0, 6*2^1.
	assert.Equal(t, []time.Duration{
		6 * time.Second,
		6 * time.Second,
		12 * time.Second,
	}, clock.sleeps)
}

func TestExecute_RateLimitExhaustionReturnsLastError(t *testing.T) {
	clock := newFakeClock()
	c := newController(clock)

	calls := 0
	out, _, err := c.Execute(context.Background(), suite.EndpointLocal, suite.InterfaceAPI,
		func(ctx context.Context) (*suite.Outcome, error) {
			calls++
			return nil, errors.New("rate limit exceeded")
		})

	require.Error(t, err)
	assert.Nil(t, out)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "rate limit")
	assert.Len(t, clock.sleeps, 2, "no sleep after the final attempt")
}

func TestExecute_TerminalFailureIsNotRetried(t *testing.T) {
	clock := newFakeClock()
	c := newController(clock)

	calls := 0
	_, _, err := c.Execute(context.Background(), suite.EndpointLocal, suite.InterfaceAPI,
		func(ctx context.Context) (*suite.Outcome, error) {
			calls++
			return nil, errors.New("invalid sequence")
		})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, clock.sleeps)
}

func TestExecute_SingleAttemptNeverRetries(t *testing.T) {
	clock := newFakeClock()
	cfg := DefaultConfig()
	cfg.MaxAttempts = 1
	c := New(cfg, clock, zeroJitter, nil)

	calls := 0
	_, _, err := c.Execute(context.Background(), suite.EndpointLocal, suite.InterfaceAPI,
		func(ctx context.Context) (*suite.Outcome, error) {
			calls++
			return nil, errors.New("429")
		})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, clock.sleeps)
}

func TestExecute_ProcessJitterBoundDiffers(t *testing.T) {
	clock := newFakeClock()
	cfg := DefaultConfig()
	var bounds []time.Duration
	c := New(cfg, clock, func(bound time.Duration) time.Duration {
		bounds = append(bounds, bound)
		return 0
	}, nil)

	op := func(ctx context.Context) (*suite.Outcome, error) {
		return nil, errors.New("too many requests")
	}

	_, _, err := c.Execute(context.Background(), suite.EndpointLocal, suite.InterfaceAPI, op)
	require.Error(t, err)
	_, _, err = c.Execute(context.Background(), suite.EndpointLocal, suite.InterfaceCLI, op)
	require.Error(t, err)

	require.Len(t, bounds, 4)
	assert.Equal(t, 2*time.Second, bounds[0], "direct-call jitter bound")
	assert.Equal(t, 3*time.Second, bounds[2], "external-process jitter bound")
}

func TestExecute_CancelledDuringThrottle(t *testing.T) {
	clock := newFakeClock()
	c := newController(clock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, _, err := c.Execute(ctx, suite.EndpointNvidia, suite.InterfaceAPI,
		func(ctx context.Context) (*suite.Outcome, error) {
			calls++
			return &suite.Outcome{}, nil
		})

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls, "operation must not run after cancellation")
}

func TestIsRateLimited(t *testing.T) {
	assert.True(t, IsRateLimited(errors.New("HTTP 429")))
	assert.True(t, IsRateLimited(errors.New("Rate Limit hit")))
	assert.True(t, IsRateLimited(errors.New("Too Many Requests")))
	assert.False(t, IsRateLimited(errors.New("connection refused")))
	assert.False(t, IsRateLimited(nil))
}

func TestSystemClock_SleepHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := SystemClock{}.Sleep(ctx, 5*time.Second)
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
