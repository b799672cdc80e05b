// Package backoff wraps fallible prediction operations with rate-limit
// detection, a pre-emptive hosted-endpoint throttle, and exponential retry
// backoff with jitter. Both execution paths (in-process client calls and
// external-process invocations) run through the same controller.
package backoff

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bartekus/boltzsuite/internal/suite"
)

// Clock abstracts time so tests can substitute a deterministic source.
// Sleep must honor context cancellation.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock is the wall-clock Clock used outside tests.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Jitter produces a random duration in [0, bound).
type Jitter func(bound time.Duration) time.Duration

// UniformJitter returns a Jitter backed by the given random source.
func UniformJitter(rng *rand.Rand) Jitter {
	return func(bound time.Duration) time.Duration {
		if bound <= 0 {
			return 0
		}
		return time.Duration(rng.Int63n(int64(bound)))
	}
}

// Config holds the retry and throttle knobs.
type Config struct {
	// MaxAttempts is the total attempt ceiling, initial call included.
	MaxAttempts int
	// HostedDelay is slept before every hosted-endpoint call and doubles as
	// the exponential backoff base.
	HostedDelay time.Duration
	// DirectJitter and ProcessJitter bound the random slack added to each
	// backoff sleep, per execution path.
	DirectJitter  time.Duration
	ProcessJitter time.Duration
}

// DefaultConfig matches the hosted service's observed rate limits.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   3,
		HostedDelay:   6 * time.Second,
		DirectJitter:  2 * time.Second,
		ProcessJitter: 3 * time.Second,
	}
}

// Operation is one zero-argument fallible unit of work.
type Operation func(ctx context.Context) (*suite.Outcome, error)

// Controller executes operations under the configured retry policy.
type Controller struct {
	cfg    Config
	clock  Clock
	jitter Jitter
	log    *zap.Logger
}

// New builds a controller. Nil clock, jitter, or logger fall back to the
// system clock, a time-seeded uniform jitter, and a no-op logger.
func New(cfg Config, clock Clock, jitter Jitter, log *zap.Logger) *Controller {
	if clock == nil {
		clock = SystemClock{}
	}
	if jitter == nil {
		jitter = UniformJitter(rand.New(rand.NewSource(time.Now().UnixNano())))
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{cfg: cfg, clock: clock, jitter: jitter, log: log}
}

// Execute runs op against the given combination. Hosted-endpoint calls are
// unconditionally preceded by the configured throttle delay. Rate-limited
// failures are retried up to the attempt ceiling with exponential backoff;
// any other failure is terminal on the spot.
//
// The returned duration spans only the final attempt. Throttle and backoff
// waits are deliberately excluded so per-case timing stays attributable.
func (c *Controller) Execute(ctx context.Context, ep suite.Endpoint, iface suite.Interface, op Operation) (*suite.Outcome, time.Duration, error) {
	if ep == suite.EndpointNvidia {
		c.log.Info("throttling hosted endpoint call",
			zap.Duration("delay", c.cfg.HostedDelay),
			zap.String("interface", string(iface)))
		if err := c.clock.Sleep(ctx, c.cfg.HostedDelay); err != nil {
			return nil, 0, err
		}
	}

	attempts := c.cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var elapsed time.Duration
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		start := c.clock.Now()
		out, err := op(ctx)
		elapsed = c.clock.Now().Sub(start)
		if err == nil {
			return out, elapsed, nil
		}
		lastErr = err

		if !IsRateLimited(err) {
			return nil, elapsed, err
		}
		if attempt == attempts-1 {
			c.log.Warn("rate limit retries exhausted",
				zap.String("endpoint", string(ep)),
				zap.String("interface", string(iface)),
				zap.Int("attempts", attempts))
			break
		}

		delay := c.cfg.HostedDelay*(1<<attempt) + c.jitter(c.jitterBound(iface))
		c.log.Info("rate limited, backing off",
			zap.Duration("delay", delay),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", attempts))
		if err := c.clock.Sleep(ctx, delay); err != nil {
			return nil, elapsed, err
		}
	}
	return nil, elapsed, lastErr
}

func (c *Controller) jitterBound(iface suite.Interface) time.Duration {
	if iface == suite.InterfaceCLI {
		return c.cfg.ProcessJitter
	}
	return c.cfg.DirectJitter
}

// rateLimitSignatures are matched case-insensitively against error text.
var rateLimitSignatures = []string{"429", "rate limit", "too many requests"}

// IsRateLimited classifies an error as a retryable rate-limit rejection.
func IsRateLimited(err error) bool {
	return err != nil && RateLimitedMessage(err.Error())
}

// RateLimitedMessage reports whether recorded error text carries a
// rate-limit signature.
func RateLimitedMessage(msg string) bool {
	msg = strings.ToLower(msg)
	for _, sig := range rateLimitSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}
