package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// RetryProvider retries transient failures with exponential backoff and
// jitter, all within one overall time budget.
type RetryProvider struct {
	inner   Provider
	config  RetryConfig
	timeout time.Duration
	log     *zap.Logger
}

// WithRetry wraps p. timeout bounds the whole call including waits; zero
// leaves only the caller's deadline.
func WithRetry(p Provider, cfg RetryConfig, timeout time.Duration, log *zap.Logger) Provider {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryProvider{inner: p, config: cfg, timeout: timeout, log: log}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var invalidSeen bool
	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		reason := Reason(err)
		if !retryable(reason, &invalidSeen) || attempt == r.config.MaxAttempts {
			return nil, err
		}

		wait := r.backoff(attempt, err)
		r.log.Info("retrying llm request",
			zap.String("purpose", string(PurposeFrom(ctx))),
			zap.Int("attempt", attempt),
			zap.String("reason", reason),
			zap.Duration("wait", wait))

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func (r *RetryProvider) ModelID() string { return r.inner.ModelID() }

// Unwrap returns the decorated provider.
func (r *RetryProvider) Unwrap() Provider { return r.inner }

// retryable decides from a failure reason. A schema mismatch is retried
// once since models usually get it right on a second sample; refusals,
// truncation and context errors are final.
func retryable(reason string, invalidSeen *bool) bool {
	switch reason {
	case ReasonRateLimit, ReasonUnavailable, ReasonOther:
		return true
	case ReasonInvalid:
		if *invalidSeen {
			return false
		}
		*invalidSeen = true
		return true
	default:
		return false
	}
}

// backoff is the wait after the given 1-based attempt. A rate limit with
// a Retry-After hint waits exactly that long.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt-1))
	wait = math.Min(wait, float64(r.config.MaxWait))
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(math.Max(wait, 0))
}
