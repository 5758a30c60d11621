package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
)

type retryProvider struct {
	inner   Provider
	cfg     RetryConfig
	timeout time.Duration
	log     zerolog.Logger
}

// WithRetry retries rate limits and unavailable providers with jittered
// exponential backoff, and output that fails the schema once. A positive
// timeout bounds all attempts together.
func WithRetry(p Provider, cfg RetryConfig, timeout time.Duration, log zerolog.Logger) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &retryProvider{inner: p, cfg: cfg, timeout: timeout, log: log}
}

func (r *retryProvider) Name() string    { return r.inner.Name() }
func (r *retryProvider) ModelID() string { return r.inner.ModelID() }

func (r *retryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	badOutput := 0
	for attempt := 0; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil || attempt == r.cfg.MaxAttempts-1 {
			return nil, err
		}

		switch {
		case errors.Is(err, ErrBadOutput):
			if badOutput++; badOutput > 1 {
				return nil, err
			}
		case errors.Is(err, ErrRateLimited), errors.Is(err, ErrUnavailable):
		default:
			return nil, err
		}

		wait := r.backoff(attempt, err)
		r.log.Debug().Err(err).Int("attempt", attempt+1).Dur("wait", wait).Msg("retrying llm request")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (r *retryProvider) backoff(attempt int, err error) time.Duration {
	var e *Error
	if errors.As(err, &e) && e.RetryAfter > 0 {
		return e.RetryAfter
	}
	wait := float64(r.cfg.InitialWait) * math.Pow(r.cfg.Multiplier, float64(attempt))
	wait = min(wait, float64(r.cfg.MaxWait))
	// ±20% jitter
	wait *= 0.8 + 0.4*rand.Float64()
	return time.Duration(wait)
}
