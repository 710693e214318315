package geocode

import (
	"bike-data-pipeline/internal/model"
	"context"
	"time"
)

// retryPolicy is a model.RetryConfig with its delays parsed.
type retryPolicy struct {
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
	factor       float64
}

func policyFromConfig(cfg model.RetryConfig) retryPolicy {
	cfg = cfg.WithDefaults()
	p := retryPolicy{maxAttempts: cfg.MaxAttempts, factor: cfg.BackoffFactor}
	if d, err := time.ParseDuration(cfg.InitialDelay); err == nil && d > 0 {
		p.initialDelay = d
	} else {
		p.initialDelay = time.Second
	}
	if d, err := time.ParseDuration(cfg.MaxDelay); err == nil && d > 0 {
		p.maxDelay = d
	} else {
		p.maxDelay = 30 * time.Second
	}
	return p
}

// withRetry runs op up to maxAttempts times with exponential backoff,
// capped at maxDelay. A done context ends the attempts early; otherwise
// the last error is returned.
func withRetry(ctx context.Context, p retryPolicy, op func() error) error {
	delay := p.initialDelay
	var err error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if attempt == p.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * p.factor)
		if delay > p.maxDelay {
			delay = p.maxDelay
		}
	}
	return err
}
