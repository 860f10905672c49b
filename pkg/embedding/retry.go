package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"peermatch-be/internal/pkg/logger"
)

// BackoffFunc returns the wait before retrying a failed attempt
// (1-based). LinearBackoff matches the upstream provider's observed
// recovery curve: 2s, 4s, 6s.
type BackoffFunc func(attempt int) time.Duration

func LinearBackoff(step time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		return step * time.Duration(attempt)
	}
}

// RetryProvider wraps a Provider with a bounded retry budget. The
// policy lives here so orchestration code never loops or sleeps.
type RetryProvider struct {
	next        Provider
	maxAttempts int
	backoff     BackoffFunc
	logger      logger.ILogger
}

func NewRetryProvider(next Provider, maxAttempts int, backoff BackoffFunc, log logger.ILogger) *RetryProvider {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if backoff == nil {
		backoff = LinearBackoff(2 * time.Second)
	}
	return &RetryProvider{
		next:        next,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		logger:      log,
	}
}

func (p *RetryProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	var lastErr error

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		values, err := p.next.Generate(ctx, text)
		if err == nil {
			return values, nil
		}
		if errors.Is(err, ErrEmptyInput) {
			return nil, err
		}
		lastErr = err

		if p.logger != nil {
			p.logger.Warn("Embedding", "Generation attempt failed", map[string]interface{}{
				"attempt": attempt,
				"error":   err.Error(),
			})
		}

		if attempt == p.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.backoff(attempt)):
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}
