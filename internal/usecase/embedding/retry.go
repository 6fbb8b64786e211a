package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ainative-studio/publicfounders/internal/domain"
	"github.com/ainative-studio/publicfounders/internal/metrics"
)

// Retry schedule defaults: 3 attempts with exponential 1s/2s/4s backoff.
const (
	DefaultMaxAttempts = 3
	DefaultBackoffBase = time.Second
)

// RetryEmbedder wraps an embedder with bounded retry and exponential backoff.
// Only transient errors are retried; the attempt count is a hard maximum.
// Suspension happens only at the network boundary: the decorator blocks the
// caller between attempts, honoring context cancellation.
type RetryEmbedder struct {
	inner       domain.Embedder
	provider    string
	maxAttempts int
	backoffBase time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
	logger      *zap.Logger
}

// NewRetryEmbedder wraps an embedder with a bounded retry policy.
func NewRetryEmbedder(inner domain.Embedder, provider string, maxAttempts int, backoffBase time.Duration, logger *zap.Logger) *RetryEmbedder {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if backoffBase <= 0 {
		backoffBase = DefaultBackoffBase
	}
	return &RetryEmbedder{
		inner:       inner,
		provider:    provider,
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
		sleep:       sleepCtx,
		logger:      logger,
	}
}

// Embed delegates to the inner embedder, retrying transient failures with
// exponential delay (base, 2·base, 4·base, …) up to the attempt limit.
func (r *RetryEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	var lastErr error

	delay := r.backoffBase
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		result, err := r.inner.Embed(ctx, text)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !domain.Retryable(err) {
			return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
		}
		if attempt == r.maxAttempts {
			break
		}

		metrics.EmbeddingRetriesTotal.WithLabelValues(r.provider).Inc()
		r.logger.Warn("Embedding attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)

		if err := r.sleep(ctx, delay); err != nil {
			return domain.EmbeddingResult{}, fmt.Errorf("embed retry cancelled: %w", err)
		}
		delay *= 2
	}

	return domain.EmbeddingResult{}, fmt.Errorf("embed after %d attempts: %w", r.maxAttempts, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
