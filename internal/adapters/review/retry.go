package review

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/fixerhq/fixer-moderation/internal/core"
)

// Retry decorates a ReviewClient with Fibonacci backoff. Provider errors
// are treated as transient and the wrapped client is asked again until it
// answers or the retry budget runs out.
type Retry struct {
	client     core.ReviewClient
	maxRetries uint64
	baseDelay  time.Duration
	logger     *zap.Logger
}

// NewRetry wraps client so each review is attempted up to maxRetries+1 times
func NewRetry(client core.ReviewClient, maxRetries int, logger *zap.Logger) *Retry {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Retry{
		client:     client,
		maxRetries: uint64(maxRetries),
		baseDelay:  1 * time.Second,
		logger:     logger,
	}
}

// Close releases the wrapped client's resources when it holds any
func (r *Retry) Close() error {
	if closer, ok := r.client.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// ReviewSubmission implements core.ReviewClient
func (r *Retry) ReviewSubmission(ctx context.Context, sub *core.JobSubmission) (*core.ReviewAssessment, error) {
	var assessment *core.ReviewAssessment
	b := retry.NewFibonacci(r.baseDelay)
	err := retry.Do(ctx, retry.WithMaxRetries(r.maxRetries, b), func(ctx context.Context) error {
		a, err := r.client.ReviewSubmission(ctx, sub)
		if err != nil {
			r.logger.Warn("Review attempt failed", zap.Error(err))
			return retry.RetryableError(err)
		}
		assessment = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return assessment, nil
}
