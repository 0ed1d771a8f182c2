package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// RetryClient wraps an LLMClient with request rate limiting and bounded
// exponential backoff. Transient collaborator failures are retried;
// context cancellation is honored between attempts.
type RetryClient struct {
	inner       LLMClient
	limiter     *rate.Limiter
	maxAttempts int
	baseDelay   time.Duration
}

// NewRetryClient wraps inner. rps bounds sustained request rate; attempts
// must be at least 1.
func NewRetryClient(inner LLMClient, rps float64, attempts int) *RetryClient {
	if attempts < 1 {
		attempts = 1
	}
	return &RetryClient{
		inner:       inner,
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		maxAttempts: attempts,
		baseDelay:   500 * time.Millisecond,
	}
}

// Generate implements the LLMClient interface
func (r *RetryClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if err := r.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter wait: %w", err)
		}
		out, err := r.inner.Generate(ctx, prompt, params)
		if err == nil {
			return out, nil
		}
		lastErr = err
		slog.Warn("LLM generate attempt failed", "attempt", attempt, "error", err)
		if attempt == r.maxAttempts {
			break
		}
		delay := r.baseDelay << (attempt - 1)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	return "", fmt.Errorf("LLM generate failed after %d attempts: %w", r.maxAttempts, lastErr)
}
