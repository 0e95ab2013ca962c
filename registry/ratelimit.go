package registry

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/types"
)

// RateLimiter wraps golang.org/x/time/rate, grounded in the teacher's
// tokenBucketLimiter (agent/rate_limiter_token_bucket.go), simplified to the
// single global-limiter case a shared executor needs.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter builds a token-bucket limiter allowing requestsPerSecond
// sustained throughput with a burst of burstSize.
func NewRateLimiter(requestsPerSecond float64, burstSize int) *RateLimiter {
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize)}
}

// RateLimitMiddleware blocks until limiter admits the request, or returns a
// KindRateLimit error if ctx is cancelled first while waiting.
func RateLimitMiddleware(limiter *RateLimiter) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error) {
			if err := limiter.limiter.Wait(ctx); err != nil {
				return nil, llmerrors.Wrap(llmerrors.KindRateLimit, "registry: rate limit wait failed", err)
			}
			return next(ctx, req)
		}
	}
}
