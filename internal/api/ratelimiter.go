package api

import (
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

type rateLimiter interface {
	Allow() bool
}

// tokenBucket throttles the whole API with a single shared bucket.
type tokenBucket struct {
	limiter *rate.Limiter
}

func newTokenBucketLimiter(ratePerSecond float64, burst int) rateLimiter {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}

	return &tokenBucket{
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

func (b *tokenBucket) Allow() bool {
	if b == nil || b.limiter == nil {
		return true
	}
	return b.limiter.Allow()
}

// retryAfter estimates how long a client should wait for the next token.
func (b *tokenBucket) retryAfter() time.Duration {
	if b == nil || b.limiter == nil || b.limiter.Limit() <= 0 {
		return time.Second
	}
	return time.Duration(float64(time.Second) / float64(b.limiter.Limit()))
}

func rateLimitMiddleware(limiter rateLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limiter.Allow() {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(limiter)))
		writeError(w, http.StatusTooManyRequests, "Too many requests", "rate limit exceeded, please retry shortly")
	})
}

func retryAfterSeconds(limiter rateLimiter) int {
	bucket, ok := limiter.(*tokenBucket)
	if !ok {
		return 1
	}
	seconds := int(bucket.retryAfter().Round(time.Second) / time.Second)
	if seconds < 1 {
		return 1
	}
	return seconds
}
