// Package ratelimit provides client-side rate limiting for outbound API
// calls. The Google Threat Intelligence API enforces per-key quotas; the
// limiter smooths this server's request rate so tool calls degrade to
// waiting instead of burning quota on rejected requests.
package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// Limiter wraps a token bucket shared by all outbound calls for one API
// key. A nil *Limiter is valid and allows everything, so callers can treat
// rate limiting as optional (fail open).
type Limiter struct {
	bucket *rate.Limiter
	logger *slog.Logger
}

// NewLimiter creates a limiter allowing requestsPerMinute sustained calls
// with a proportional burst. A requestsPerMinute of 0 or less disables
// limiting.
func NewLimiter(requestsPerMinute int, logger *slog.Logger) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}
	if requestsPerMinute <= 0 {
		return &Limiter{logger: logger}
	}

	burst := requestsPerMinute / 4
	if burst < 1 {
		burst = 1
	}

	return &Limiter{
		bucket: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), burst),
		logger: logger,
	}
}

// Wait blocks until a request may proceed or the context is cancelled.
// Disabled and nil limiters allow every request immediately.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.bucket == nil {
		return nil
	}
	if l.bucket.Allow() {
		return nil
	}
	l.logger.Debug("Rate limit reached, waiting for token")
	return l.bucket.Wait(ctx)
}

// Allow reports whether a request may proceed right now without consuming
// a waiting slot. Nil and disabled limiters always allow.
func (l *Limiter) Allow() bool {
	if l == nil || l.bucket == nil {
		return true
	}
	return l.bucket.Allow()
}
