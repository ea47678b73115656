// Package ratelimit paces outbound GitHub API requests.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter wraps a single token bucket shared by every request the process
// makes. A run only ever talks to one repository, so one bucket is enough.
type Limiter struct {
	limiter *rate.Limiter
}

// New returns a limiter allowing rps requests per second with the given
// burst. A non-positive rps disables pacing entirely.
func New(rps, burst int) *Limiter {
	if rps <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Wait blocks until the next request may be sent or the context is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
