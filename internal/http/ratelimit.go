package http

import (
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimitedDoer delays requests so that the wrapped Doer is not called more often than the limiter allows.
type RateLimitedDoer struct {
	doer    Doer
	limiter *rate.Limiter
}

// NewRateLimitedDoer wraps doer with a token bucket allowing rps requests per second and the given burst.
// A non-positive rps returns doer unchanged.
func NewRateLimitedDoer(doer Doer, rps float64, burst int) Doer {
	if rps <= 0 {
		return doer
	}

	if burst < 1 {
		burst = 1
	}

	return &RateLimitedDoer{
		doer:    doer,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Do waits for a token, bounded by the request's context, and then executes the request.
func (d *RateLimitedDoer) Do(req *http.Request) (*http.Response, error) {
	if err := d.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("failed to wait for rate limiter: %w", err)
	}

	return d.doer.Do(req)
}
