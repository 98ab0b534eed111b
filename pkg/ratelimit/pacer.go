package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces outgoing requests with a token bucket.
// A nil *Pacer never waits.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer returns a Pacer allowing rps requests per second with the given
// burst. It returns nil when rps is not positive.
func NewPacer(rps float64, burst int) *Pacer {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Wait blocks until a request may be sent or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return nil
	}

	start := time.Now()
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("pacer wait: %w", err)
	}
	pacerWaitSeconds.Observe(time.Since(start).Seconds())
	return nil
}
