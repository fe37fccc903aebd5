package main

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// broadcastPacer spaces out broadcast sends so one run stays under
// Telegram's global flood limit. A zero delay disables pacing.
type broadcastPacer struct {
	limiter *rate.Limiter
}

func newBroadcastPacer(delay time.Duration) *broadcastPacer {
	return &broadcastPacer{
		limiter: rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Wait blocks until the next send is allowed or ctx is done.
func (p *broadcastPacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
