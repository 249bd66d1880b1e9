package limiter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RefreshLimiter throttles expensive refresh operations, such as manual
// currency rate updates. Parameters can be adjusted at runtime.
type RefreshLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
}

// NewRefreshLimiter allows burst refreshes at most every interval.
func NewRefreshLimiter(interval time.Duration, burst int) *RefreshLimiter {
	return &RefreshLimiter{
		limiter: rate.NewLimiter(rate.Every(interval), burst),
	}
}

// Allow reports whether a refresh may proceed now.
func (l *RefreshLimiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.limiter.Allow()
}

// Wait blocks until a refresh may proceed or the context is done.
func (l *RefreshLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Update changes the interval and burst of the limiter.
func (l *RefreshLimiter) Update(interval time.Duration, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.limiter.SetLimit(rate.Every(interval))
	l.limiter.SetBurst(burst)
}
