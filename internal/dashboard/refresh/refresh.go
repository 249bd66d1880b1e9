// Package refresh keeps currency rates current by re-fetching them on a
// fixed schedule for as long as the dashboard runs.
package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/lisenok-cargo/cargomanager/pkg/logger"
)

// RatesRefresher is satisfied by dashboard.Dashboard.
type RatesRefresher interface {
	RefreshRates(ctx context.Context) error
}

// Refresher re-fetches currency rates on a fixed interval until stopped.
type Refresher struct {
	target   RatesRefresher
	logger   logger.Logger
	interval time.Duration
	wg       sync.WaitGroup
	done     chan struct{}
	stop     sync.Once
}

// New creates a refresher calling target every interval.
func New(target RatesRefresher, interval time.Duration, logger logger.Logger) *Refresher {
	return &Refresher{
		target:   target,
		logger:   logger,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Run starts the refresh loop in a background goroutine.
func (r *Refresher) Run() {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.done:
				return
			case <-ticker.C:
				if err := r.target.RefreshRates(context.Background()); err != nil {
					r.logger.Errorf("periodic rates refresh: %s", err)
				}
			}
		}
	}()
}

// Stop terminates the refresh loop and waits for it to exit.
// Safe to call more than once.
func (r *Refresher) Stop() {
	r.stop.Do(func() {
		close(r.done)
	})
	r.wg.Wait()
}
