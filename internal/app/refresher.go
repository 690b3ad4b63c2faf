package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"pulse/internal/domain"
)

// refresher runs fn on a fixed interval until ctx is done.
type refresher struct {
	name     string
	interval time.Duration
	fn       func(context.Context) error
}

func newRefresher(name string, interval time.Duration, fn func(context.Context) error) *refresher {
	return &refresher{name: name, interval: interval, fn: fn}
}

// Start launches the polling goroutine and registers it with wg.
func (r *refresher) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("Refresher panic recovered", slog.String("name", r.name), slog.Any("panic", rec))
			}
		}()

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Debug("Refresher stopped", slog.String("name", r.name))
				return
			case <-ticker.C:
				r.runOnce(ctx)
			}
		}
	}()
}

func (r *refresher) runOnce(ctx context.Context) {
	err := r.fn(ctx)
	switch {
	case err == nil, errors.Is(err, domain.ErrStaleFetch), ctx.Err() != nil:
	default:
		slog.Warn("Refresh failed", slog.String("name", r.name), slog.Any("error", err))
	}
}
