package client

import (
	"context"
	"log/slog"
	"time"
)

type CatalogRefresher interface {
	Refresh(ctx context.Context) error
}

// Refresher re-fetches a mirror on a fixed interval until stopped.
type Refresher struct {
	target   CatalogRefresher
	interval time.Duration
	stopChan chan struct{}
	onUpdate func(err error)
}

func NewRefresher(target CatalogRefresher, interval time.Duration) *Refresher {
	return &Refresher{
		target:   target,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// OnRefresh registers a callback invoked after every tick with the refresh
// result.
func (r *Refresher) OnRefresh(fn func(err error)) {
	r.onUpdate = fn
}

func (r *Refresher) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.Info("Catalog refresher started", "interval", r.interval)

	for {
		select {
		case <-ticker.C:
			err := r.target.Refresh(ctx)
			if err != nil {
				slog.Error("Error refreshing catalog", "error", err)
			} else {
				slog.Debug("Catalog refreshed")
			}
			if r.onUpdate != nil {
				r.onUpdate(err)
			}
		case <-r.stopChan:
			slog.Info("Catalog refresher stopped")
			return
		case <-ctx.Done():
			slog.Info("Catalog refresher stopped due to context cancellation")
			return
		}
	}
}

func (r *Refresher) Stop() {
	close(r.stopChan)
}
