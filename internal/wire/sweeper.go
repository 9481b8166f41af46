package wire

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/nandaputra/homecrew/internal/domain/event"
	portbus "github.com/nandaputra/homecrew/internal/port/eventbus"
)

// startSweeper runs the unassigned-order sweep on a fixed interval, and also
// on demand whenever a worker comes online. The sweep itself is serialized by
// an advisory lock, so overlapping triggers are safe.
func startSweeper(ctx context.Context, app *App, bus portbus.EventBus) {
	interval := envDuration("SWEEP_INTERVAL_SECONDS", 300*time.Second)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := app.OrderSvc.SweepUnassigned(ctx); err != nil {
					slog.ErrorContext(ctx, "periodic sweep failed", "error", err)
				}
			}
		}
	}()

	sub, err := bus.Subscribe(ctx, event.ChannelWorker, func(ctx context.Context, ev event.Event) {
		if ev.Type != event.TypeWorkerOnline {
			return
		}
		if err := app.OrderSvc.SweepUnassigned(ctx); err != nil {
			slog.ErrorContext(ctx, "worker-online sweep failed", "error", err, "worker_id", ev.EntityID)
		}
	})
	if err != nil {
		slog.ErrorContext(ctx, "subscribing sweeper to worker events failed", "error", err)
		return
	}
	go func() {
		<-ctx.Done()
		sub.Unsubscribe()
	}()

	slog.Info("sweeper started", "interval", interval)
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		slog.Warn("invalid duration env var, using default", "key", key, "value", v)
		return fallback
	}
	return time.Duration(secs) * time.Second
}
