package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/ashureev/codexr/internal/metrics"
	"github.com/ashureev/codexr/internal/shared"
	"github.com/ashureev/codexr/internal/store"
)

// StartSessionSweeper runs a background goroutine that periodically deletes
// expired login sessions until ctx is cancelled.
func StartSessionSweeper(ctx context.Context, repo store.Repository, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("session sweeper started", "interval", interval)

		for {
			select {
			case <-ticker.C:
				sweepExpiredSessions(ctx, repo)
			case <-ctx.Done():
				slog.Info("session sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func sweepExpiredSessions(ctx context.Context, repo store.Repository) {
	var deleted int64
	err := shared.RetryOnConflict(ctx, 3, 50*time.Millisecond, "sweep sessions", func() error {
		n, err := repo.DeleteExpiredSessions(ctx, time.Now())
		deleted = n
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			slog.Debug("session sweep interrupted", "error", err)
			return
		}
		slog.Error("session sweeper failed", "error", err)
		return
	}
	if deleted > 0 {
		metrics.SessionsSwept.Add(float64(deleted))
		slog.Info("session sweeper removed expired sessions", "count", deleted)
	}
}
