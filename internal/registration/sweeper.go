package registration

import (
	"context"
	"log/slog"
	"time"
)

type Sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// RunSweeper calls SweepExpired every interval until ctx is cancelled. Reads
// already ignore expired records, so a missed tick only delays cleanup.
func RunSweeper(ctx context.Context, s Sweeper, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("registration sweeper started", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			logger.Info("registration sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepExpired(ctx); err != nil {
				logger.Error("registration sweep failed", "error", err)
			}
		}
	}
}
