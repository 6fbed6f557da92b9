package core

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/JonMunkholm/geoentities/internal/logging"
)

// Schedule runs an import immediately and then every interval until ctx is
// cancelled. With interval <= 0 it runs once. Failed runs are reported through
// the observer and do not stop the schedule.
func (im *Importer) Schedule(ctx context.Context, interval time.Duration) {
	slog.Info("import scheduler started", "interval", interval)

	im.runScheduled(ctx)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("import scheduler stopped")
			return
		case <-ticker.C:
			im.runScheduled(ctx)
		}
	}
}

func (im *Importer) runScheduled(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	_, err := im.Run(ctx)
	log := logging.FromContext(ctx)
	switch {
	case errors.Is(err, ErrImportRunning):
		log.Warn("scheduled import skipped, previous run still active")
	case err != nil:
		log.Debug("scheduled import failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
	default:
		log.Debug("scheduled import completed", "duration_ms", time.Since(start).Milliseconds())
	}
}
