package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/JonMunkholm/geoentities/internal/logging"
)

// Observer receives import progress. Calls are made synchronously from the
// importing goroutine, so implementations must not block for long.
type Observer interface {
	RunStarted(ctx context.Context, runID string)
	StageStarted(ctx context.Context, runID string, stage Stage) // download begins
	StageSaving(ctx context.Context, runID string, stage Stage)  // header accepted, rows being written
	StageSaved(ctx context.Context, runID string, result StageResult)
	RunFinished(ctx context.Context, result *ImportResult, err error)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) RunStarted(context.Context, string)                {}
func (NopObserver) StageStarted(context.Context, string, Stage)       {}
func (NopObserver) StageSaving(context.Context, string, Stage)        {}
func (NopObserver) StageSaved(context.Context, string, StageResult)   {}
func (NopObserver) RunFinished(context.Context, *ImportResult, error) {}

// MultiObserver fans events out to several observers in order.
type MultiObserver []Observer

func (m MultiObserver) RunStarted(ctx context.Context, runID string) {
	for _, o := range m {
		o.RunStarted(ctx, runID)
	}
}

func (m MultiObserver) StageStarted(ctx context.Context, runID string, stage Stage) {
	for _, o := range m {
		o.StageStarted(ctx, runID, stage)
	}
}

func (m MultiObserver) StageSaving(ctx context.Context, runID string, stage Stage) {
	for _, o := range m {
		o.StageSaving(ctx, runID, stage)
	}
}

func (m MultiObserver) StageSaved(ctx context.Context, runID string, result StageResult) {
	for _, o := range m {
		o.StageSaved(ctx, runID, result)
	}
}

func (m MultiObserver) RunFinished(ctx context.Context, result *ImportResult, err error) {
	for _, o := range m {
		o.RunFinished(ctx, result, err)
	}
}

// LogObserver writes human-readable status lines to a slog.Logger.
type LogObserver struct {
	Logger *slog.Logger
}

// NewLogObserver returns a LogObserver; a nil logger means slog.Default().
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{Logger: logger}
}

// log returns the logger for ctx; the importer puts the run id there.
func (o *LogObserver) log(ctx context.Context) *slog.Logger {
	return logging.Enrich(ctx, o.Logger)
}

func (o *LogObserver) RunStarted(ctx context.Context, _ string) {
	o.log(ctx).InfoContext(ctx, "Starting geo data import")
}

func (o *LogObserver) StageStarted(ctx context.Context, _ string, stage Stage) {
	o.log(ctx).InfoContext(ctx, "Downloading "+string(stage.Resource())+"...")
}

func (o *LogObserver) StageSaving(ctx context.Context, _ string, stage Stage) {
	o.log(ctx).InfoContext(ctx, "Saving "+stage.Label+" to DB...")
}

func (o *LogObserver) StageSaved(ctx context.Context, _ string, result StageResult) {
	o.log(ctx).InfoContext(ctx, result.Stage.Label+" saved to DB",
		"rows", result.Rows,
		"written", result.Written,
		"skipped", result.Skipped,
		"bytes", result.Bytes,
		"duration", result.Duration.Round(time.Millisecond),
	)
}

func (o *LogObserver) RunFinished(ctx context.Context, result *ImportResult, err error) {
	if err != nil {
		msg := MapError(err)
		o.log(ctx).ErrorContext(ctx, "Geo data import failed, no changes were saved",
			"error", err,
			"code", msg.Code,
		)
		return
	}
	rows, written := result.Totals()
	o.log(ctx).InfoContext(ctx, "Geo data import finished",
		"rows", rows,
		"written", written,
		"duration", result.Duration.Round(time.Millisecond),
	)
}
