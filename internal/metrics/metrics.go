// Package metrics exposes import progress as Prometheus metrics.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/geoentities/internal/core"
)

// Metrics records import runs. It implements core.Observer.
type Metrics struct {
	registry *prometheus.Registry

	RowsRead      *prometheus.CounterVec
	RowsWritten   *prometheus.CounterVec
	RowsSkipped   *prometheus.CounterVec
	BytesRead     *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	Runs          *prometheus.CounterVec
	RunDuration   prometheus.Histogram
	LastSuccess   prometheus.Gauge
}

var _ core.Observer = (*Metrics)(nil)

// New creates the import metrics on a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg)
}

// NewWithRegistry registers the import metrics on reg only.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RowsRead: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "geodata_import_rows_read_total",
			Help: "CSV data rows read, by entity",
		}, []string{"entity"}),
		RowsWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "geodata_import_rows_written_total",
			Help: "Rows inserted or updated, by entity",
		}, []string{"entity"}),
		RowsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "geodata_import_rows_skipped_total",
			Help: "Rows left untouched because their id already existed, by entity",
		}, []string{"entity"}),
		BytesRead: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "geodata_import_bytes_read_total",
			Help: "Bytes downloaded, by entity",
		}, []string{"entity"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geodata_import_stage_duration_seconds",
			Help:    "Duration of one import stage, download through insert",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}, []string{"entity"}),
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "geodata_import_runs_total",
			Help: "Import runs, by outcome (success or the error code)",
		}, []string{"outcome"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "geodata_import_run_duration_seconds",
			Help:    "Duration of a whole import run",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
		}),
		LastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "geodata_import_last_success_timestamp_seconds",
			Help: "Unix time of the last committed import",
		}),
	}
}

// WriteTextfile writes the current values to path in the text format read by
// the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) RunStarted(context.Context, string)               {}
func (m *Metrics) StageStarted(context.Context, string, core.Stage) {}
func (m *Metrics) StageSaving(context.Context, string, core.Stage)  {}

// StageSaved counts the stage's rows. Counts are recorded even when a later
// stage rolls the run back; the runs counter tells the two apart.
func (m *Metrics) StageSaved(_ context.Context, _ string, r core.StageResult) {
	e := string(r.Entity)
	m.RowsRead.WithLabelValues(e).Add(float64(r.Rows))
	m.RowsWritten.WithLabelValues(e).Add(float64(r.Written))
	m.RowsSkipped.WithLabelValues(e).Add(float64(r.Skipped))
	m.BytesRead.WithLabelValues(e).Add(float64(r.Bytes))
	m.StageDuration.WithLabelValues(e).Observe(r.Duration.Seconds())
}

func (m *Metrics) RunFinished(_ context.Context, result *core.ImportResult, err error) {
	if err != nil {
		m.Runs.WithLabelValues(core.MapError(err).Code).Inc()
		return
	}
	m.Runs.WithLabelValues("success").Inc()
	m.RunDuration.Observe(result.Duration.Seconds())
	m.LastSuccess.Set(float64(result.Started.Add(result.Duration).Unix()))
}
