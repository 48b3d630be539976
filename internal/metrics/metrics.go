// Package metrics exposes Prometheus collectors for extraction runs.
//
// Collectors live on a private registry so several extractors in one
// process do not collide. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run statuses used for the runs counter.
const (
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Metrics holds the collectors for one registry.
type Metrics struct {
	registry *prometheus.Registry

	FramesScanned  prometheus.Counter
	Boundaries     prometheus.Counter
	ShotsExtracted prometheus.Counter
	DecodeFailures prometheus.Counter
	Runs           *prometheus.CounterVec
	StageDuration  *prometheus.HistogramVec
}

// New registers a fresh set of collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FramesScanned: factory.NewCounter(prometheus.CounterOpts{
			Name: "shotcut_frames_scanned_total",
			Help: "Frames analyzed by boundary detection",
		}),
		Boundaries: factory.NewCounter(prometheus.CounterOpts{
			Name: "shotcut_shot_intervals_total",
			Help: "Shot intervals produced by boundary detection",
		}),
		ShotsExtracted: factory.NewCounter(prometheus.CounterOpts{
			Name: "shotcut_shots_extracted_total",
			Help: "Shot images written",
		}),
		DecodeFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "shotcut_frame_decode_failures_total",
			Help: "Shots skipped because their frame could not be decoded",
		}),
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shotcut_runs_total",
			Help: "Extraction runs, by status",
		}, []string{"status"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shotcut_stage_duration_seconds",
			Help:    "Duration of each pipeline stage",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"stage"}),
	}
}

// Registry returns the registry the collectors are on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) AddFrames(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.FramesScanned.Add(float64(n))
}

func (m *Metrics) AddIntervals(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Boundaries.Add(float64(n))
}

func (m *Metrics) ShotSaved() {
	if m == nil {
		return
	}
	m.ShotsExtracted.Inc()
}

func (m *Metrics) DecodeFailure() {
	if m == nil {
		return
	}
	m.DecodeFailures.Inc()
}

func (m *Metrics) RunFinished(status string) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(status).Inc()
}

// WriteTextfile writes the registry in the text exposition format, for the
// node exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
