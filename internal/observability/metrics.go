// Package observability provides Prometheus metrics for the application.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Video outcome label values.
const (
	OutcomeDownloaded = "downloaded"
	OutcomeSkipped    = "skipped"
	OutcomeFailed     = "failed"
)

// Source error kind label values.
const (
	ErrorKindRateLimited = "rate_limited"
	ErrorKindDownload    = "download"
	ErrorKindOther       = "other"
)

// Metrics holds all application metrics, registered on their own registry.
type Metrics struct {
	SyncRuns           prometheus.Counter
	Videos             *prometheus.CounterVec
	SourceErrors       *prometheus.CounterVec
	ListingRetries     prometheus.Counter
	DownloadDuration   prometheus.Histogram
	SourceSyncDuration prometheus.Histogram
	LastSyncCompleted  prometheus.Gauge
	SourcesConfigured  prometheus.Gauge

	registry *prometheus.Registry
}

// New creates and registers all application metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		SyncRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ytsync",
			Name:      "sync_runs_total",
			Help:      "Total number of full sync runs started",
		}),
		Videos: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ytsync",
			Name:      "videos_total",
			Help:      "Total number of per-video outcomes recorded in the ledger",
		}, []string{"outcome"}),
		SourceErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ytsync",
			Name:      "source_errors_total",
			Help:      "Total number of source-level listing errors by kind",
		}, []string{"kind"}),
		ListingRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ytsync",
			Name:      "listing_retries_total",
			Help:      "Total number of listing retries after rate-limit-like errors",
		}),
		DownloadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ytsync",
			Name:      "download_duration_seconds",
			Help:      "Histogram of single-video download duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		}),
		SourceSyncDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ytsync",
			Name:      "source_sync_duration_seconds",
			Help:      "Histogram of per-source sync duration in seconds",
			Buckets:   []float64{1, 10, 30, 60, 300, 600, 1800, 3600},
		}),
		LastSyncCompleted: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "ytsync",
			Name:      "last_sync_completed_timestamp_seconds",
			Help:      "Unix timestamp of the last completed sync run",
		}),
		SourcesConfigured: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "ytsync",
			Name:      "sources_configured",
			Help:      "Number of channels and playlists currently configured",
		}),
	}
}

// Handler returns the Prometheus HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRun increments the sync run counter.
func (m *Metrics) RecordRun() {
	m.SyncRuns.Inc()
}

// RecordRunCompleted stamps the last-success gauge.
func (m *Metrics) RecordRunCompleted() {
	m.LastSyncCompleted.SetToCurrentTime()
}

// RecordVideo records a per-video outcome.
func (m *Metrics) RecordVideo(outcome string) {
	m.Videos.WithLabelValues(outcome).Inc()
}

// RecordSourceError records a source-level listing error.
func (m *Metrics) RecordSourceError(kind string) {
	m.SourceErrors.WithLabelValues(kind).Inc()
}

// RecordListingRetry increments the listing retry counter.
func (m *Metrics) RecordListingRetry() {
	m.ListingRetries.Inc()
}

// DownloadTimer returns a function to record a download's duration.
func (m *Metrics) DownloadTimer() func() {
	start := time.Now()

	return func() {
		m.DownloadDuration.Observe(time.Since(start).Seconds())
	}
}

// SourceTimer returns a function to record a source sync's duration.
func (m *Metrics) SourceTimer() func() {
	start := time.Now()

	return func() {
		m.SourceSyncDuration.Observe(time.Since(start).Seconds())
	}
}

// SetSourcesConfigured sets the configured source count.
func (m *Metrics) SetSourcesConfigured(count int) {
	m.SourcesConfigured.Set(float64(count))
}
