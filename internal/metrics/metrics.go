// Package metrics holds the Prometheus instrumentation for the upload,
// download, and worker pipelines.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics the server exposes at /metrics.
type Metrics struct {
	UploadsTotal     *prometheus.CounterVec
	UploadDuration   prometheus.Histogram
	DownloadsTotal   *prometheus.CounterVec
	DownloadDuration prometheus.Histogram

	WorkerJobsTotal    *prometheus.CounterVec
	WorkerJobDuration  prometheus.Histogram
	WorkerRetries      prometheus.Counter
	WorkerDeadLettered prometheus.Counter
	QueueDepth         prometheus.Gauge
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		UploadsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "syncx_uploads_total",
				Help: "Total number of UploadFiles RPCs, by outcome.",
			},
			[]string{"outcome"}, // ok, invalid, unauthenticated, checksum_mismatch, internal
		),
		UploadDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "syncx_upload_duration_seconds",
				Help:    "Duration of an UploadFiles stream from first chunk to reply.",
				Buckets: prometheus.DefBuckets,
			},
		),
		DownloadsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "syncx_downloads_total",
				Help: "Total number of DownloadFile RPCs, by outcome.",
			},
			[]string{"outcome"}, // ok, not_found, unauthenticated, internal
		),
		DownloadDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "syncx_download_duration_seconds",
				Help:    "Duration of a DownloadFile stream from request to last byte.",
				Buckets: prometheus.DefBuckets,
			},
		),
		WorkerJobsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "syncx_worker_jobs_total",
				Help: "Total number of ingest jobs processed, by terminal state.",
			},
			[]string{"state"}, // done, dead_lettered
		),
		WorkerJobDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "syncx_worker_job_duration_seconds",
				Help:    "Duration of one ingest job from dequeue to its terminal state.",
				Buckets: prometheus.DefBuckets,
			},
		),
		WorkerRetries: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "syncx_worker_retries_total",
				Help: "Total number of ingest job retry attempts.",
			},
		),
		WorkerDeadLettered: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "syncx_worker_dead_lettered_total",
				Help: "Total number of ingest jobs that exhausted retries and were dead-lettered.",
			},
		),
		QueueDepth: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "syncx_queue_depth",
				Help: "Number of jobs waiting in the ingest queue. Registered, but no component of this server sets it.",
			},
		),
	}
}
