// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the certificate service.
var (
	// Counters.
	CertificatesGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certificates_generated_total",
			Help: "Total number of certificates generated",
		},
		[]string{"hackathon"},
	)

	BulkBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certificate_bulk_batches_total",
			Help: "Total number of bulk generation batches processed",
		},
		[]string{"status"}, // "ok", "rejected"
	)

	BulkRowErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "certificate_bulk_row_errors_total",
			Help: "Total number of rows rejected during bulk generation",
		},
	)

	VerifyLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certificate_verify_lookups_total",
			Help: "Total number of public verification lookups",
		},
		[]string{"result"}, // "found", "not_found"
	)

	RetrieveLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certificate_retrieve_lookups_total",
			Help: "Total number of self-service retrieval lookups",
		},
		[]string{"result"},
	)

	OrphanedBlobsSweptTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "certificate_orphaned_blobs_swept_total",
			Help: "Total number of orphaned rendered images removed by the sweeper",
		},
	)

	// Gauges.
	CertificatesIssued = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "certificates_issued",
			Help: "Current number of issued certificates in the registry",
		},
	)

	// Histograms.
	RenderDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "certificate_render_duration_seconds",
			Help:    "Time spent rendering one certificate image",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		},
	)
)
