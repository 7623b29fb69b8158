package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ImagesUploadedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "imagenote_images_uploaded_total",
			Help: "Images accepted by the upload endpoint.",
		},
	)

	CommentsSubmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "imagenote_comments_submitted_total",
			Help: "Comments stored.",
		},
	)

	CSVExportsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "imagenote_csv_exports_total",
			Help: "CSV exports rendered.",
		},
	)
)
