package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imagefetch_records_total",
			Help: "Processed spreadsheet rows by outcome.",
		},
		[]string{"outcome"}, // converted, skipped, fetch_failed, conversion_failed
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "imagefetch_fetch_duration_seconds",
			Help:    "Duration of image downloads.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"status"}, // success, failure
	)

	DownloadedBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "imagefetch_downloaded_bytes_total",
			Help: "Bytes of image data downloaded.",
		},
	)

	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imagefetch_runs_total",
			Help: "Pipeline runs by result.",
		},
		[]string{"result"}, // completed, failed
	)

	RunProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "imagefetch_run_progress_ratio",
			Help: "Share of rows processed in the most recent run.",
		},
	)
)
