// Package metrics exposes Prometheus collectors for calls made to the
// translation service and for pages served by the front-end.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	backendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apptranslator_backend_requests_total",
			Help: "Total number of requests sent to the translation service",
		},
		[]string{"endpoint", "status"},
	)

	backendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "apptranslator_backend_request_duration_seconds",
			Help:    "Duration of requests sent to the translation service in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0, 120.0},
		},
		[]string{"endpoint"},
	)

	uploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "apptranslator_upload_bytes_total",
			Help: "Total number of file bytes streamed to the upload endpoint",
		},
	)

	translationRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apptranslator_translation_rows_total",
			Help: "Total number of result rows rendered, by decoder and input mode",
		},
		[]string{"decoder", "mode"},
	)

	staleResponsesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "apptranslator_stale_responses_total",
			Help: "Responses discarded because a newer request was issued",
		},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apptranslator_http_requests_total",
			Help: "Total number of HTTP requests served by the front-end",
		},
		[]string{"route", "code"},
	)
)

// ObserveBackend records one call to the translation service. A status of
// zero means the request never got a response.
func ObserveBackend(endpoint string, status int, d time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	backendRequestsTotal.WithLabelValues(endpoint, label).Inc()
	backendRequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

func AddUploadBytes(n int) {
	if n > 0 {
		uploadBytesTotal.Add(float64(n))
	}
}

func AddRows(decoder, mode string, n int) {
	translationRowsTotal.WithLabelValues(decoder, mode).Add(float64(n))
}

// IncStale counts a response dropped because a newer request superseded it.
func IncStale() {
	staleResponsesTotal.Inc()
}

func ObserveHTTP(route string, code int) {
	httpRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
