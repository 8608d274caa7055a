// Package metrics holds the Prometheus collectors for the bot.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	updatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tubefetch_updates_total",
		Help: "Inbound updates dispatched, by kind",
	}, []string{"kind"}) // kind=message|callback|unknown

	pollErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tubefetch_poll_errors_total",
		Help: "Failed long-poll requests that triggered a backoff",
	})

	updateCursor = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tubefetch_update_cursor",
		Help: "Next update sequence number the loop will request",
	})

	outcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tubefetch_outcomes_total",
		Help: "Dispatch outcomes by kind",
	}, []string{"outcome"})

	downloadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tubefetch_download_duration_seconds",
		Help:    "Wall-clock time of fetch program runs",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	}, []string{"format"})

	artifactBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tubefetch_artifact_bytes",
		Help:    "Size of produced artifacts",
		Buckets: prometheus.ExponentialBuckets(1<<20, 2, 8),
	}, []string{"format"})

	rateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tubefetch_rate_limited_total",
		Help: "Download requests rejected by the per-chat rate limit",
	})

	sendRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tubefetch_send_retries_total",
		Help: "Retried outbound Telegram calls, by operation",
	}, []string{"op"})

	droppedUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tubefetch_dropped_updates_total",
		Help: "Updates accepted from the source but never handled",
	}, []string{"reason"}) // reason=queue_full|stopped|shutdown

	janitorRemovedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tubefetch_janitor_removed_total",
		Help: "Entries removed by periodic cleanup jobs",
	}, []string{"job"}) // job=sessions|files
)

func RecordUpdate(kind string) {
	updatesTotal.WithLabelValues(kind).Inc()
}

func RecordPollError() {
	pollErrorsTotal.Inc()
}

func SetCursor(offset int64) {
	updateCursor.Set(float64(offset))
}

func RecordOutcome(outcome string) {
	outcomesTotal.WithLabelValues(outcome).Inc()
}

// RecordDownload observes one fetch run. size is ignored when zero.
func RecordDownload(format string, elapsed time.Duration, size int64) {
	downloadDuration.WithLabelValues(format).Observe(elapsed.Seconds())
	if size > 0 {
		artifactBytes.WithLabelValues(format).Observe(float64(size))
	}
}

func RecordRateLimited() {
	rateLimitedTotal.Inc()
}

func RecordSendRetry(op string) {
	sendRetriesTotal.WithLabelValues(op).Inc()
}

func RecordDroppedUpdates(reason string, n int) {
	if n > 0 {
		droppedUpdatesTotal.WithLabelValues(reason).Add(float64(n))
	}
}

func RecordCleanup(job string, n int) {
	if n > 0 {
		janitorRemovedTotal.WithLabelValues(job).Add(float64(n))
	}
}
