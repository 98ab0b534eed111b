package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for quota tracking and pacing.
var (
	quotaBlocked = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "matrix_quota_blocked",
		Help: "1 while requests are blocked by a quota cooldown",
	})

	quotaBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matrix_quota_blocks_total",
		Help: "Total number of requests blocked by a quota cooldown",
	})

	quotaLimitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matrix_quota_limits_total",
		Help: "Total quota statuses reported by the API",
	}, []string{"status"})

	pacerWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "matrix_pacer_wait_seconds",
		Help:    "Time spent waiting for a pacing token",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
)
