// Package metrics exposes the Prometheus registry used by the ranker.
// Metrics are defined in their respective packages (client, cache, ratelimit,
// ranking) to keep them next to the code they measure and avoid import
// cycles.
//
// This package provides the /metrics handler and a reference of all metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the HTTP handler serving the default registry, where
// promauto registers every metric listed below.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Ranking Metrics (pkg/ranking):
//   - ranking_runs_total{outcome} (Counter): Runs by outcome (ok, failed, invalid, cancelled)
//   - ranking_batches_total (Counter): Distance Matrix batches issued
//   - ranking_destinations_dropped_total{status} (Counter): Destinations dropped by element status
//
// Request Metrics (pkg/client):
//   - matrix_requests_total{status} (Counter): Requests by API status, HTTP status or local outcome
//   - matrix_request_duration_seconds (Histogram): Fetch duration including cache lookups
//   - matrix_errors_total{class} (Counter): Transport errors by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/client):
//   - matrix_retries_total{error_class} (Counter): Retry attempts by error class
//   - matrix_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - matrix_retry_exhausted_total{error_class} (Counter): Requests that exhausted max attempts
//
// Cache Metrics (pkg/cache):
//   - matrix_cache_hits_total{layer="redis"} (Counter): Cache hits by layer
//   - matrix_cache_misses_total (Counter): Cache misses
//   - matrix_cache_size_bytes{layer="redis"} (Gauge): Bytes written to the cache
//   - matrix_cache_errors_total{operation} (Counter): Cache operation errors
//
// Quota Metrics (pkg/ratelimit):
//   - matrix_quota_blocked (Gauge): 1 while a quota cooldown is active
//   - matrix_quota_blocks_total (Counter): Requests blocked by a cooldown
//   - matrix_quota_limits_total{status} (Counter): OVER_QUERY_LIMIT / OVER_DAILY_LIMIT seen
//   - matrix_pacer_wait_seconds (Histogram): Time spent waiting for a pacing token
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(matrix_cache_hits_total[5m])) /
//   (sum(rate(matrix_cache_hits_total[5m])) + sum(rate(matrix_cache_misses_total[5m])))
//
//   # Failed Run Ratio
//   sum(rate(ranking_runs_total{outcome="failed"}[5m])) / sum(rate(ranking_runs_total[5m]))
//
//   # Unresolvable Destinations
//   sum by (status) (rate(ranking_destinations_dropped_total[1h]))
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(matrix_request_duration_seconds_bucket[5m]))
