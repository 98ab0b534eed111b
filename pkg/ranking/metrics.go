package ranking

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for ranking runs.
var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ranking_runs_total",
		Help: "Total ranking runs by outcome",
	}, []string{"outcome"})

	batchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ranking_batches_total",
		Help: "Total Distance Matrix batches issued by ranking runs",
	})

	droppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ranking_destinations_dropped_total",
		Help: "Destinations dropped because of a non-OK element status",
	}, []string{"status"})
)
