package pathnet

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for nextPathTotal.
const (
	outcomeContinued    = "continued"
	outcomeTerminal     = "terminal"
	outcomeTypeMismatch = "type_mismatch"
)

var (
	rebuildTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pathnet_rebuild_total",
		Help: "Total number of network rebuilds",
	})

	rebuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pathnet_rebuild_duration_seconds",
		Help:    "Time spent rebuilding the path network",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	})

	networkPaths = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pathnet_paths",
		Help: "Number of paths in the most recently built network",
	})

	nextPathTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pathnet_next_path_total",
		Help: "Next-path selections by outcome and vehicle type",
	}, []string{"outcome", "vehicle_type"})

	closebyCandidates = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pathnet_closeby_candidates",
		Help:    "Number of R-tree candidates examined per close-by ends query",
		Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64},
	})
)
