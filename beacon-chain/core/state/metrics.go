package state

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var blockTransitionSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "block_transition_seconds",
	Help:    "Time it took to process a block, excluding any slot catch-up.",
	Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
})
