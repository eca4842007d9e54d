package epoch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	epochTransitionSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "epoch_transition_seconds",
		Help:    "Time it took to process an epoch transition, in seconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
	})
	activeValidatorCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "active_validator_count",
		Help: "Number of validators active in the current epoch, as of the last processed epoch transition.",
	})
)
