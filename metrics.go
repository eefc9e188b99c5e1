package partitionkey

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	derivationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "partitionkey",
			Name:      "derivations_total",
			Help:      "Partition keys derived, by the step that produced them.",
		},
		[]string{"source"},
	)

	derivationErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "partitionkey",
			Name:      "derivation_errors_total",
			Help:      "Events whose partition key could not be derived.",
		},
	)
)
