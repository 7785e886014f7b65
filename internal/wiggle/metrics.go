package wiggle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricCycles = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wiggler",
		Name:      "cycles_total",
		Help:      "Completed pointer movement cycles.",
	})
	metricCyclesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wiggler",
		Name:      "cycles_skipped_total",
		Help:      "Cycles skipped because the user was active.",
	})
	metricMoveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wiggler",
		Name:      "move_failures_total",
		Help:      "Cycles that failed to move the pointer.",
	})
	metricWiggling = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "wiggler",
		Name:      "wiggling",
		Help:      "1 while a wiggle session is running.",
	})
)
