package fleet

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	tickDuration         prometheus.Histogram
	driversEvaluated     prometheus.Counter
	proposalsImplemented *prometheus.CounterVec
	proposalsQueued      prometheus.Counter
	swapsImplemented     prometheus.Counter
	fleetUtilization     prometheus.Gauge
)

// newCollectors creates new metric collectors.
func newCollectors() (prometheus.Histogram, prometheus.Counter, *prometheus.CounterVec, prometheus.Counter, prometheus.Counter, prometheus.Gauge) {
	dur := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "optimization_tick_duration_seconds",
			Help:    "Wall time of one full optimization tick",
			Buckets: prometheus.DefBuckets,
		},
	)
	drv := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "drivers_evaluated_total",
			Help: "Number of per-driver evaluations run",
		},
	)
	impl := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proposals_implemented_total",
			Help: "Number of auto-approved proposals committed",
		},
		[]string{"strategy"},
	)
	queued := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "proposals_queued_total",
			Help: "Number of proposals sent to manual review",
		},
	)
	swaps := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "load_swaps_total",
			Help: "Number of cross-driver load swaps implemented",
		},
	)
	util := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fleet_mean_utilization_pct",
			Help: "Mean capacity utilization across active drivers",
		},
	)
	return dur, drv, impl, queued, swaps, util
}

func init() {
	tickDuration, driversEvaluated, proposalsImplemented, proposalsQueued, swapsImplemented, fleetUtilization = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers loop metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(tickDuration, driversEvaluated, proposalsImplemented, proposalsQueued, swapsImplemented, fleetUtilization)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	tickDuration, driversEvaluated, proposalsImplemented, proposalsQueued, swapsImplemented, fleetUtilization = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
