package metrics

import (
	coremetrics "github.com/loadaxis/fleetopt/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records optimization events in Prometheus metrics.
type PromSink struct {
	assignments  *prometheus.CounterVec
	reviews      prometheus.Counter
	swaps        prometheus.Counter
	revenue      prometheus.Counter
	utilization  prometheus.Gauge
	tickDuration prometheus.Histogram
}

// NewPromSink registers optimization metrics on the default Prometheus
// registerer. The Prometheus server should be started separately using
// cfg.PrometheusAddr.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	assignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "load_assignments_total",
		Help: "Total number of committed load assignments",
	}, []string{"strategy"})
	reviews := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "review_queue_entries_total",
		Help: "Total number of proposals queued for manual review",
	})
	swaps := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cross_driver_swaps_total",
		Help: "Total number of implemented cross-driver load swaps",
	})
	revenue := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assigned_revenue_dollars_total",
		Help: "Cumulative revenue of committed assignments",
	})
	utilization := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_utilization_pct",
		Help: "Mean capacity utilization across active drivers",
	})
	tickDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tick_duration_seconds",
		Help:    "Wall time of one optimization pass",
		Buckets: prometheus.DefBuckets,
	})

	if err := reg.Register(assignments); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			assignments = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(reviews); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			reviews = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(swaps); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			swaps = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(revenue); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			revenue = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(utilization); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			utilization = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(tickDuration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			tickDuration = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}

	return &PromSink{
		assignments:  assignments,
		reviews:      reviews,
		swaps:        swaps,
		revenue:      revenue,
		utilization:  utilization,
		tickDuration: tickDuration,
	}, nil
}

// RecordAssignment increments the assignment counter for the strategy.
func (s *PromSink) RecordAssignment(rec coremetrics.AssignmentRecord) error {
	s.assignments.WithLabelValues(rec.Strategy).Inc()
	s.revenue.Add(rec.Revenue)
	return nil
}

// RecordTick records the pass duration and fleet utilization.
func (s *PromSink) RecordTick(rec coremetrics.TickRecord) error {
	s.tickDuration.Observe(rec.Duration.Seconds())
	s.utilization.Set(rec.MeanUtilizationPct)
	return nil
}

// RecordReview counts proposals sent to manual review.
func (s *PromSink) RecordReview(coremetrics.ReviewRecord) error {
	s.reviews.Inc()
	return nil
}

// RecordSwap counts implemented load swaps.
func (s *PromSink) RecordSwap(coremetrics.SwapRecord) error {
	s.swaps.Inc()
	return nil
}
