// Package app assembles the optimization service from configuration.
package app

import (
	"context"
	"fmt"

	"github.com/loadaxis/fleetopt/config"
	"github.com/loadaxis/fleetopt/core/consolidation"
	"github.com/loadaxis/fleetopt/core/events"
	"github.com/loadaxis/fleetopt/core/fleet"
	coremetrics "github.com/loadaxis/fleetopt/core/metrics"
	"github.com/loadaxis/fleetopt/core/scheduler"
	"github.com/loadaxis/fleetopt/infra/distance"
	"github.com/loadaxis/fleetopt/infra/logger"
	"github.com/loadaxis/fleetopt/infra/metrics"
	"github.com/loadaxis/fleetopt/infra/notify"
	"github.com/loadaxis/fleetopt/infra/stores"
	"github.com/loadaxis/fleetopt/internal/eventbus"
)

// Service orchestrates the optimization engine and its collaborators.
type Service struct {
	Engine    *fleet.Engine
	Scheduler *scheduler.Scheduler
	Loads     fleet.LoadStore
	Drivers   fleet.DriverStore
	Reviews   *stores.MemoryReviewQueue

	cfg     *config.Config
	bus     *eventbus.Bus[events.Event]
	sink    coremetrics.MetricsSink
	log     logger.Logger
	closers []func() error
}

// New creates a Service from the configuration.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	svc := &Service{cfg: cfg, log: logg}

	est := distance.NewMatrix(cfg.Distance)
	opt, err := consolidation.New(est, nil, cfg.Optimizer.Options(), logger.New("optimizer"))
	if err != nil {
		return nil, fmt.Errorf("optimizer: %w", err)
	}
	svc.Scheduler, err = scheduler.New(opt, cfg.Scheduler)
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}

	switch cfg.Stores.Backend {
	case config.BackendPostgres:
		store, err := stores.NewPostgresLoadStore(ctx, cfg.Stores.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("postgres load store: %w", err)
		}
		svc.Loads = store
		svc.closers = append(svc.closers, func() error { store.Close(); return nil })
	default:
		svc.Loads = stores.NewMemoryLoadStore(consolidation.DefaultRegion)
	}
	svc.Drivers = stores.NewMemoryDriverStore()
	svc.Reviews = stores.NewMemoryReviewQueue()

	notifier, err := svc.buildNotifier(ctx)
	if err != nil {
		return nil, err
	}
	sink, err := svc.buildMetricsSink()
	if err != nil {
		return nil, err
	}

	svc.bus = eventbus.New[events.Event]()
	svc.closers = append(svc.closers, func() error { svc.bus.Close(); return nil })

	gate, err := fleet.NewGate(cfg.Fleet, notifier, svc.Reviews, logger.New("gate"))
	if err != nil {
		return nil, fmt.Errorf("gate: %w", err)
	}
	svc.Engine, err = fleet.NewEngine(cfg.Fleet, opt, est, svc.Loads, svc.Drivers, gate, notifier, svc.bus, logger.New("engine"))
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	svc.sink = sink
	return svc, nil
}

func (s *Service) buildNotifier(ctx context.Context) (fleet.NotificationSink, error) {
	sinks := []fleet.NotificationSink{notify.NewLogSink()}
	if mc := s.cfg.Notify.MQTT; mc != nil && mc.Broker != "" {
		sink, err := notify.NewMQTTSink(*mc)
		if err != nil {
			return nil, fmt.Errorf("mqtt notify sink: %w", err)
		}
		sinks = append(sinks, sink)
		s.closers = append(s.closers, func() error { sink.Close(); return nil })
	}
	if rc := s.cfg.Notify.Redis; rc != nil && rc.Addr != "" {
		sink, err := notify.NewRedisSink(ctx, *rc)
		if err != nil {
			return nil, fmt.Errorf("redis notify sink: %w", err)
		}
		sinks = append(sinks, sink)
		s.closers = append(s.closers, sink.Close)
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return notify.NewMultiSink(sinks...), nil
}

func (s *Service) buildMetricsSink() (coremetrics.MetricsSink, error) {
	var sinks []coremetrics.MetricsSink
	if s.cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(s.cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if s.cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(s.cfg.Metrics.Influx)
		sinks = append(sinks, sink)
		if closer, ok := sink.(*metrics.InfluxSink); ok {
			s.closers = append(s.closers, func() error { closer.Close(); return nil })
		}
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return metrics.NewMultiSink(sinks...), nil
	}
}

// Run starts the continuous optimization loop and blocks until the context is
// cancelled.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	return s.Engine.Run(ctx)
}

// RunTick executes a single optimization pass.
func (s *Service) RunTick(ctx context.Context) fleet.TickResult {
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	return s.Engine.RunTick(ctx)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}
