package fleet

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/loadaxis/fleetopt/core/consolidation"
	"github.com/loadaxis/fleetopt/core/events"
	"github.com/loadaxis/fleetopt/core/model"
	"github.com/loadaxis/fleetopt/infra/logger"
	"github.com/loadaxis/fleetopt/internal/eventbus"
)

type fakeEstimator struct {
	miles    map[[2]string]float64
	fallback float64
	fail     bool
}

func (f fakeEstimator) Estimate(_ context.Context, from, to string) (consolidation.Leg, error) {
	if f.fail {
		return consolidation.Leg{}, fmt.Errorf("estimator down")
	}
	if from == to {
		return consolidation.Leg{}, nil
	}
	miles := f.fallback
	if m, ok := f.miles[[2]string{from, to}]; ok {
		miles = m
	}
	return consolidation.Leg{Miles: miles, Minutes: miles / 55 * 60}, nil
}

type memLoadStore struct {
	mu      sync.Mutex
	loads   map[string]model.Load
	claimed map[string]string
}

func newMemLoadStore(loads ...model.Load) *memLoadStore {
	s := &memLoadStore{loads: map[string]model.Load{}, claimed: map[string]string{}}
	for _, l := range loads {
		s.loads[l.ID] = l
	}
	return s
}

func (s *memLoadStore) ListAvailable(_ context.Context, _ LoadFilter) ([]model.Load, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Load
	for id, l := range s.loads {
		if _, taken := s.claimed[id]; !taken {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *memLoadStore) Claim(_ context.Context, loadID, driverID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if owner, taken := s.claimed[loadID]; taken && owner != driverID {
		return ErrAlreadyClaimed
	}
	s.claimed[loadID] = driverID
	return nil
}

func (s *memLoadStore) Release(_ context.Context, loadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.claimed, loadID)
	return nil
}

func (s *memLoadStore) owners() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.claimed))
	for k, v := range s.claimed {
		out[k] = v
	}
	return out
}

type memDriverStore struct {
	mu       sync.RWMutex
	targets  []model.DriverUtilizationTarget
	statuses map[string]model.DriverStatus
	panicOn  string
}

func newMemDriverStore(targets ...model.DriverUtilizationTarget) *memDriverStore {
	s := &memDriverStore{targets: targets, statuses: map[string]model.DriverStatus{}}
	for _, t := range targets {
		s.statuses[t.Driver.DriverID] = model.DriverStatus{
			DriverID:        t.Driver.DriverID,
			CurrentLocation: t.Driver.Location(),
			Available:       true,
		}
	}
	return s
}

func (s *memDriverStore) ListActive(_ context.Context) ([]model.DriverUtilizationTarget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.DriverUtilizationTarget(nil), s.targets...), nil
}

func (s *memDriverStore) GetStatus(_ context.Context, driverID string) (model.DriverStatus, error) {
	if driverID == s.panicOn {
		panic("corrupt driver record")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.statuses[driverID]
	if !ok {
		return model.DriverStatus{}, fmt.Errorf("unknown driver %s", driverID)
	}
	return status, nil
}

func (s *memDriverStore) UpdateStatus(_ context.Context, driverID string, patch model.StatusPatch) (model.DriverStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.statuses[driverID]
	if !ok {
		return model.DriverStatus{}, fmt.Errorf("unknown driver %s", driverID)
	}
	updated := patch.Apply(status)
	s.statuses[driverID] = updated
	return updated, nil
}

func (s *memDriverStore) status(driverID string) model.DriverStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statuses[driverID]
}

type notification struct {
	Channel Channel
	Message string
	Meta    map[string]string
}

type recordingSink struct {
	mu     sync.Mutex
	events []notification
}

func (s *recordingSink) Notify(_ context.Context, ch Channel, message string, meta map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, notification{Channel: ch, Message: message, Meta: meta})
	return nil
}

func (s *recordingSink) countOutcome(outcome string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for _, ev := range s.events {
		if ev.Meta["outcome"] == outcome {
			n++
		}
	}
	return n
}

type reviewEntry struct {
	TriggerID string
	Route     model.TimeOptimizedRoute
	Driver    model.DriverAvailabilityWindow
}

type memReviewQueue struct {
	mu      sync.Mutex
	entries []reviewEntry
}

func (q *memReviewQueue) Enqueue(_ context.Context, triggerID string, route model.TimeOptimizedRoute, driver model.DriverAvailabilityWindow) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = append(q.entries, reviewEntry{TriggerID: triggerID, Route: route, Driver: driver})
	return nil
}

func (q *memReviewQueue) snapshot() []reviewEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]reviewEntry(nil), q.entries...)
}

func newTestEngine(t *testing.T, cfg Config, est consolidation.DistanceEstimator, loads LoadStore, drivers DriverStore, sink NotificationSink, queue ReviewQueue) *Engine {
	t.Helper()
	opt, err := consolidation.New(est, nil, consolidation.Options{}, logger.NopLogger{})
	require.NoError(t, err)
	gate, err := NewGate(cfg, sink, queue, logger.NopLogger{})
	require.NoError(t, err)
	eng, err := NewEngine(cfg, opt, est, loads, drivers, gate, sink, eventbus.New[events.Event](), logger.NopLogger{})
	require.NoError(t, err)
	return eng
}

func testTarget(id string, base time.Time) model.DriverUtilizationTarget {
	return model.DriverUtilizationTarget{
		Driver: model.DriverAvailabilityWindow{
			DriverID:       id,
			DriverName:     "Driver " + id,
			AvailableFrom:  base,
			AvailableTo:    base.AddDate(0, 0, 7),
			MaxWeeklyHours: 60,
			HomeBase:       "toledo_oh",
		},
		Capacity: model.DefaultTruckCapacity(),
	}
}

func fleetLoad(id string, revenue float64, base time.Time) model.Load {
	return model.Load{
		ID:          id,
		Origin:      "toledo_oh",
		Destination: "lansing_mi",
		WeightLb:    8000,
		Dimensions:  model.Dimensions{LengthFt: 8, WidthFt: 8, HeightFt: 8},
		PalletCount: 4,
		Revenue:     revenue,
		Pickup:      model.TimeWindow{Start: base.Add(2 * time.Hour), End: base.Add(6 * time.Hour)},
		Delivery:    model.TimeWindow{Start: base.Add(8 * time.Hour), End: base.Add(14 * time.Hour)},
	}
}
