// Package stores provides the load/driver store adapters behind the
// collaborator seams of the optimization loop: an in-memory implementation
// for tests and single-node deployments, and a PostgreSQL-backed one.
package stores

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/loadaxis/fleetopt/core/fleet"
	"github.com/loadaxis/fleetopt/core/model"
)

// MemoryLoadStore keeps the load inventory in memory. Claim is atomic under
// the store mutex, satisfying the compare-and-swap contract.
type MemoryLoadStore struct {
	mu      sync.RWMutex
	loads   map[string]model.Load
	claimed map[string]string
	region  func(location string) string
}

// NewMemoryLoadStore creates an empty store. The region function is used by
// ListAvailable filters; nil disables region filtering.
func NewMemoryLoadStore(region func(string) string) *MemoryLoadStore {
	return &MemoryLoadStore{
		loads:   map[string]model.Load{},
		claimed: map[string]string{},
		region:  region,
	}
}

// Put adds or replaces a load.
func (s *MemoryLoadStore) Put(l model.Load) error {
	if err := l.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.loads[l.ID] = l
	s.mu.Unlock()
	return nil
}

// ListAvailable returns unclaimed loads matching the filter, ordered by id
// for deterministic evaluation.
func (s *MemoryLoadStore) ListAvailable(_ context.Context, f fleet.LoadFilter) ([]model.Load, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Load, 0, len(s.loads))
	for id, l := range s.loads {
		if _, taken := s.claimed[id]; taken {
			continue
		}
		if f.Region != "" && s.region != nil && s.region(l.Origin) != f.Region {
			continue
		}
		if !f.PickupAfter.IsZero() && l.Pickup.Start.Before(f.PickupAfter) {
			continue
		}
		if !f.PickupBefore.IsZero() && l.Pickup.Start.After(f.PickupBefore) {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Claim atomically assigns the load to the driver. A load already claimed by
// another driver returns fleet.ErrAlreadyClaimed; re-claiming by the same
// driver is idempotent.
func (s *MemoryLoadStore) Claim(_ context.Context, loadID, driverID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.loads[loadID]; !exists {
		return fmt.Errorf("stores: unknown load %s", loadID)
	}
	if owner, taken := s.claimed[loadID]; taken && owner != driverID {
		return fleet.ErrAlreadyClaimed
	}
	s.claimed[loadID] = driverID
	return nil
}

// Release returns the load to the available pool.
func (s *MemoryLoadStore) Release(_ context.Context, loadID string) error {
	s.mu.Lock()
	delete(s.claimed, loadID)
	s.mu.Unlock()
	return nil
}

// Owner reports who currently holds the load, if anyone.
func (s *MemoryLoadStore) Owner(loadID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owner, ok := s.claimed[loadID]
	return owner, ok
}

// MemoryDriverStore keeps driver targets and live statuses in memory.
// Updates go through StatusPatch so concurrent readers never observe a
// half-written status.
type MemoryDriverStore struct {
	mu       sync.RWMutex
	targets  map[string]model.DriverUtilizationTarget
	statuses map[string]model.DriverStatus
}

// NewMemoryDriverStore creates an empty store.
func NewMemoryDriverStore() *MemoryDriverStore {
	return &MemoryDriverStore{
		targets:  map[string]model.DriverUtilizationTarget{},
		statuses: map[string]model.DriverStatus{},
	}
}

// PutDriver registers or replaces a driver with a fresh available status.
func (s *MemoryDriverStore) PutDriver(t model.DriverUtilizationTarget) error {
	if err := t.Driver.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := t.Driver.DriverID
	s.targets[id] = t
	if _, exists := s.statuses[id]; !exists {
		s.statuses[id] = model.DriverStatus{
			DriverID:        id,
			CurrentLocation: t.Driver.Location(),
			Available:       true,
		}
	}
	return nil
}

// ListActive returns all registered drivers ordered by id.
func (s *MemoryDriverStore) ListActive(_ context.Context) ([]model.DriverUtilizationTarget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.DriverUtilizationTarget, 0, len(s.targets))
	for _, t := range s.targets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Driver.DriverID < out[j].Driver.DriverID })
	return out, nil
}

// GetStatus returns the driver's live status.
func (s *MemoryDriverStore) GetStatus(_ context.Context, driverID string) (model.DriverStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.statuses[driverID]
	if !ok {
		return model.DriverStatus{}, fmt.Errorf("stores: unknown driver %s", driverID)
	}
	return status, nil
}

// UpdateStatus applies the patch atomically and returns the new status.
func (s *MemoryDriverStore) UpdateStatus(_ context.Context, driverID string, patch model.StatusPatch) (model.DriverStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.statuses[driverID]
	if !ok {
		return model.DriverStatus{}, fmt.Errorf("stores: unknown driver %s", driverID)
	}
	updated := patch.Apply(status)
	s.statuses[driverID] = updated
	return updated, nil
}

// MemoryReviewQueue collects proposals awaiting human review.
type MemoryReviewQueue struct {
	mu      sync.Mutex
	entries []ReviewEntry
}

// ReviewEntry is one queued proposal.
type ReviewEntry struct {
	TriggerID string
	Route     model.TimeOptimizedRoute
	Driver    model.DriverAvailabilityWindow
}

// NewMemoryReviewQueue creates an empty queue.
func NewMemoryReviewQueue() *MemoryReviewQueue {
	return &MemoryReviewQueue{}
}

// Enqueue appends the proposal.
func (q *MemoryReviewQueue) Enqueue(_ context.Context, triggerID string, route model.TimeOptimizedRoute, driver model.DriverAvailabilityWindow) error {
	q.mu.Lock()
	q.entries = append(q.entries, ReviewEntry{TriggerID: triggerID, Route: route, Driver: driver})
	q.mu.Unlock()
	return nil
}

// Pending returns a copy of the queued entries.
func (q *MemoryReviewQueue) Pending() []ReviewEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]ReviewEntry(nil), q.entries...)
}
