package fleet

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loadaxis/fleetopt/core/consolidation"
	"github.com/loadaxis/fleetopt/core/model"
)

// deadlineGuardEstimator counts lookups whose context arrives without a
// deadline. A slow road-network backend must never be able to stall a tick.
type deadlineGuardEstimator struct {
	inner     fakeEstimator
	mu        sync.Mutex
	calls     int
	unbounded int
}

func (d *deadlineGuardEstimator) Estimate(ctx context.Context, from, to string) (consolidation.Leg, error) {
	d.mu.Lock()
	d.calls++
	if _, ok := ctx.Deadline(); !ok {
		d.unbounded++
	}
	d.mu.Unlock()
	return d.inner.Estimate(ctx, from, to)
}

func (d *deadlineGuardEstimator) stats() (calls, unbounded int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls, d.unbounded
}

func TestRunTickNeverDoubleAssignsALoad(t *testing.T) {
	base := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	loads := newMemLoadStore(fleetLoad("L1", 5000, base))
	drivers := newMemDriverStore(testTarget("D1", base), testTarget("D2", base))
	e := newTestEngine(t, Config{}, fakeEstimator{fallback: 120}, loads, drivers, &recordingSink{}, &memReviewQueue{})

	res := e.RunTick(context.Background())

	assert.Equal(t, 2, res.DriversEvaluated)
	assert.Equal(t, 1, res.ProposalsImplemented)
	assert.Equal(t, 1, res.DriversSkipped)

	owners := loads.owners()
	require.Len(t, owners, 1)

	winner := owners["L1"]
	assert.Len(t, drivers.status(winner).CurrentLoads, 1)
	for _, id := range []string{"D1", "D2"} {
		if id != winner {
			assert.Empty(t, drivers.status(id).CurrentLoads)
		}
	}
}

func TestRunTickBoundsEveryDistanceLookup(t *testing.T) {
	base := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	loads := newMemLoadStore(fleetLoad("L1", 5000, base))
	drivers := newMemDriverStore(testTarget("D1", base))
	est := &deadlineGuardEstimator{inner: fakeEstimator{fallback: 120}}
	e := newTestEngine(t, Config{}, est, loads, drivers, &recordingSink{}, &memReviewQueue{})

	res := e.RunTick(context.Background())
	require.Equal(t, 1, res.ProposalsImplemented)

	calls, unbounded := est.stats()
	require.Positive(t, calls)
	assert.Zero(t, unbounded, "distance lookups reached the estimator without a deadline")
}

func TestRunTickIsIdempotent(t *testing.T) {
	base := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	loads := newMemLoadStore(fleetLoad("L1", 5000, base))
	drivers := newMemDriverStore(testTarget("D1", base))
	e := newTestEngine(t, Config{}, fakeEstimator{fallback: 120}, loads, drivers, &recordingSink{}, &memReviewQueue{})

	first := e.RunTick(context.Background())
	assert.Equal(t, 1, first.ProposalsImplemented)

	second := e.RunTick(context.Background())
	assert.Equal(t, 0, second.ProposalsImplemented)
	assert.Len(t, loads.owners(), 1)
	assert.Len(t, drivers.status("D1").CurrentLoads, 1)
}

func TestRunTickIsolatesPanickingDriver(t *testing.T) {
	base := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	loads := newMemLoadStore(fleetLoad("L1", 5000, base))
	drivers := newMemDriverStore(testTarget("D1", base), testTarget("BAD", base), testTarget("D2", base))
	drivers.panicOn = "BAD"
	e := newTestEngine(t, Config{}, fakeEstimator{fallback: 120}, loads, drivers, &recordingSink{}, &memReviewQueue{})

	res := e.RunTick(context.Background())

	assert.Equal(t, 1, res.Errors)
	assert.Equal(t, 2, res.DriversEvaluated)
	assert.Equal(t, 1, res.ProposalsImplemented)
}

func TestRunTickQueuesReviewForHazmat(t *testing.T) {
	base := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	hazmat := fleetLoad("L1", 5000, base)
	hazmat.Hazmat = true

	loads := newMemLoadStore(hazmat)
	drivers := newMemDriverStore(testTarget("D1", base))
	queue := &memReviewQueue{}
	e := newTestEngine(t, Config{}, fakeEstimator{fallback: 120}, loads, drivers, &recordingSink{}, queue)

	res := e.RunTick(context.Background())

	assert.Equal(t, 1, res.ProposalsQueued)
	assert.Equal(t, 0, res.ProposalsImplemented)
	require.Len(t, queue.snapshot(), 1)
	// Queued proposals claim nothing until a human approves them.
	assert.Empty(t, loads.owners())
}

func TestRunTickSkipsSaturatedDriver(t *testing.T) {
	base := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	loads := newMemLoadStore(fleetLoad("L1", 5000, base))
	drivers := newMemDriverStore(testTarget("D1", base))
	drivers.statuses["D1"] = model.DriverStatus{
		DriverID:         "D1",
		CurrentLocation:  "toledo_oh",
		HoursWorkedToday: 10.8,
		Available:        true,
	}
	e := newTestEngine(t, Config{}, fakeEstimator{fallback: 120}, loads, drivers, &recordingSink{}, &memReviewQueue{})

	res := e.RunTick(context.Background())

	assert.Equal(t, 1, res.DriversSkipped)
	assert.Empty(t, loads.owners())
}

func TestRunStopsOnCancel(t *testing.T) {
	base := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	loads := newMemLoadStore()
	drivers := newMemDriverStore(testTarget("D1", base))
	e := newTestEngine(t, Config{}, fakeEstimator{fallback: 120}, loads, drivers, &recordingSink{}, &memReviewQueue{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
