package consolidation

import (
	"context"
	"errors"
	"time"

	"github.com/loadaxis/fleetopt/core/model"
	"github.com/loadaxis/fleetopt/infra/logger"
)

// stubEstimator resolves distances from a fixed table at 55 mph. Unknown
// pairs use the fallback distance.
type stubEstimator struct {
	miles    map[[2]string]float64
	fallback float64
	fail     bool
}

func (s stubEstimator) Estimate(_ context.Context, from, to string) (Leg, error) {
	if s.fail {
		return Leg{}, errors.New("distance provider unavailable")
	}
	if from == to {
		return Leg{}, nil
	}
	m, ok := s.miles[[2]string{from, to}]
	if !ok {
		m = s.fallback
	}
	return Leg{Miles: m, Minutes: m / 55 * 60}, nil
}

func testOptimizer(est DistanceEstimator) *Optimizer {
	o, err := New(est, nil, Options{}, logger.NopLogger{})
	if err != nil {
		panic(err)
	}
	return o
}

func window(start time.Time, hours int) model.TimeWindow {
	return model.TimeWindow{Start: start, End: start.Add(time.Duration(hours) * time.Hour)}
}

func testLoad(id, origin, dest string, weight float64, pallets int, revenue float64, base time.Time) model.Load {
	return model.Load{
		ID:          id,
		Origin:      origin,
		Destination: dest,
		WeightLb:    weight,
		Dimensions:  model.Dimensions{LengthFt: 10, WidthFt: 8, HeightFt: 8},
		PalletCount: pallets,
		Revenue:     revenue,
		Pickup:      window(base.Add(time.Hour), 4),
		Delivery:    window(base.Add(10*time.Hour), 4),
	}
}

func testDriver(base time.Time) model.DriverAvailabilityWindow {
	return model.DriverAvailabilityWindow{
		DriverID:       "D1",
		DriverName:     "Test Driver",
		AvailableFrom:  base,
		AvailableTo:    base.Add(72 * time.Hour),
		MaxWeeklyHours: 60,
		HomeBase:       "toledo_oh",
	}
}
