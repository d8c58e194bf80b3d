package consolidation

import (
	"context"

	"github.com/loadaxis/fleetopt/core/model"
)

// Leg is a distance/time estimate between two locations.
type Leg struct {
	Miles   float64
	Minutes float64
}

// DistanceEstimator resolves travel distance and time between two opaque
// location tokens. Implementations must honor the context deadline so a slow
// provider cannot stall an optimization pass. The engine never computes
// distances itself.
type DistanceEstimator interface {
	Estimate(ctx context.Context, from, to string) (Leg, error)
}

// RegionFunc maps a location token to a coarse geographic region used for
// driver preference matching.
type RegionFunc func(location string) string

// Distance thresholds, in miles, for driver haul-length preferences.
const (
	LocalMaxMiles    = 250
	LongHaulMinMiles = 500
)

// Options tunes the optimizer. Zero values fall back to defaults.
type Options struct {
	MaxBundleSize  int     // max loads per bundle, default 3
	ServiceMinutes float64 // fixed per-stop service time, default 30
	Costs          CostModel
}

func (o Options) withDefaults() Options {
	if o.MaxBundleSize <= 0 {
		o.MaxBundleSize = 3
	}
	if o.ServiceMinutes <= 0 {
		o.ServiceMinutes = model.DefaultServiceMinutes
	}
	if o.Costs == (CostModel{}) {
		o.Costs = DefaultCostModel()
	}
	return o
}
