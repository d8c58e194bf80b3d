package consolidation

import (
	"context"

	"github.com/loadaxis/fleetopt/core/model"
)

// FilterCompatibleLoads drops loads a driver cannot or should not haul before
// the expensive combination step runs. A load survives when its pickup and
// delivery windows fall inside the planning period, its origin matches the
// driver's preferred regions (when any are set) and its linehaul distance
// respects the driver's local/long-haul preference.
//
// Loads whose distance lookup fails are skipped for this pass rather than
// failing the whole filter; the next tick retries them.
func (o *Optimizer) FilterCompatibleLoads(ctx context.Context, loads []model.Load, driver model.DriverAvailabilityWindow, period model.TimeWindow) []model.Load {
	out := make([]model.Load, 0, len(loads))
	for _, load := range loads {
		if load.Pickup.Start.Before(period.Start) || load.Delivery.End.After(period.End) {
			continue
		}
		if len(driver.PreferredRegions) > 0 && !containsRegion(driver.PreferredRegions, o.regionOf(load.Origin)) {
			continue
		}
		if driver.Preferences.PreferLocal || driver.Preferences.PreferLongHaul {
			leg, err := o.est.Estimate(ctx, load.Origin, load.Destination)
			if err != nil {
				o.log.Warnf("distance estimate %s -> %s failed, skipping load %s: %v", load.Origin, load.Destination, load.ID, err)
				continue
			}
			if driver.Preferences.PreferLocal && leg.Miles > LocalMaxMiles {
				continue
			}
			if driver.Preferences.PreferLongHaul && leg.Miles < LongHaulMinMiles {
				continue
			}
		}
		out = append(out, load)
	}
	return out
}

func containsRegion(regions []string, region string) bool {
	for _, r := range regions {
		if r == region {
			return true
		}
	}
	return false
}
