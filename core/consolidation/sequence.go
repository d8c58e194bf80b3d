package consolidation

import (
	"context"
	"fmt"

	"github.com/loadaxis/fleetopt/core/model"
)

// SequenceRoute orders the bundle's stops and computes per-leg driving
// distance and time. The policy is deliberately simple: all pickups first in
// input order, then all deliveries in input order. It is a heuristic chosen
// for predictability, not a TSP solution.
func (o *Optimizer) SequenceRoute(ctx context.Context, loads []model.Load) ([]model.RouteStop, float64, float64, error) {
	stops := make([]model.RouteStop, 0, 2*len(loads))
	for _, l := range loads {
		stops = append(stops, model.RouteStop{
			LoadID:         l.ID,
			Location:       l.Origin,
			Type:           model.StopPickup,
			ScheduledTime:  l.Pickup.Start,
			ServiceMinutes: o.opts.ServiceMinutes,
		})
	}
	for _, l := range loads {
		stops = append(stops, model.RouteStop{
			LoadID:         l.ID,
			Location:       l.Destination,
			Type:           model.StopDelivery,
			ScheduledTime:  l.Delivery.Start,
			ServiceMinutes: o.opts.ServiceMinutes,
		})
	}

	var totalMiles, totalMinutes float64
	for i := 1; i < len(stops); i++ {
		leg, err := o.est.Estimate(ctx, stops[i-1].Location, stops[i].Location)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("sequence route: estimate %s -> %s: %w", stops[i-1].Location, stops[i].Location, err)
		}
		stops[i].DrivingMinutes = leg.Minutes
		stops[i].DrivingMiles = leg.Miles
		totalMiles += leg.Miles
		totalMinutes += leg.Minutes
	}
	for _, s := range stops {
		totalMinutes += s.ServiceMinutes
	}
	return stops, totalMiles, totalMinutes, nil
}
