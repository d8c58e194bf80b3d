package consolidation

import (
	"context"
	"fmt"
	"sort"

	"github.com/loadaxis/fleetopt/core/logger"
	"github.com/loadaxis/fleetopt/core/model"
)

// Optimizer evaluates load bundles for a single driver. It is synchronous,
// free of side effects apart from distance lookups, and safe for concurrent
// use from multiple ticks or manual requests.
type Optimizer struct {
	est      DistanceEstimator
	regionOf RegionFunc
	opts     Options
	log      logger.Logger
}

// New creates an Optimizer. The distance estimator and logger are required;
// a nil region function falls back to DefaultRegion.
func New(est DistanceEstimator, regionOf RegionFunc, opts Options, log logger.Logger) (*Optimizer, error) {
	if est == nil || log == nil {
		return nil, fmt.Errorf("consolidation: nil parameter provided to New")
	}
	if regionOf == nil {
		regionOf = DefaultRegion
	}
	return &Optimizer{est: est, regionOf: regionOf, opts: opts.withDefaults(), log: log}, nil
}

// Options returns the resolved optimizer options.
func (o *Optimizer) Options() Options { return o.opts }

// OptimizeDriverSchedule runs the full pipeline for one driver against a load
// pool: pre-filter, bundle enumeration, sequencing, HOS check and scoring.
// Only HOS-compliant feasible routes are returned, sorted by descending
// optimization score. The function is deterministic given its inputs and the
// distance provider's answers.
func (o *Optimizer) OptimizeDriverSchedule(ctx context.Context, driver model.DriverAvailabilityWindow, loads []model.Load, cap model.TruckCapacity, period model.TimeWindow) ([]model.TimeOptimizedRoute, error) {
	if err := driver.Validate(); err != nil {
		return nil, fmt.Errorf("optimize driver schedule: %w", err)
	}
	compatible := o.FilterCompatibleLoads(ctx, loads, driver, period)
	bundles := Combinations(compatible, cap, o.opts.MaxBundleSize)

	routes := make([]model.TimeOptimizedRoute, 0, len(bundles))
	for _, bundle := range bundles {
		route, err := o.EvaluateBundle(ctx, driver, bundle, cap)
		if err != nil {
			// Collaborator failure: skip this bundle, it is retried next pass.
			o.log.Warnf("evaluate bundle for driver %s failed: %v", driver.DriverID, err)
			continue
		}
		if route.Feasible && route.HOS.Compliant {
			routes = append(routes, route)
		}
	}

	sort.SliceStable(routes, func(i, j int) bool {
		return routes[i].OptimizationScore > routes[j].OptimizationScore
	})
	return routes, nil
}

// EvaluateBundle sequences, checks and scores a single bundle. Infeasibility
// is reported in the returned route, not as an error; errors indicate a
// failed distance lookup only.
func (o *Optimizer) EvaluateBundle(ctx context.Context, driver model.DriverAvailabilityWindow, bundle []model.Load, cap model.TruckCapacity) (model.TimeOptimizedRoute, error) {
	if len(bundle) == 0 {
		return o.infeasibleRoute(driver, "empty bundle"), nil
	}
	if ok, reason := FitsCapacity(bundle, cap); !ok {
		return o.infeasibleRoute(driver, reason), nil
	}

	stops, miles, minutes, err := o.SequenceRoute(ctx, bundle)
	if err != nil {
		return model.TimeOptimizedRoute{}, err
	}
	hours := minutes / 60

	hos := CheckHOS(stops)
	profit := o.opts.Costs.Profitability(bundle, miles, hours)

	var weight, volume float64
	var pallets int
	for _, l := range bundle {
		weight += l.WeightLb
		volume += l.Volume()
		pallets += l.PalletCount
	}

	route := model.TimeOptimizedRoute{
		DriverID:      driver.DriverID,
		DriverName:    driver.DriverName,
		Loads:         append([]model.Load(nil), bundle...),
		TotalWeightLb: weight,
		TotalRevenue:  profit.GrossRevenue,
		TotalMiles:    miles,
		TotalHours:    hours,
		Utilization: model.CapacityUtilization{
			WeightPct: pct(weight, cap.CargoAllowance()),
			VolumePct: pct(volume, cap.AvailableVolume()),
			Pallets:   pallets,
			TimePct:   pct(hours, driver.MaxWeeklyHours),
		},
		Stops:    stops,
		HOS:      hos,
		Profit:   profit,
		Feasible: hos.Compliant && profit.NetProfit > 0,
	}
	if len(stops) > 0 {
		route.ScheduleWindow = model.TimeWindow{Start: stops[0].ScheduledTime, End: stops[len(stops)-1].ScheduledTime}
	}
	if miles > 0 {
		route.RevenuePerMile = profit.GrossRevenue / miles
	}
	if hours > 0 {
		route.RevenuePerHour = profit.GrossRevenue / hours
	}
	route.OptimizationScore = OptimizationScore(profit, miles, driver.Preferences)
	return route, nil
}

// AnalyzeConsolidation evaluates adding one load on top of a primary load for
// the same trip. Capacity and time-window violations come back as infeasible
// routes carrying a human-readable reason, never as errors.
func (o *Optimizer) AnalyzeConsolidation(ctx context.Context, primary, additional model.Load, driver model.DriverAvailabilityWindow, cap model.TruckCapacity) (model.TimeOptimizedRoute, error) {
	bundle := []model.Load{primary, additional}
	if ok, reason := FitsCapacity(bundle, cap); !ok {
		return o.infeasibleRoute(driver, reason), nil
	}
	if conflict := timeWindowConflict(primary, additional); conflict != "" {
		return o.infeasibleRoute(driver, conflict), nil
	}
	return o.EvaluateBundle(ctx, driver, bundle, cap)
}

// timeWindowConflict reports whether two loads can share a trip at all: if
// one load must be delivered before the other can even be picked up, a single
// vehicle cannot carry both.
func timeWindowConflict(a, b model.Load) string {
	if a.Delivery.End.Before(b.Pickup.Start) || b.Delivery.End.Before(a.Pickup.Start) {
		return "time windows do not allow consolidation"
	}
	return ""
}

// infeasibleRoute builds the empty route value used to report a rejected
// bundle with its reason.
func (o *Optimizer) infeasibleRoute(driver model.DriverAvailabilityWindow, reason string) model.TimeOptimizedRoute {
	return model.TimeOptimizedRoute{
		DriverID:   driver.DriverID,
		DriverName: driver.DriverName,
		HOS:        model.HOSReport{Warnings: []string{reason}},
	}
}

func pct(used, avail float64) float64 {
	if avail <= 0 {
		return 0
	}
	return used / avail * 100
}
