package fleet

import (
	"context"
	"fmt"

	"github.com/loadaxis/fleetopt/core/consolidation"
	"github.com/loadaxis/fleetopt/core/model"
)

// Penalties applied to the 100-point compatibility baseline.
const (
	deadheadPenalty = 30
	hosPenalty      = 50
	averageSpeedMph = 55
)

// scoreOpportunity rates one available load against one driver's live status.
// A nil opportunity with a nil error means the load cannot physically fit and
// was rejected outright. Errors indicate a failed distance lookup only.
func (e *Engine) scoreOpportunity(ctx context.Context, load model.Load, status model.DriverStatus, target model.DriverUtilizationTarget) (*model.LoadOpportunity, error) {
	bundle := append(append([]model.Load(nil), status.CurrentLoads...), load)
	if ok, _ := consolidation.FitsCapacity(bundle, target.Capacity); !ok {
		return nil, nil
	}

	from := status.CurrentLocation
	if from == "" {
		from = target.Driver.Location()
	}
	deadhead, err := e.estimate(ctx, from, load.Origin)
	if err != nil {
		return nil, fmt.Errorf("score opportunity %s: deadhead leg: %w", load.ID, err)
	}
	line, err := e.estimate(ctx, load.Origin, load.Destination)
	if err != nil {
		return nil, fmt.Errorf("score opportunity %s: linehaul leg: %w", load.ID, err)
	}

	compat := 100.0
	deadheadBudget := e.cfg.MaxDeadheadMiles / averageSpeedMph * 60
	if deadhead.Minutes > deadheadBudget {
		compat -= deadheadPenalty
	}

	service := 2 * e.opt.Options().ServiceMinutes
	addedMinutes := deadhead.Minutes + line.Minutes + service
	headroom := status.RemainingDailyMinutes() - e.cfg.HOSBufferMinutes
	if addedMinutes > headroom {
		compat -= hosPenalty
	}
	if compat < 0 {
		compat = 0
	}

	var benefit float64
	if len(status.CurrentLoads) > 0 {
		benefit = e.cfg.ConsolidationBenefitRate * load.Revenue
	}

	addedMiles := deadhead.Miles + line.Miles
	var efficiency float64
	if addedMiles > 0 {
		efficiency = load.Revenue / addedMiles
	}

	return &model.LoadOpportunity{
		Load:                 load,
		DriverID:             status.DriverID,
		CompatibilityScore:   compat,
		AddedRevenue:         load.Revenue,
		AddedHours:           addedMinutes / 60,
		ResultingUtilization: utilizationAfter(bundle, target.Capacity),
		RouteEfficiency:      efficiency,
		TimeToPickupMinutes:  deadhead.Minutes,
		ConsolidationBenefit: benefit,
	}, nil
}

// utilizationAfter projects per-dimension capacity use for the given bundle.
func utilizationAfter(bundle []model.Load, cap model.TruckCapacity) model.CapacityUsed {
	var weight, volume float64
	var pallets int
	for _, l := range bundle {
		weight += l.WeightLb
		volume += l.Volume()
		pallets += l.PalletCount
	}
	return model.CapacityUsed{
		WeightPct:  sharePct(weight, cap.CargoAllowance()),
		VolumePct:  sharePct(volume, cap.AvailableVolume()),
		PalletsPct: sharePct(float64(pallets), model.MaxPallets),
	}
}

func sharePct(used, avail float64) float64 {
	if avail <= 0 {
		return 0
	}
	return used / avail * 100
}
