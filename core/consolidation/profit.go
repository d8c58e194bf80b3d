package consolidation

import (
	"math"

	"github.com/loadaxis/fleetopt/core/model"
)

// CostModel holds the per-mile and per-hour operating rates. The defaults
// reflect current dry-van economics; keep them configurable rather than
// assuming they hold for every fleet.
type CostModel struct {
	FuelPerMile        float64
	LaborPerHour       float64
	MaintenancePerMile float64
}

// DefaultCostModel returns the standard rate card.
func DefaultCostModel() CostModel {
	return CostModel{
		FuelPerMile:        0.65,
		LaborPerHour:       28,
		MaintenancePerMile: 0.15,
	}
}

// Profitability computes the economics of hauling the bundle over the
// sequenced route.
func (c CostModel) Profitability(loads []model.Load, miles, hours float64) model.Profitability {
	var gross float64
	for _, l := range loads {
		gross += l.Revenue
	}
	costs := miles*c.FuelPerMile + hours*c.LaborPerHour + miles*c.MaintenancePerMile
	net := gross - costs
	margin := 0.0
	if gross > 0 {
		margin = net / gross * 100
	}
	return model.Profitability{
		GrossRevenue:   gross,
		OperatingCosts: costs,
		NetProfit:      net,
		ProfitMargin:   margin,
	}
}

// OptimizationScore converts a route's economics and preference fit into the
// 0-100 composite used to rank candidates. The model is a transparent linear
// blend so every score stays reproducible and auditable:
// revenue up to 40 points, margin up to 30, revenue-per-mile up to 20 and a
// driver-preference base of 10 with penalties for mismatched haul length.
func OptimizationScore(profit model.Profitability, miles float64, prefs model.DriverPreferences) float64 {
	score := math.Min(profit.GrossRevenue/5000*40, 40)
	score += math.Min(profit.ProfitMargin/20*30, 30)
	if miles > 0 {
		score += math.Min(profit.GrossRevenue/miles/3*20, 20)
	}

	pref := 10.0
	if prefs.PreferLongHaul && miles < LongHaulMinMiles {
		pref -= 5
	}
	if prefs.PreferLocal && miles > LocalMaxMiles {
		pref -= 5
	}
	score += pref

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return math.Round(score)
}
