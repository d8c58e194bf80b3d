package consolidation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/loadaxis/fleetopt/core/model"
)

func TestProfitability(t *testing.T) {
	loads := []model.Load{{ID: "A", Revenue: 2000}, {ID: "B", Revenue: 1500}}
	p := DefaultCostModel().Profitability(loads, 400, 10)

	assert.Equal(t, 3500.0, p.GrossRevenue)
	// 400*0.65 fuel + 10*28 labor + 400*0.15 maintenance = 600.
	assert.Equal(t, 600.0, p.OperatingCosts)
	assert.Equal(t, 2900.0, p.NetProfit)
	assert.InDelta(t, 82.857, p.ProfitMargin, 0.001)
}

func TestProfitabilityZeroRevenue(t *testing.T) {
	p := DefaultCostModel().Profitability(nil, 100, 2)
	assert.Equal(t, 0.0, p.GrossRevenue)
	assert.Equal(t, 0.0, p.ProfitMargin)
	assert.Less(t, p.NetProfit, 0.0)
}

func TestOptimizationScoreBounds(t *testing.T) {
	// Rich route maxes every component.
	rich := model.Profitability{GrossRevenue: 20000, ProfitMargin: 80}
	if got := OptimizationScore(rich, 1000, model.DriverPreferences{}); got != 100 {
		t.Fatalf("expected capped score 100, got %v", got)
	}

	// Worthless route bottoms out at zero, never below.
	poor := model.Profitability{GrossRevenue: 0, ProfitMargin: -400}
	got := OptimizationScore(poor, 100, model.DriverPreferences{PreferLongHaul: true, PreferLocal: true})
	if got < 0 || got > 100 {
		t.Fatalf("score out of bounds: %v", got)
	}
}

func TestOptimizationScorePreferencePenalty(t *testing.T) {
	p := model.Profitability{GrossRevenue: 2500, ProfitMargin: 10}
	base := OptimizationScore(p, 300, model.DriverPreferences{})
	// 300 miles is neither local nor long-haul, so both penalties apply.
	penalized := OptimizationScore(p, 300, model.DriverPreferences{PreferLongHaul: true, PreferLocal: true})
	if penalized != base-10 {
		t.Fatalf("expected both penalties: base=%v penalized=%v", base, penalized)
	}
}
