package fleet

import (
	"sort"

	"github.com/loadaxis/fleetopt/core/consolidation"
	"github.com/loadaxis/fleetopt/core/model"
)

// StrategyKind is the closed set of assignment strategies the loop may pick.
type StrategyKind int

const (
	StrategySingle StrategyKind = iota
	StrategyMultiLoad
	StrategyConsolidation
)

func (k StrategyKind) String() string {
	switch k {
	case StrategySingle:
		return "single"
	case StrategyMultiLoad:
		return "multi_load"
	case StrategyConsolidation:
		return "consolidation"
	default:
		return "unknown"
	}
}

// maxMultiLoadBundle caps the multi-load strategy regardless of configuration.
const maxMultiLoadBundle = 4

// Dollar scales mapping strategy revenue and benefit onto the 0-100
// compatibility scale before weighting.
const (
	fullScoreRevenue = 5000.0
	fullScoreBenefit = 500.0
)

// Strategy is one candidate assignment for a driver: a kind and the new
// opportunities it would commit.
type Strategy struct {
	Kind          StrategyKind
	Opportunities []model.LoadOpportunity
}

// Loads returns the new loads the strategy assigns.
func (s Strategy) Loads() []model.Load {
	out := make([]model.Load, len(s.Opportunities))
	for i, o := range s.Opportunities {
		out[i] = o.Load
	}
	return out
}

// TotalRevenue sums the added revenue across the strategy's loads.
func (s Strategy) TotalRevenue() float64 {
	var total float64
	for _, o := range s.Opportunities {
		total += o.AddedRevenue
	}
	return total
}

// AddedHours sums the estimated duty hours the strategy adds.
func (s Strategy) AddedHours() float64 {
	var total float64
	for _, o := range s.Opportunities {
		total += o.AddedHours
	}
	return total
}

// Score weights total revenue, average compatibility and total consolidation
// benefit. Revenue and benefit are normalized onto the compatibility scale.
func (s Strategy) Score() float64 {
	if len(s.Opportunities) == 0 {
		return 0
	}
	var compat, benefit float64
	for _, o := range s.Opportunities {
		compat += o.CompatibilityScore
		benefit += o.ConsolidationBenefit
	}
	compat /= float64(len(s.Opportunities))

	rev := capScale(s.TotalRevenue() / fullScoreRevenue * 100)
	ben := capScale(benefit / fullScoreBenefit * 100)
	return 0.4*rev + 0.3*compat + 0.3*ben
}

func capScale(v float64) float64 {
	if v > 100 {
		return 100
	}
	return v
}

// buildStrategies derives the candidate strategies for a driver from the
// ranked opportunities. Opportunities must already be sorted by descending
// blended score.
func (e *Engine) buildStrategies(opps []model.LoadOpportunity, status model.DriverStatus, target model.DriverUtilizationTarget) []Strategy {
	if len(opps) == 0 {
		return nil
	}
	strategies := []Strategy{{Kind: StrategySingle, Opportunities: opps[:1]}}

	if multi := e.bestMultiLoad(opps, status, target); len(multi) > 1 {
		strategies = append(strategies, Strategy{Kind: StrategyMultiLoad, Opportunities: multi})
	}
	if combo := e.bestConsolidation(opps, status, target); len(combo) > 0 {
		strategies = append(strategies, Strategy{Kind: StrategyConsolidation, Opportunities: combo})
	}
	return strategies
}

// bestMultiLoad greedily packs ranked opportunities into a capacity- and
// HOS-valid bundle of at most four loads.
func (e *Engine) bestMultiLoad(opps []model.LoadOpportunity, status model.DriverStatus, target model.DriverUtilizationTarget) []model.LoadOpportunity {
	headroom := (status.RemainingDailyMinutes() - e.cfg.HOSBufferMinutes) / 60
	bundle := append([]model.Load(nil), status.CurrentLoads...)
	var picked []model.LoadOpportunity
	var hours float64

	for _, opp := range opps {
		if len(picked) == maxMultiLoadBundle {
			break
		}
		candidate := append(append([]model.Load(nil), bundle...), opp.Load)
		if ok, _ := consolidation.FitsCapacity(candidate, target.Capacity); !ok {
			continue
		}
		if hours+opp.AddedHours > headroom {
			continue
		}
		bundle = candidate
		hours += opp.AddedHours
		picked = append(picked, opp)
	}
	return picked
}

// bestConsolidation picks the benefit-bearing opportunities that can join the
// driver's current loads without pushing the bundle past the configured
// consolidation cap.
func (e *Engine) bestConsolidation(opps []model.LoadOpportunity, status model.DriverStatus, target model.DriverUtilizationTarget) []model.LoadOpportunity {
	if len(status.CurrentLoads) == 0 {
		return nil
	}
	room := e.cfg.MaxConsolidationLoads - len(status.CurrentLoads)
	if room <= 0 {
		return nil
	}

	ranked := make([]model.LoadOpportunity, 0, len(opps))
	for _, o := range opps {
		if o.ConsolidationBenefit > 0 {
			ranked = append(ranked, o)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ConsolidationBenefit > ranked[j].ConsolidationBenefit
	})

	bundle := append([]model.Load(nil), status.CurrentLoads...)
	var picked []model.LoadOpportunity
	for _, opp := range ranked {
		if len(picked) == room {
			break
		}
		candidate := append(append([]model.Load(nil), bundle...), opp.Load)
		if ok, _ := consolidation.FitsCapacity(candidate, target.Capacity); !ok {
			continue
		}
		bundle = candidate
		picked = append(picked, opp)
	}
	return picked
}

// selectStrategy returns the highest-scoring candidate, or false when none
// exist.
func selectStrategy(strategies []Strategy) (Strategy, bool) {
	if len(strategies) == 0 {
		return Strategy{}, false
	}
	best := strategies[0]
	for _, s := range strategies[1:] {
		if s.Score() > best.Score() {
			best = s
		}
	}
	return best, true
}
