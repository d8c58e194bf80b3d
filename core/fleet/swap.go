package fleet

import (
	"context"
	"fmt"
	"sort"

	"github.com/loadaxis/fleetopt/core/events"
	"github.com/loadaxis/fleetopt/core/model"
)

// swapCandidate is one beneficial exchange of loads between two drivers.
type swapCandidate struct {
	DriverA, DriverB string
	LoadA, LoadB     model.Load
	Benefit          float64
}

// runSwapPass scans all driver pairs for load exchanges whose deadhead savings
// exceed the configured benefit threshold and implements the best one per
// pair. It runs only after every per-driver pass has finished, against the
// post-pass statuses; after each implemented swap the two affected snapshots
// are refreshed so later pairs never trade a load a driver no longer holds.
// Returns the number of swaps implemented.
func (e *Engine) runSwapPass(ctx context.Context, targets []model.DriverUtilizationTarget) int {
	statuses := make(map[string]model.DriverStatus, len(targets))
	for _, t := range targets {
		status, err := e.getStatus(ctx, t.Driver.DriverID)
		if err != nil {
			e.log.Warnf("swap pass: status for driver %s unavailable: %v", t.Driver.DriverID, err)
			continue
		}
		if len(status.CurrentLoads) > 0 {
			statuses[t.Driver.DriverID] = status
		}
	}

	ids := make([]string, 0, len(statuses))
	for id := range statuses {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var implemented int
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, okA := statuses[ids[i]]
			b, okB := statuses[ids[j]]
			if !okA || !okB {
				continue
			}
			best, ok := e.bestSwap(ctx, a, b)
			if !ok {
				continue
			}
			if err := e.implementSwap(ctx, best); err != nil {
				e.log.Warnf("swap between %s and %s not implemented: %v", best.DriverA, best.DriverB, err)
				continue
			}
			implemented++
			swapsImplemented.Inc()
			e.refreshSwapStatus(ctx, statuses, best.DriverA)
			e.refreshSwapStatus(ctx, statuses, best.DriverB)
		}
	}
	return implemented
}

// refreshSwapStatus re-reads one driver's status after a swap. A failed
// refresh drops the driver from the pass so no stale snapshot is traded on.
func (e *Engine) refreshSwapStatus(ctx context.Context, statuses map[string]model.DriverStatus, driverID string) {
	status, err := e.getStatus(ctx, driverID)
	if err != nil {
		delete(statuses, driverID)
		e.log.Warnf("swap pass: refresh for driver %s failed, skipping its remaining pairs: %v", driverID, err)
		return
	}
	statuses[driverID] = status
}

// bestSwap finds the highest-benefit exchange of one load each between two
// drivers. Benefit is the reduction in combined deadhead cost at the
// configured per-mile operating rate. Distance failures skip the pair.
func (e *Engine) bestSwap(ctx context.Context, a, b model.DriverStatus) (swapCandidate, bool) {
	perMile := e.opt.Options().Costs.FuelPerMile + e.opt.Options().Costs.MaintenancePerMile

	var best swapCandidate
	for _, la := range a.CurrentLoads {
		for _, lb := range b.CurrentLoads {
			current, err := e.pairDeadhead(ctx, a.CurrentLocation, la, b.CurrentLocation, lb)
			if err != nil {
				e.log.Warnf("swap evaluation for %s/%s skipped: %v", a.DriverID, b.DriverID, err)
				return swapCandidate{}, false
			}
			swapped, err := e.pairDeadhead(ctx, a.CurrentLocation, lb, b.CurrentLocation, la)
			if err != nil {
				e.log.Warnf("swap evaluation for %s/%s skipped: %v", a.DriverID, b.DriverID, err)
				return swapCandidate{}, false
			}
			benefit := (current - swapped) * perMile
			if benefit > best.Benefit {
				best = swapCandidate{DriverA: a.DriverID, DriverB: b.DriverID, LoadA: la, LoadB: lb, Benefit: benefit}
			}
		}
	}
	if best.Benefit <= e.cfg.SwapBenefitThreshold {
		return swapCandidate{}, false
	}
	return best, true
}

// pairDeadhead sums the miles each driver would run empty to reach their
// load's origin.
func (e *Engine) pairDeadhead(ctx context.Context, locA string, loadA model.Load, locB string, loadB model.Load) (float64, error) {
	legA, err := e.estimate(ctx, locA, loadA.Origin)
	if err != nil {
		return 0, err
	}
	legB, err := e.estimate(ctx, locB, loadB.Origin)
	if err != nil {
		return 0, err
	}
	return legA.Miles + legB.Miles, nil
}

// implementSwap exchanges the two loads, claim records first so the store
// always names the holder, then the driver statuses. Any failure restores the
// pre-swap claims and statuses so the loads never end up on both trucks or
// neither.
func (e *Engine) implementSwap(ctx context.Context, swap swapCandidate) error {
	if err := e.exchangeClaims(ctx, swap); err != nil {
		return err
	}

	patchA := model.StatusPatch{RemoveLoadIDs: []string{swap.LoadA.ID}, AddLoads: []model.Load{swap.LoadB}}
	patchB := model.StatusPatch{RemoveLoadIDs: []string{swap.LoadB.ID}, AddLoads: []model.Load{swap.LoadA}}

	if _, err := e.updateStatus(ctx, swap.DriverA, patchA); err != nil {
		e.restoreClaims(ctx, swap)
		return fmt.Errorf("swap: update driver %s: %w", swap.DriverA, err)
	}
	if _, err := e.updateStatus(ctx, swap.DriverB, patchB); err != nil {
		rollback := model.StatusPatch{RemoveLoadIDs: []string{swap.LoadB.ID}, AddLoads: []model.Load{swap.LoadA}}
		if _, rbErr := e.updateStatus(ctx, swap.DriverA, rollback); rbErr != nil {
			e.log.Errorf("swap rollback for driver %s failed: %v", swap.DriverA, rbErr)
		}
		e.restoreClaims(ctx, swap)
		return fmt.Errorf("swap: update driver %s: %w", swap.DriverB, err)
	}

	e.notify(fmt.Sprintf("load swap: driver %s takes %s, driver %s takes %s (benefit $%.0f)",
		swap.DriverA, swap.LoadB.ID, swap.DriverB, swap.LoadA.ID, swap.Benefit), map[string]string{
		"driver_a": swap.DriverA,
		"driver_b": swap.DriverB,
	})
	e.bus.Publish(events.SwapEvent{
		DriverA: swap.DriverA,
		DriverB: swap.DriverB,
		LoadA:   swap.LoadA.ID,
		LoadB:   swap.LoadB.ID,
		Benefit: swap.Benefit,
		At:      e.now(),
	})
	return nil
}

// exchangeClaims re-points the two claim records at the post-swap owners. A
// concurrent claimer winning a load during the exchange aborts the swap with
// the original claims restored.
func (e *Engine) exchangeClaims(ctx context.Context, swap swapCandidate) error {
	if err := e.release(ctx, swap.LoadA.ID); err != nil {
		return fmt.Errorf("swap: release %s: %w", swap.LoadA.ID, err)
	}
	if err := e.release(ctx, swap.LoadB.ID); err != nil {
		e.restoreClaims(ctx, swap)
		return fmt.Errorf("swap: release %s: %w", swap.LoadB.ID, err)
	}
	if err := e.claim(ctx, swap.LoadB.ID, swap.DriverA); err != nil {
		e.restoreClaims(ctx, swap)
		return fmt.Errorf("swap: claim %s for %s: %w", swap.LoadB.ID, swap.DriverA, err)
	}
	if err := e.claim(ctx, swap.LoadA.ID, swap.DriverB); err != nil {
		e.restoreClaims(ctx, swap)
		return fmt.Errorf("swap: claim %s for %s: %w", swap.LoadA.ID, swap.DriverB, err)
	}
	return nil
}

// restoreClaims best-effort re-points both claim records at the pre-swap
// owners. Failures are logged; there is nothing further to unwind.
func (e *Engine) restoreClaims(ctx context.Context, swap swapCandidate) {
	for _, c := range []struct{ loadID, driverID string }{
		{swap.LoadA.ID, swap.DriverA},
		{swap.LoadB.ID, swap.DriverB},
	} {
		if err := e.release(ctx, c.loadID); err != nil {
			e.log.Errorf("swap: restore release of %s failed: %v", c.loadID, err)
			continue
		}
		if err := e.claim(ctx, c.loadID, c.driverID); err != nil {
			e.log.Errorf("swap: restore claim of %s to %s failed: %v", c.loadID, c.driverID, err)
		}
	}
}
