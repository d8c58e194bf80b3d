package consolidation

import "github.com/loadaxis/fleetopt/core/model"

// Combinations enumerates candidate bundles of size 1..maxBundle from the
// filtered pool. Bundles whose summed weight or pallet count already exceed
// the truck are rejected here, before the expensive sequencing step. The
// enumeration is O(n choose k) for small k, which stays tractable because the
// per-driver pool is expected to be tens of loads, not thousands.
func Combinations(loads []model.Load, cap model.TruckCapacity, maxBundle int) [][]model.Load {
	if maxBundle <= 0 {
		maxBundle = 3
	}
	if maxBundle > len(loads) {
		maxBundle = len(loads)
	}
	var out [][]model.Load
	bundle := make([]model.Load, 0, maxBundle)

	var expand func(start int, weight float64, pallets int)
	expand = func(start int, weight float64, pallets int) {
		if len(bundle) > 0 {
			out = append(out, append([]model.Load(nil), bundle...))
		}
		if len(bundle) == maxBundle {
			return
		}
		for i := start; i < len(loads); i++ {
			w := weight + loads[i].WeightLb
			p := pallets + loads[i].PalletCount
			if w > cap.CargoAllowance() || p > model.MaxPallets {
				continue
			}
			bundle = append(bundle, loads[i])
			expand(i+1, w, p)
			bundle = bundle[:len(bundle)-1]
		}
	}
	expand(0, 0, 0)
	return out
}

// FitsCapacity reports whether the bundle respects weight, pallet and volume
// limits, returning the first violated constraint.
func FitsCapacity(loads []model.Load, cap model.TruckCapacity) (bool, string) {
	var weight, volume float64
	var pallets int
	for _, l := range loads {
		weight += l.WeightLb
		volume += l.Volume()
		pallets += l.PalletCount
	}
	if weight > cap.CargoAllowance() {
		return false, "weight limit exceeded"
	}
	if pallets > model.MaxPallets {
		return false, "pallet capacity exceeded"
	}
	if avail := cap.AvailableVolume(); avail > 0 && volume > avail {
		return false, "volume capacity exceeded"
	}
	return true, ""
}
