package model

import (
	"fmt"
	"time"
)

// Priority ranks how urgently a load must move.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityUrgent
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityUrgent:
		return "urgent"
	default:
		return "unknown"
	}
}

// ParsePriority maps a stored priority name back to its enum value. Unknown
// names fall back to low.
func ParsePriority(s string) Priority {
	switch s {
	case "medium":
		return PriorityMedium
	case "high":
		return PriorityHigh
	case "urgent":
		return PriorityUrgent
	default:
		return PriorityLow
	}
}

// CustomerTier classifies the shipper relationship.
type CustomerTier int

const (
	TierRegular CustomerTier = iota
	TierPremium
	TierNew
)

func (t CustomerTier) String() string {
	switch t {
	case TierRegular:
		return "regular"
	case TierPremium:
		return "premium"
	case TierNew:
		return "new"
	default:
		return "unknown"
	}
}

// ParseCustomerTier maps a stored tier name back to its enum value. Unknown
// names fall back to regular.
func ParseCustomerTier(s string) CustomerTier {
	switch s {
	case "premium":
		return TierPremium
	case "new":
		return TierNew
	default:
		return TierRegular
	}
}

// TimeWindow is a closed interval during which a stop may be serviced.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Dimensions describes freight measurements in feet.
type Dimensions struct {
	LengthFt float64
	WidthFt  float64
	HeightFt float64
}

// Volume returns the cubic footprint of the freight.
func (d Dimensions) Volume() float64 {
	return d.LengthFt * d.WidthFt * d.HeightFt
}

// Load is an immutable unit of freight offered for assignment.
type Load struct {
	ID          string
	Origin      string // opaque location token
	Destination string
	WeightLb    float64
	Dimensions  Dimensions
	PalletCount int
	Commodity   string
	Hazmat      bool
	Stackable   bool
	Fragile     bool
	Revenue     float64
	Pickup      TimeWindow
	Delivery    TimeWindow
	Priority    Priority
	Customer    CustomerTier
}

// Volume returns the load's cubic footprint in cubic feet.
func (l Load) Volume() float64 { return l.Dimensions.Volume() }

// Validate checks that the load record is sound.
func (l Load) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("load id must not be empty")
	}
	if l.WeightLb <= 0 {
		return fmt.Errorf("load %s: weight must be positive", l.ID)
	}
	if l.PalletCount < 0 {
		return fmt.Errorf("load %s: pallet count must not be negative", l.ID)
	}
	if l.Revenue < 0 {
		return fmt.Errorf("load %s: revenue must not be negative", l.ID)
	}
	if l.Pickup.End.Before(l.Pickup.Start) || l.Delivery.End.Before(l.Delivery.Start) {
		return fmt.Errorf("load %s: time window end precedes start", l.ID)
	}
	return nil
}

// MaxPallets is the pallet capacity of a standard 53-foot dry van.
const MaxPallets = 26

// TruckCapacity holds per-vehicle static limits. Available figures already
// subtract the tractor and trailer tare weight.
type TruckCapacity struct {
	MaxWeightLb       float64
	TruckWeightLb     float64 // tractor + trailer tare
	AvailableWeightLb float64
	MaxLengthFt       float64
	MaxWidthFt        float64
	MaxHeightFt       float64
	AvailableLengthFt float64
	AvailableWidthFt  float64
	AvailableHeightFt float64
}

// CargoAllowance returns the legal cargo weight, derived from the gross
// limit minus tare when AvailableWeightLb is unset.
func (c TruckCapacity) CargoAllowance() float64 {
	if c.AvailableWeightLb > 0 {
		return c.AvailableWeightLb
	}
	return c.MaxWeightLb - c.TruckWeightLb
}

// AvailableVolume returns the usable trailer volume in cubic feet.
func (c TruckCapacity) AvailableVolume() float64 {
	return c.AvailableLengthFt * c.AvailableWidthFt * c.AvailableHeightFt
}

// DefaultTruckCapacity returns the limits of a standard 53-foot dry van.
func DefaultTruckCapacity() TruckCapacity {
	return TruckCapacity{
		MaxWeightLb:       80000,
		TruckWeightLb:     34000,
		AvailableWeightLb: 46000,
		MaxLengthFt:       53,
		MaxWidthFt:        8.5,
		MaxHeightFt:       13.5,
		AvailableLengthFt: 53,
		AvailableWidthFt:  8.5,
		AvailableHeightFt: 13.5,
	}
}
