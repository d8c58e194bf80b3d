package model

import "time"

// Hours-of-service limits in minutes, per FMCSA rules for property-carrying
// drivers.
const (
	MaxDrivingMinutes     = 660 // 11 h driving
	MaxOnDutyMinutes      = 840 // 14 h on duty
	BreakTriggerMinutes   = 480 // 30-min break required after 8 h driving
	DrivingWarnMinutes    = 600 // early warning before the hard limit
	RestBreakMinutes      = 30
	DefaultServiceMinutes = 30 // fixed load/unload time per stop
)

// StopType distinguishes pickups from deliveries.
type StopType int

const (
	StopPickup StopType = iota
	StopDelivery
)

func (t StopType) String() string {
	if t == StopPickup {
		return "pickup"
	}
	return "delivery"
}

// RouteStop is one pickup or delivery event inside a candidate route.
type RouteStop struct {
	LoadID          string
	Location        string
	Type            StopType
	ScheduledTime   time.Time
	ServiceMinutes  float64
	DrivingMinutes  float64 // from the previous stop
	DrivingMiles    float64 // from the previous stop
}

// BreakType identifies the kind of rest period.
type BreakType int

const (
	BreakHalfHour BreakType = iota
	BreakTenHour
	BreakRestart // 34-hour restart
)

func (t BreakType) String() string {
	switch t {
	case BreakHalfHour:
		return "30min"
	case BreakTenHour:
		return "10hour"
	default:
		return "34hour"
	}
}

// RestBreak records a rest period inserted into a route.
type RestBreak struct {
	Location        string
	Start           time.Time
	DurationMinutes float64
	Type            BreakType
	Required        bool
}

// HOSReport is the hours-of-service verdict for a sequenced route.
type HOSReport struct {
	Compliant    bool
	DrivingHours float64
	OnDutyHours  float64
	RestBreaks   []RestBreak
	Warnings     []string
}

// Profitability breaks down the economics of a route.
type Profitability struct {
	GrossRevenue   float64
	OperatingCosts float64
	NetProfit      float64
	ProfitMargin   float64 // percent of gross revenue
}

// CapacityUtilization reports how fully a route uses the truck.
type CapacityUtilization struct {
	WeightPct float64
	VolumePct float64
	Pallets   int
	TimePct   float64
}

// TimeOptimizedRoute is the evaluated result for one driver and one bundle of
// loads. Every evaluation produces a fresh value; routes are never mutated in
// place.
type TimeOptimizedRoute struct {
	DriverID          string
	DriverName        string
	ScheduleWindow    TimeWindow
	Loads             []Load
	TotalWeightLb     float64
	TotalRevenue      float64
	TotalMiles        float64
	TotalHours        float64
	RevenuePerMile    float64
	RevenuePerHour    float64
	Utilization       CapacityUtilization
	Stops             []RouteStop
	HOS               HOSReport
	Profit            Profitability
	Feasible          bool
	OptimizationScore float64
}

// LoadIDs returns the ids of the loads carried by the route.
func (r TimeOptimizedRoute) LoadIDs() []string {
	ids := make([]string, len(r.Loads))
	for i, l := range r.Loads {
		ids[i] = l.ID
	}
	return ids
}

// HasHazmat reports whether any load in the bundle is placarded.
func (r TimeOptimizedRoute) HasHazmat() bool {
	for _, l := range r.Loads {
		if l.Hazmat {
			return true
		}
	}
	return false
}

// HasUrgent reports whether any load in the bundle is urgent priority.
func (r TimeOptimizedRoute) HasUrgent() bool {
	for _, l := range r.Loads {
		if l.Priority == PriorityUrgent {
			return true
		}
	}
	return false
}

// LoadOpportunity is a scored candidate pairing of one available load with one
// driver. Opportunities are transient and recomputed every tick.
type LoadOpportunity struct {
	Load                 Load
	DriverID             string
	CompatibilityScore   float64 // 0-100
	AddedRevenue         float64
	AddedHours           float64
	ResultingUtilization CapacityUsed
	RouteEfficiency      float64 // revenue per added mile
	TimeToPickupMinutes  float64
	ConsolidationBenefit float64 // extra value from combining with current loads
}

// Dollar scales that map raw efficiency and benefit onto the 0-100 range used
// by the compatibility score, so the blend weights compare like with like.
const (
	excellentRevenuePerMile = 3.0
	fullBenefitDollars      = 500.0
)

// BlendedScore ranks the opportunity by the weighted blend of compatibility,
// route efficiency and consolidation benefit. Efficiency and benefit are
// normalized onto the compatibility scale before weighting.
func (o LoadOpportunity) BlendedScore() float64 {
	eff := clampScore(o.RouteEfficiency / excellentRevenuePerMile * 100)
	benefit := clampScore(o.ConsolidationBenefit / fullBenefitDollars * 100)
	return 0.3*o.CompatibilityScore + 0.3*eff + 0.4*benefit
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
