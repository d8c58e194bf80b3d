package model

import (
	"fmt"
	"time"
)

// DriverPreferences captures standing wishes that influence which loads a
// driver is offered.
type DriverPreferences struct {
	PreferLongHaul   bool
	PreferLocal      bool
	AvoidNightDrives bool
	PreferWeekends   bool
	MaxDaysOut       int // max consecutive days away from home base
}

// DriverAvailabilityWindow describes when and where a driver can work.
type DriverAvailabilityWindow struct {
	DriverID          string
	DriverName        string
	AvailableFrom     time.Time
	AvailableTo       time.Time
	PreferredRegions  []string
	MaxWeeklyHours    float64
	HomeBase          string
	CurrentLocation   string
	RestRequiredUntil *time.Time
	WeeklyHoursUsed   float64
	Preferences       DriverPreferences
}

// Location returns the driver's effective position, falling back to the home
// base when the live position is unknown.
func (d DriverAvailabilityWindow) Location() string {
	if d.CurrentLocation != "" {
		return d.CurrentLocation
	}
	return d.HomeBase
}

// Validate checks that the availability record is sound.
func (d DriverAvailabilityWindow) Validate() error {
	if d.DriverID == "" {
		return fmt.Errorf("driver id must not be empty")
	}
	if d.AvailableTo.Before(d.AvailableFrom) {
		return fmt.Errorf("driver %s: availability end precedes start", d.DriverID)
	}
	if d.MaxWeeklyHours < 0 {
		return fmt.Errorf("driver %s: max weekly hours must not be negative", d.DriverID)
	}
	return nil
}

// CapacityUsed tracks how much of each truck dimension a driver's current
// assignment consumes.
type CapacityUsed struct {
	WeightPct  float64
	VolumePct  float64
	PalletsPct float64
}

// Average returns the mean utilization across the tracked dimensions.
func (c CapacityUsed) Average() float64 {
	return (c.WeightPct + c.VolumePct + c.PalletsPct) / 3
}

// DriverStatus is the live per-driver view refreshed once per optimization
// tick.
type DriverStatus struct {
	DriverID          string
	CurrentLocation   string
	HoursWorkedToday  float64
	HoursWorkedWeek   float64
	CurrentLoads      []Load
	CapacityUsed      CapacityUsed
	EstimatedComplete time.Time
	Available         bool
}

// RemainingDailyMinutes returns the driving minutes left under the 11-hour
// daily limit.
func (s DriverStatus) RemainingDailyMinutes() float64 {
	rem := MaxDrivingMinutes - s.HoursWorkedToday*60
	if rem < 0 {
		return 0
	}
	return rem
}

// StatusPatch describes an update applied to a DriverStatus. Nil fields leave
// the current value untouched; Apply returns a new status rather than
// mutating the receiver.
type StatusPatch struct {
	CurrentLocation   *string
	AddHoursToday     float64
	AddHoursWeek      float64
	AddLoads          []Load
	RemoveLoadIDs     []string
	CapacityUsed      *CapacityUsed
	EstimatedComplete *time.Time
	Available         *bool
}

// Apply returns a copy of s with the patch applied.
func (p StatusPatch) Apply(s DriverStatus) DriverStatus {
	out := s
	out.CurrentLoads = append([]Load(nil), s.CurrentLoads...)
	if p.CurrentLocation != nil {
		out.CurrentLocation = *p.CurrentLocation
	}
	out.HoursWorkedToday += p.AddHoursToday
	out.HoursWorkedWeek += p.AddHoursWeek
	if len(p.RemoveLoadIDs) > 0 {
		drop := make(map[string]bool, len(p.RemoveLoadIDs))
		for _, id := range p.RemoveLoadIDs {
			drop[id] = true
		}
		kept := out.CurrentLoads[:0]
		for _, l := range out.CurrentLoads {
			if !drop[l.ID] {
				kept = append(kept, l)
			}
		}
		out.CurrentLoads = kept
	}
	out.CurrentLoads = append(out.CurrentLoads, p.AddLoads...)
	if p.CapacityUsed != nil {
		out.CapacityUsed = *p.CapacityUsed
	}
	if p.EstimatedComplete != nil {
		out.EstimatedComplete = *p.EstimatedComplete
	}
	if p.Available != nil {
		out.Available = *p.Available
	}
	return out
}

// DriverUtilizationTarget pairs a driver with the utilization goals the
// continuous loop optimizes toward.
type DriverUtilizationTarget struct {
	Driver        DriverAvailabilityWindow
	Capacity      TruckCapacity
	TargetHours   float64
	TargetRevenue float64
}
