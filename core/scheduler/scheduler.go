package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/loadaxis/fleetopt/core/consolidation"
	"github.com/loadaxis/fleetopt/core/model"
)

// Config defines long-term planning parameters loaded from configuration.
type Config struct {
	HorizonDays   int `json:"horizon_days" yaml:"horizon_days"`
	MaxWindowDays int `json:"max_window_days" yaml:"max_window_days"`
}

// SetDefaults fills in the standard 30-day horizon.
func (c *Config) SetDefaults() {
	if c.HorizonDays == 0 {
		c.HorizonDays = 30
	}
}

// Validate rejects configurations the planner cannot run with.
func (c Config) Validate() error {
	if c.HorizonDays < 0 || c.MaxWindowDays < 0 {
		return errors.New("scheduler: horizon and window days must not be negative")
	}
	return nil
}

// Scheduler builds a rolling multi-day plan for one driver by repeatedly
// running the single-route optimizer over consecutive availability windows.
type Scheduler struct {
	Optimizer *consolidation.Optimizer
	Config    Config
}

// New creates a Scheduler around the given optimizer.
func New(opt *consolidation.Optimizer, cfg Config) (*Scheduler, error) {
	if opt == nil {
		return nil, errors.New("scheduler: nil optimizer")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scheduler{Optimizer: opt, Config: cfg}, nil
}

// Windows partitions the horizon starting at from into consecutive
// non-overlapping windows no longer than maxDays. Their union covers the
// horizon exactly.
func Windows(from time.Time, horizonDays, maxDays int) []model.TimeWindow {
	if maxDays <= 0 {
		maxDays = horizonDays
	}
	var out []model.TimeWindow
	for day := 0; day < horizonDays; day += maxDays {
		span := maxDays
		if day+span > horizonDays {
			span = horizonDays - day
		}
		start := from.AddDate(0, 0, day)
		out = append(out, model.TimeWindow{Start: start, End: start.AddDate(0, 0, span)})
	}
	return out
}

// PlanHorizon produces one optimized route per window across the horizon.
// The best route of each window is committed: its loads leave the remaining
// pool and the driver's simulated position and weekly hours advance before
// the next window is planned. Weekly hours reset at week boundaries. Windows
// with no compatible loads are skipped, not treated as errors.
func (s *Scheduler) PlanHorizon(ctx context.Context, driver model.DriverAvailabilityWindow, loads []model.Load, cap model.TruckCapacity) ([]model.TimeOptimizedRoute, error) {
	if err := driver.Validate(); err != nil {
		return nil, fmt.Errorf("plan horizon: %w", err)
	}
	maxDays := s.Config.MaxWindowDays
	if maxDays == 0 {
		maxDays = driver.Preferences.MaxDaysOut
	}
	windows := Windows(driver.AvailableFrom, s.Config.HorizonDays, maxDays)

	remaining := append([]model.Load(nil), loads...)
	location := driver.Location()
	weeklyHours := driver.WeeklyHoursUsed

	var plan []model.TimeOptimizedRoute
	for _, w := range windows {
		pool := loadsInWindow(remaining, w)
		if len(pool) == 0 {
			continue
		}

		sim := driver
		sim.AvailableFrom = w.Start
		sim.AvailableTo = w.End
		sim.CurrentLocation = location
		sim.WeeklyHoursUsed = weeklyHours

		routes, err := s.Optimizer.OptimizeDriverSchedule(ctx, sim, pool, cap, w)
		if err != nil {
			return nil, fmt.Errorf("plan horizon: window starting %s: %w", w.Start.Format(time.RFC3339), err)
		}
		if len(routes) == 0 {
			continue
		}

		best := routes[0]
		plan = append(plan, best)

		remaining = withoutLoads(remaining, best.LoadIDs())
		if n := len(best.Stops); n > 0 {
			location = best.Stops[n-1].Location
		}
		weeklyHours += best.TotalHours
		if isNewWeek(w.Start, driver.AvailableFrom) {
			weeklyHours = 0
		}
	}
	return plan, nil
}

func loadsInWindow(loads []model.Load, w model.TimeWindow) []model.Load {
	out := make([]model.Load, 0, len(loads))
	for _, l := range loads {
		if !l.Pickup.Start.Before(w.Start) && !l.Delivery.End.After(w.End) {
			out = append(out, l)
		}
	}
	return out
}

func withoutLoads(loads []model.Load, ids []string) []model.Load {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	out := loads[:0]
	for _, l := range loads {
		if !drop[l.ID] {
			out = append(out, l)
		}
	}
	return out
}

func isNewWeek(current, reference time.Time) bool {
	days := int(current.Sub(reference).Hours() / 24)
	return days > 0 && days%7 == 0
}
