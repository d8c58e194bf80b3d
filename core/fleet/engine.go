package fleet

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/loadaxis/fleetopt/core/consolidation"
	"github.com/loadaxis/fleetopt/core/events"
	"github.com/loadaxis/fleetopt/core/logger"
	"github.com/loadaxis/fleetopt/core/model"
	"github.com/loadaxis/fleetopt/internal/eventbus"
)

// Engine is the continuous optimization loop. One Engine serves the whole
// fleet; per-driver evaluations inside a tick run concurrently.
type Engine struct {
	cfg      Config
	opt      *consolidation.Optimizer
	est      consolidation.DistanceEstimator
	loads    LoadStore
	drivers  DriverStore
	gate     *Gate
	notifier NotificationSink
	bus      *eventbus.Bus[events.Event]
	log      logger.Logger

	now func() time.Time
}

// TickResult summarizes one pass over the fleet.
type TickResult struct {
	DriversEvaluated     int
	ProposalsImplemented int
	ProposalsQueued      int
	DriversSkipped       int
	SwapsImplemented     int
	Errors               int
	MeanUtilizationPct   float64
}

// NewEngine wires the loop. Every collaborator is required; the configuration
// is validated here, before the first tick, so a bad config never runs.
func NewEngine(cfg Config, opt *consolidation.Optimizer, est consolidation.DistanceEstimator, loads LoadStore, drivers DriverStore, gate *Gate, notifier NotificationSink, bus *eventbus.Bus[events.Event], log logger.Logger) (*Engine, error) {
	if opt == nil || est == nil || loads == nil || drivers == nil || gate == nil || notifier == nil || bus == nil || log == nil {
		return nil, fmt.Errorf("fleet: nil parameter provided to NewEngine")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:      cfg,
		opt:      opt,
		est:      est,
		loads:    loads,
		drivers:  drivers,
		gate:     gate,
		notifier: notifier,
		bus:      bus,
		log:      log,
		now:      time.Now,
	}, nil
}

// Run ticks until ctx is cancelled. Cancellation stops the scheduling of new
// ticks; an in-flight tick always finishes, so no partially checked route is
// ever committed.
func (e *Engine) Run(ctx context.Context) error {
	interval := e.cfg.TickInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.log.Infof("optimization loop started, tick every %s", interval)
	for {
		e.RunTick(context.WithoutCancel(ctx))
		select {
		case <-ctx.Done():
			e.log.Infof("optimization loop stopping")
			return nil
		case <-ticker.C:
		}
	}
}

// RunTick executes one full pass: concurrent per-driver evaluation, then the
// cross-driver swap scan. It never returns an error; collaborator failures
// skip the affected driver and are retried next tick.
func (e *Engine) RunTick(ctx context.Context) TickResult {
	started := e.now()
	var res TickResult

	listCtx, cancel := context.WithTimeout(ctx, e.cfg.CollaboratorTimeout())
	targets, err := e.drivers.ListActive(listCtx)
	cancel()
	if err != nil {
		e.log.Errorf("tick aborted: list active drivers: %v", err)
		res.Errors++
		return res
	}

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		utils []float64
	)
	for _, target := range targets {
		wg.Add(1)
		go func(t model.DriverUtilizationTarget) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					e.log.Errorf("evaluation for driver %s panicked: %v", t.Driver.DriverID, r)
					mu.Lock()
					res.Errors++
					mu.Unlock()
				}
			}()
			outcome := e.evaluateDriver(ctx, t)
			mu.Lock()
			res.DriversEvaluated++
			switch {
			case outcome.err:
				res.Errors++
			case outcome.implemented:
				res.ProposalsImplemented++
			case outcome.queued:
				res.ProposalsQueued++
			default:
				res.DriversSkipped++
			}
			if outcome.hasUtilization {
				utils = append(utils, outcome.utilization)
			}
			mu.Unlock()
		}(target)
	}
	wg.Wait()

	res.SwapsImplemented = e.runSwapPass(ctx, targets)

	if len(utils) > 0 {
		res.MeanUtilizationPct = stat.Mean(utils, nil)
		fleetUtilization.Set(res.MeanUtilizationPct)
	}
	driversEvaluated.Add(float64(res.DriversEvaluated))
	proposalsQueued.Add(float64(res.ProposalsQueued))
	tickDuration.Observe(e.now().Sub(started).Seconds())
	e.bus.Publish(events.TickEvent{
		DriversEvaluated:     res.DriversEvaluated,
		ProposalsImplemented: res.ProposalsImplemented,
		ProposalsQueued:      res.ProposalsQueued,
		SwapsImplemented:     res.SwapsImplemented,
		MeanUtilizationPct:   res.MeanUtilizationPct,
		Duration:             e.now().Sub(started),
		At:                   e.now(),
	})

	e.log.Infof("tick done: %d drivers, %d implemented, %d queued, %d swaps, %d errors",
		res.DriversEvaluated, res.ProposalsImplemented, res.ProposalsQueued, res.SwapsImplemented, res.Errors)
	return res
}

type driverOutcome struct {
	implemented    bool
	queued         bool
	err            bool
	hasUtilization bool
	utilization    float64
}

// evaluateDriver runs steps 2-6 of the per-tick pass for one driver.
func (e *Engine) evaluateDriver(ctx context.Context, target model.DriverUtilizationTarget) driverOutcome {
	driverID := target.Driver.DriverID

	status, err := e.getStatus(ctx, driverID)
	if err != nil {
		e.log.Warnf("driver %s skipped: get status: %v", driverID, err)
		return driverOutcome{err: true}
	}
	out := driverOutcome{hasUtilization: true, utilization: status.CapacityUsed.Average()}

	if !status.Available || !e.needsMoreLoads(status, target) {
		e.adviseIdle(status, target)
		return out
	}

	available, err := e.listAvailable(ctx, target)
	if err != nil {
		e.log.Warnf("driver %s skipped: list loads: %v", driverID, err)
		out.err = true
		return out
	}

	opps := make([]model.LoadOpportunity, 0, len(available))
	for _, load := range available {
		opp, err := e.scoreOpportunity(ctx, load, status, target)
		if err != nil {
			e.log.Warnf("driver %s: load %s skipped: %v", driverID, load.ID, err)
			continue
		}
		if opp != nil {
			opps = append(opps, *opp)
		}
	}
	if len(opps) == 0 {
		e.adviseIdle(status, target)
		return out
	}
	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].BlendedScore() > opps[j].BlendedScore()
	})

	strategy, ok := selectStrategy(e.buildStrategies(opps, status, target))
	if !ok {
		e.adviseIdle(status, target)
		return out
	}

	route, err := e.routeFor(ctx, target, status, strategy.Loads())
	if err != nil {
		e.log.Warnf("driver %s skipped: route evaluation: %v", driverID, err)
		out.err = true
		return out
	}
	if !route.Feasible || !route.HOS.Compliant {
		e.log.Debugf("driver %s: best strategy %s infeasible, waiting for next tick", driverID, strategy.Kind)
		return out
	}

	decision, err := e.gate.Process(ctx, route, target.Driver)
	if err != nil {
		e.log.Warnf("driver %s: gate failed: %v", driverID, err)
		out.err = true
		return out
	}
	if !decision.AutoApproved {
		e.bus.Publish(events.ReviewEvent{
			TriggerID: decision.TriggerID,
			DriverID:  driverID,
			Reasons:   decision.ReviewReasons,
			At:        e.now(),
		})
		out.queued = true
		return out
	}

	implemented, err := e.implement(ctx, target, status, strategy, route)
	if err != nil {
		e.log.Warnf("driver %s: implementation failed: %v", driverID, err)
		out.err = true
		return out
	}
	if implemented {
		out.implemented = true
		proposalsImplemented.WithLabelValues(strategy.Kind.String()).Inc()
	}
	return out
}

// needsMoreLoads is the step-2 predicate: HOS headroom beyond the safety
// buffer, and either under-utilized capacity or an imminent availability
// window.
func (e *Engine) needsMoreLoads(status model.DriverStatus, target model.DriverUtilizationTarget) bool {
	headroom := status.RemainingDailyMinutes() - e.cfg.HOSBufferMinutes
	if limit := target.Driver.MaxWeeklyHours; limit > 0 {
		weekly := (limit - status.HoursWorkedWeek) * 60
		if weekly < headroom {
			headroom = weekly
		}
	}
	if headroom <= 0 {
		return false
	}
	underUtilized := status.CapacityUsed.Average() < e.cfg.MinCapacityThreshold
	return underUtilized || e.imminentAvailability(target.Driver)
}

// imminentAvailability reports whether the driver's availability window opens
// within the next hour.
func (e *Engine) imminentAvailability(driver model.DriverAvailabilityWindow) bool {
	now := e.now()
	opens := driver.AvailableFrom
	return now.Before(opens) && opens.Sub(now) <= time.Hour
}

// adviseIdle is the step-6 fallback: recommend rest near the HOS limit, or
// repositioning when the truck is running light early in the shift.
func (e *Engine) adviseIdle(status model.DriverStatus, target model.DriverUtilizationTarget) {
	switch {
	case status.RemainingDailyMinutes() <= e.cfg.HOSBufferMinutes:
		e.notify(fmt.Sprintf("driver %s is near the daily HOS limit, rest recommended", status.DriverID), map[string]string{
			"driver_id": status.DriverID,
			"advice":    "rest",
		})
	case status.CapacityUsed.Average() < e.cfg.MinCapacityThreshold && status.HoursWorkedToday < 4:
		e.notify(fmt.Sprintf("driver %s is under-utilized early in shift, consider repositioning from %s", status.DriverID, status.CurrentLocation), map[string]string{
			"driver_id": status.DriverID,
			"advice":    "reposition",
		})
	}
}

// routeFor evaluates the full truck state: the driver's current loads plus
// the strategy's new loads as one bundle. The evaluation runs under the
// collaborator timeout so its distance lookups are deadline-bounded.
func (e *Engine) routeFor(ctx context.Context, target model.DriverUtilizationTarget, status model.DriverStatus, newLoads []model.Load) (model.TimeOptimizedRoute, error) {
	driver := target.Driver
	if status.CurrentLocation != "" {
		driver.CurrentLocation = status.CurrentLocation
	}
	bundle := append(append([]model.Load(nil), status.CurrentLoads...), newLoads...)
	ctx, cancel := context.WithTimeout(ctx, e.cfg.CollaboratorTimeout())
	defer cancel()
	return e.opt.EvaluateBundle(ctx, driver, bundle, target.Capacity)
}

// implement commits an auto-approved strategy: claim each load, drop the ones
// lost to a concurrent claimer, re-check the surviving bundle, then patch the
// driver's status. Returns false when every load was lost, which is a normal
// outcome.
func (e *Engine) implement(ctx context.Context, target model.DriverUtilizationTarget, status model.DriverStatus, strategy Strategy, route model.TimeOptimizedRoute) (bool, error) {
	driverID := target.Driver.DriverID

	var claimed []model.LoadOpportunity
	for _, opp := range strategy.Opportunities {
		if err := e.claim(ctx, opp.Load.ID, driverID); err != nil {
			if err == ErrAlreadyClaimed {
				e.log.Debugf("driver %s: load %s claimed elsewhere, dropping", driverID, opp.Load.ID)
				continue
			}
			e.releaseAll(ctx, claimed)
			return false, fmt.Errorf("claim load %s: %w", opp.Load.ID, err)
		}
		claimed = append(claimed, opp)
	}
	if len(claimed) == 0 {
		return false, nil
	}

	if len(claimed) < len(strategy.Opportunities) {
		reduced := Strategy{Kind: strategy.Kind, Opportunities: claimed}
		recheck, err := e.routeFor(ctx, target, status, reduced.Loads())
		if err != nil || !recheck.Feasible || !recheck.HOS.Compliant {
			e.releaseAll(ctx, claimed)
			if err != nil {
				return false, fmt.Errorf("recheck reduced bundle: %w", err)
			}
			return false, nil
		}
		route = recheck
		strategy = reduced
	}

	var addHours float64
	newLoads := make([]model.Load, 0, len(claimed))
	for _, opp := range claimed {
		addHours += opp.AddedHours
		newLoads = append(newLoads, opp.Load)
	}
	used := utilizationAfter(append(append([]model.Load(nil), status.CurrentLoads...), newLoads...), target.Capacity)
	complete := route.ScheduleWindow.End

	patch := model.StatusPatch{
		AddHoursToday:     addHours,
		AddHoursWeek:      addHours,
		AddLoads:          newLoads,
		CapacityUsed:      &used,
		EstimatedComplete: &complete,
	}
	if _, err := e.updateStatus(ctx, driverID, patch); err != nil {
		e.releaseAll(ctx, claimed)
		return false, fmt.Errorf("update status: %w", err)
	}

	e.notify(fmt.Sprintf("driver %s assigned %d load(s) via %s strategy, revenue $%.0f",
		driverID, len(newLoads), strategy.Kind, strategy.TotalRevenue()), map[string]string{
		"driver_id": driverID,
		"strategy":  strategy.Kind.String(),
	})
	e.bus.Publish(events.AssignmentEvent{
		DriverID: driverID,
		Strategy: strategy.Kind.String(),
		LoadIDs:  route.LoadIDs(),
		Revenue:  strategy.TotalRevenue(),
		Score:    route.OptimizationScore,
		At:       e.now(),
	})
	return true, nil
}

func (e *Engine) releaseAll(ctx context.Context, claimed []model.LoadOpportunity) {
	for _, opp := range claimed {
		if err := e.release(ctx, opp.Load.ID); err != nil {
			e.log.Errorf("release load %s failed: %v", opp.Load.ID, err)
		}
	}
}

// Collaborator wrappers apply the bounded-time contract to every external
// call so a slow store cannot stall a tick.

func (e *Engine) getStatus(ctx context.Context, driverID string) (model.DriverStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.CollaboratorTimeout())
	defer cancel()
	return e.drivers.GetStatus(ctx, driverID)
}

func (e *Engine) updateStatus(ctx context.Context, driverID string, patch model.StatusPatch) (model.DriverStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.CollaboratorTimeout())
	defer cancel()
	return e.drivers.UpdateStatus(ctx, driverID, patch)
}

func (e *Engine) listAvailable(ctx context.Context, target model.DriverUtilizationTarget) ([]model.Load, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.CollaboratorTimeout())
	defer cancel()
	return e.loads.ListAvailable(ctx, LoadFilter{PickupBefore: target.Driver.AvailableTo})
}

func (e *Engine) claim(ctx context.Context, loadID, driverID string) error {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.CollaboratorTimeout())
	defer cancel()
	return e.loads.Claim(ctx, loadID, driverID)
}

func (e *Engine) release(ctx context.Context, loadID string) error {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.CollaboratorTimeout())
	defer cancel()
	return e.loads.Release(ctx, loadID)
}

func (e *Engine) estimate(ctx context.Context, from, to string) (consolidation.Leg, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.CollaboratorTimeout())
	defer cancel()
	return e.est.Estimate(ctx, from, to)
}

func (e *Engine) notify(message string, meta map[string]string) {
	for _, ch := range e.cfg.Channels() {
		go func(ch Channel) {
			ctx, cancel := context.WithTimeout(context.Background(), e.cfg.CollaboratorTimeout())
			defer cancel()
			if err := e.notifier.Notify(ctx, ch, message, meta); err != nil {
				e.log.Warnf("notification on %s failed: %v", ch, err)
			}
		}(ch)
	}
}
