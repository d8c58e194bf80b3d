package fleet

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/loadaxis/fleetopt/core/logger"
	"github.com/loadaxis/fleetopt/core/model"
)

// Decision is the gate's verdict for one proposal.
type Decision struct {
	TriggerID     string
	AutoApproved  bool
	ReviewReasons []string
}

// Gate applies the auto-approve/manual-review policy to candidate routes and
// fans out the resulting notifications.
type Gate struct {
	cfg      Config
	notifier NotificationSink
	review   ReviewQueue
	log      logger.Logger
}

// NewGate creates a Gate. All collaborators are required.
func NewGate(cfg Config, notifier NotificationSink, review ReviewQueue, log logger.Logger) (*Gate, error) {
	if notifier == nil || review == nil || log == nil {
		return nil, fmt.Errorf("fleet: nil parameter provided to NewGate")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Gate{cfg: cfg, notifier: notifier, review: review, log: log}, nil
}

// Process decides whether the route is implemented immediately or queued for
// human review. The caller implements auto-approved decisions; Process only
// records the verdict, enqueues reviews and sends notifications.
func (g *Gate) Process(ctx context.Context, route model.TimeOptimizedRoute, driver model.DriverAvailabilityWindow) (Decision, error) {
	decision := Decision{TriggerID: uuid.NewString()}

	forced := reviewReasons(route, g.cfg)
	auto := route.Feasible &&
		route.HOS.Compliant &&
		route.OptimizationScore >= g.cfg.AutoApproveThreshold &&
		len(route.Loads) <= g.cfg.MaxConsolidationLoads &&
		!g.cfg.RequireManualReview

	if auto && len(forced) == 0 {
		decision.AutoApproved = true
		g.notifyAll(fmt.Sprintf("route auto-approved for driver %s: %d loads, score %.0f", driver.DriverID, len(route.Loads), route.OptimizationScore), map[string]string{
			"trigger_id": decision.TriggerID,
			"driver_id":  driver.DriverID,
			"outcome":    "auto_approved",
		})
		return decision, nil
	}

	if !auto {
		forced = append(forced, "did not meet auto-approve policy")
	}
	decision.ReviewReasons = forced

	if err := g.review.Enqueue(ctx, decision.TriggerID, route, driver); err != nil {
		return decision, fmt.Errorf("gate: enqueue review %s: %w", decision.TriggerID, err)
	}
	g.notifyAll(fmt.Sprintf("route queued for review for driver %s: %v", driver.DriverID, forced), map[string]string{
		"trigger_id": decision.TriggerID,
		"driver_id":  driver.DriverID,
		"outcome":    "queued",
	})
	return decision, nil
}

// reviewReasons lists the conditions that force manual review regardless of
// the auto-approve outcome.
func reviewReasons(route model.TimeOptimizedRoute, cfg Config) []string {
	var reasons []string
	if route.TotalRevenue >= cfg.HighValueThreshold {
		reasons = append(reasons, fmt.Sprintf("high value: $%.0f", route.TotalRevenue))
	}
	if route.HasHazmat() {
		reasons = append(reasons, "hazmat load in bundle")
	}
	if route.HasUrgent() {
		reasons = append(reasons, "urgent priority load in bundle")
	}
	if len(route.HOS.Warnings) > 0 {
		reasons = append(reasons, fmt.Sprintf("hos warnings: %v", route.HOS.Warnings))
	}
	return reasons
}

// notifyAll fans the message out to every configured channel. Deliveries run
// in their own goroutines under the collaborator timeout; failures are logged
// and never affect the decision.
func (g *Gate) notifyAll(message string, meta map[string]string) {
	for _, ch := range g.cfg.Channels() {
		go func(ch Channel) {
			ctx, cancel := context.WithTimeout(context.Background(), g.cfg.CollaboratorTimeout())
			defer cancel()
			if err := g.notifier.Notify(ctx, ch, message, meta); err != nil {
				g.log.Warnf("notification on %s failed: %v", ch, err)
			}
		}(ch)
	}
}
