package fleet

import (
	"context"
	"errors"
	"time"

	"github.com/loadaxis/fleetopt/core/model"
)

// ErrAlreadyClaimed is returned by LoadStore.Claim when another driver won the
// race for a load. Losing a claim is a normal outcome, not a failure.
var ErrAlreadyClaimed = errors.New("fleet: load already claimed")

// LoadFilter narrows the available-load listing for one driver's evaluation.
// Zero fields mean no restriction.
type LoadFilter struct {
	Region       string
	PickupAfter  time.Time
	PickupBefore time.Time
}

// LoadStore is the external load inventory. Claim must be atomic: exactly one
// concurrent caller wins a given load, all others get ErrAlreadyClaimed.
type LoadStore interface {
	ListAvailable(ctx context.Context, filter LoadFilter) ([]model.Load, error)
	Claim(ctx context.Context, loadID, driverID string) error
	Release(ctx context.Context, loadID string) error
}

// DriverStore exposes the active fleet and per-driver live status. Status
// updates are expressed as patches so concurrent ticks never exchange mutable
// state.
type DriverStore interface {
	ListActive(ctx context.Context) ([]model.DriverUtilizationTarget, error)
	GetStatus(ctx context.Context, driverID string) (model.DriverStatus, error)
	UpdateStatus(ctx context.Context, driverID string, patch model.StatusPatch) (model.DriverStatus, error)
}

// Channel identifies a notification delivery channel.
type Channel string

const (
	ChannelDashboard Channel = "dashboard"
	ChannelEmail     Channel = "email"
	ChannelSMS       Channel = "sms"
	ChannelDriverApp Channel = "driver_app"
)

// NotificationSink delivers human-facing messages. Deliveries are
// fire-and-forget: a failed notification never rolls back an optimization
// decision.
type NotificationSink interface {
	Notify(ctx context.Context, channel Channel, message string, meta map[string]string) error
}

// ReviewQueue receives proposals the gate declined to auto-approve.
type ReviewQueue interface {
	Enqueue(ctx context.Context, triggerID string, route model.TimeOptimizedRoute, driver model.DriverAvailabilityWindow) error
}
