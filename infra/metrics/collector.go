package metrics

import (
	"context"

	"github.com/loadaxis/fleetopt/core/events"
	coremetrics "github.com/loadaxis/fleetopt/core/metrics"
	"github.com/loadaxis/fleetopt/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// optimization events. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[events.Event], sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.AssignmentEvent:
					_ = sink.RecordAssignment(coremetrics.AssignmentRecord{
						DriverID: e.DriverID,
						Strategy: e.Strategy,
						LoadIDs:  e.LoadIDs,
						Revenue:  e.Revenue,
						Score:    e.Score,
						Time:     e.At,
					})
				case events.ReviewEvent:
					if r, ok := sink.(coremetrics.ReviewRecorder); ok {
						_ = r.RecordReview(coremetrics.ReviewRecord{
							TriggerID: e.TriggerID,
							DriverID:  e.DriverID,
							Reasons:   e.Reasons,
							Time:      e.At,
						})
					}
				case events.SwapEvent:
					if r, ok := sink.(coremetrics.SwapRecorder); ok {
						_ = r.RecordSwap(coremetrics.SwapRecord{
							DriverA: e.DriverA,
							DriverB: e.DriverB,
							LoadA:   e.LoadA,
							LoadB:   e.LoadB,
							Benefit: e.Benefit,
							Time:    e.At,
						})
					}
				case events.TickEvent:
					if r, ok := sink.(coremetrics.TickRecorder); ok {
						_ = r.RecordTick(coremetrics.TickRecord{
							DriversEvaluated:     e.DriversEvaluated,
							ProposalsImplemented: e.ProposalsImplemented,
							ProposalsQueued:      e.ProposalsQueued,
							SwapsImplemented:     e.SwapsImplemented,
							MeanUtilizationPct:   e.MeanUtilizationPct,
							Duration:             e.Duration,
							Time:                 e.At,
						})
					}
				}
			}
		}
	}()
}
