// Package events defines the optimization events emitted on the event bus.
//
// Available event types:
//   - AssignmentEvent: loads committed to a driver
//   - ReviewEvent: a proposal queued for manual review
//   - SwapEvent: a cross-driver load exchange
//   - TickEvent: summary of one optimization pass
package events
