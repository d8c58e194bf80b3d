package events

import "time"

// Event is the closed set of payloads carried on the bus.
type Event interface{ isEvent() }

// AssignmentEvent is published when an auto-approved proposal is committed.
type AssignmentEvent struct {
	DriverID string
	Strategy string
	LoadIDs  []string
	Revenue  float64
	Score    float64
	At       time.Time
}

// ReviewEvent is published when a proposal is queued for manual review.
type ReviewEvent struct {
	TriggerID string
	DriverID  string
	Reasons   []string
	At        time.Time
}

// SwapEvent is published when two drivers exchange loads.
type SwapEvent struct {
	DriverA, DriverB string
	LoadA, LoadB     string
	Benefit          float64
	At               time.Time
}

// TickEvent summarizes one full optimization pass.
type TickEvent struct {
	DriversEvaluated     int
	ProposalsImplemented int
	ProposalsQueued      int
	SwapsImplemented     int
	MeanUtilizationPct   float64
	Duration             time.Duration
	At                   time.Time
}

func (AssignmentEvent) isEvent() {}
func (ReviewEvent) isEvent()     {}
func (SwapEvent) isEvent()       {}
func (TickEvent) isEvent()       {}
