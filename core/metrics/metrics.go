package metrics

import "time"

// AssignmentRecord represents one committed load assignment.
type AssignmentRecord struct {
	DriverID string
	Strategy string
	LoadIDs  []string
	Revenue  float64
	Score    float64
	Time     time.Time
}

// MetricsSink records assignment results for observability purposes.
type MetricsSink interface {
	RecordAssignment(rec AssignmentRecord) error
}

// TickRecord summarizes one optimization pass.
type TickRecord struct {
	DriversEvaluated     int
	ProposalsImplemented int
	ProposalsQueued      int
	SwapsImplemented     int
	MeanUtilizationPct   float64
	Duration             time.Duration
	Time                 time.Time
}

// TickRecorder is implemented by sinks able to record tick summaries.
type TickRecorder interface {
	RecordTick(rec TickRecord) error
}

// ReviewRecord captures a proposal queued for manual review.
type ReviewRecord struct {
	TriggerID string
	DriverID  string
	Reasons   []string
	Time      time.Time
}

// ReviewRecorder records manual-review outcomes.
type ReviewRecorder interface {
	RecordReview(rec ReviewRecord) error
}

// SwapRecord captures a cross-driver load exchange.
type SwapRecord struct {
	DriverA, DriverB string
	LoadA, LoadB     string
	Benefit          float64
	Time             time.Time
}

// SwapRecorder records load swaps.
type SwapRecorder interface {
	RecordSwap(rec SwapRecord) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordAssignment(AssignmentRecord) error { return nil }
func (NopSink) RecordTick(TickRecord) error             { return nil }
func (NopSink) RecordReview(ReviewRecord) error         { return nil }
func (NopSink) RecordSwap(SwapRecord) error             { return nil }

// InfluxConfig holds the connection settings for the InfluxDB sink.
type InfluxConfig struct {
	URL    string `json:"url" yaml:"url"`
	Token  string `json:"token" yaml:"token"`
	Org    string `json:"org" yaml:"org"`
	Bucket string `json:"bucket" yaml:"bucket"`
}

// Config defines settings for metrics sinks.
type Config struct {
	PrometheusEnabled bool         `json:"prometheus_enabled" yaml:"prometheus_enabled"`
	PrometheusAddr    string       `json:"prometheus_addr" yaml:"prometheus_addr"`
	InfluxEnabled     bool         `json:"influx_enabled" yaml:"influx_enabled"`
	Influx            InfluxConfig `json:"influx" yaml:"influx"`
}

// SetDefaults fills in the standard listen address.
func (c *Config) SetDefaults() {
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = ":9090"
	}
}
