package metrics

import coremetrics "github.com/loadaxis/fleetopt/core/metrics"

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAssignment forwards the record to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordAssignment(rec coremetrics.AssignmentRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordAssignment(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordTick forwards tick summaries when supported by the sink.
func (m *MultiSink) RecordTick(rec coremetrics.TickRecord) error {
	for _, s := range m.Sinks {
		if tr, ok := s.(coremetrics.TickRecorder); ok {
			if err := tr.RecordTick(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordReview forwards review records when supported by the sink.
func (m *MultiSink) RecordReview(rec coremetrics.ReviewRecord) error {
	for _, s := range m.Sinks {
		if rr, ok := s.(coremetrics.ReviewRecorder); ok {
			if err := rr.RecordReview(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordSwap forwards swap records when supported by the sink.
func (m *MultiSink) RecordSwap(rec coremetrics.SwapRecord) error {
	for _, s := range m.Sinks {
		if sr, ok := s.(coremetrics.SwapRecorder); ok {
			if err := sr.RecordSwap(rec); err != nil {
				return err
			}
		}
	}
	return nil
}
