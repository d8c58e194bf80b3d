// Package notify provides the notification sink adapters the automation gate
// and the optimization loop fan messages out through: the service log, an
// MQTT topic for the driver app, and a Redis channel for the dispatch
// dashboard.
package notify

import (
	"context"
	"sync"

	"github.com/loadaxis/fleetopt/core/fleet"
	"github.com/loadaxis/fleetopt/infra/logger"
)

// LogSink writes notifications to the service log. It is the default sink
// when no external channel is configured.
type LogSink struct {
	log logger.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink() *LogSink {
	return &LogSink{log: logger.New("notify")}
}

// Notify logs the message with its channel and metadata.
func (s *LogSink) Notify(_ context.Context, ch fleet.Channel, message string, meta map[string]string) error {
	fields := map[string]any{"channel": string(ch)}
	for k, v := range meta {
		fields[k] = v
	}
	s.log.Infof("[%s] %s", ch, message)
	s.log.Debugw(message, fields)
	return nil
}

// MultiSink fans a notification out to several sinks concurrently. Each sink
// receives every message; the first error is returned after all deliveries
// finish, so one failing channel never suppresses the others.
type MultiSink struct {
	sinks []fleet.NotificationSink
}

// NewMultiSink creates a MultiSink.
func NewMultiSink(sinks ...fleet.NotificationSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Notify delivers to all sinks concurrently.
func (m *MultiSink) Notify(ctx context.Context, ch fleet.Channel, message string, meta map[string]string) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, sink := range m.sinks {
		wg.Add(1)
		go func(s fleet.NotificationSink) {
			defer wg.Done()
			if err := s.Notify(ctx, ch, message, meta); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(sink)
	}
	wg.Wait()
	return firstErr
}
