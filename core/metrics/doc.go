// Package metrics defines the recording interfaces the optimization engine
// emits observability data through. Sinks live under infra/metrics; the
// engine only sees these interfaces.
package metrics
