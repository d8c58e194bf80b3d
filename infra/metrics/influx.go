package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/loadaxis/fleetopt/core/metrics"
	"github.com/loadaxis/fleetopt/infra/logger"
)

// InfluxSink writes optimization events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg coremetrics.InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg coremetrics.InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordAssignment writes the assignment as a line protocol point.
func (s *InfluxSink) RecordAssignment(rec coremetrics.AssignmentRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("load_assignment").
		AddTag("driver_id", rec.DriverID).
		AddTag("strategy", rec.Strategy).
		AddTag("component", "optimization_loop").
		AddField("loads", len(rec.LoadIDs)).
		AddField("revenue", round3(rec.Revenue)).
		AddField("score", round3(rec.Score)).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTick persists the summary of one optimization pass.
func (s *InfluxSink) RecordTick(rec coremetrics.TickRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("optimization_tick").
		AddTag("component", "optimization_loop").
		AddField("drivers_evaluated", rec.DriversEvaluated).
		AddField("proposals_implemented", rec.ProposalsImplemented).
		AddField("proposals_queued", rec.ProposalsQueued).
		AddField("swaps_implemented", rec.SwapsImplemented).
		AddField("mean_utilization_pct", round3(rec.MeanUtilizationPct)).
		AddField("duration_ms", round3(rec.Duration.Seconds()*1000)).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordReview writes a queued-for-review event.
func (s *InfluxSink) RecordReview(rec coremetrics.ReviewRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("manual_review_queued").
		AddTag("driver_id", rec.DriverID).
		AddTag("trigger_id", rec.TriggerID).
		AddTag("component", "automation_gate").
		AddField("reasons", strings.Join(rec.Reasons, "; ")).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSwap writes a cross-driver swap event.
func (s *InfluxSink) RecordSwap(rec coremetrics.SwapRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("load_swap").
		AddTag("driver_a", rec.DriverA).
		AddTag("driver_b", rec.DriverB).
		AddTag("component", "optimization_loop").
		AddField("load_a", rec.LoadA).
		AddField("load_b", rec.LoadB).
		AddField("benefit", round3(rec.Benefit)).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
