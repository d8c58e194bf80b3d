// Package distance provides the built-in distance estimator. Real routing
// engines plug in behind the same interface; this adapter serves tests,
// demos and deployments that feed a pre-computed lane matrix.
package distance

import (
	"context"

	"github.com/loadaxis/fleetopt/core/consolidation"
)

// Config tunes the matrix estimator.
type Config struct {
	AverageSpeedMph float64                       `json:"average_speed_mph" yaml:"average_speed_mph"`
	DefaultMiles    float64                       `json:"default_miles" yaml:"default_miles"`
	Matrix          map[string]map[string]float64 `json:"matrix" yaml:"matrix"`
}

// SetDefaults fills in the standard highway speed and fallback distance.
func (c *Config) SetDefaults() {
	if c.AverageSpeedMph == 0 {
		c.AverageSpeedMph = 55
	}
	if c.DefaultMiles == 0 {
		c.DefaultMiles = 250
	}
}

// MatrixEstimator resolves lane distances from a configured matrix. Lookups
// are symmetric; unknown lanes fall back to the configured default so the
// optimizer always gets an answer.
type MatrixEstimator struct {
	cfg Config
}

// NewMatrix creates a MatrixEstimator.
func NewMatrix(cfg Config) *MatrixEstimator {
	cfg.SetDefaults()
	return &MatrixEstimator{cfg: cfg}
}

// Estimate returns the lane's miles and driving minutes. The context is
// honored so a cancelled optimization pass stops immediately.
func (m *MatrixEstimator) Estimate(ctx context.Context, from, to string) (consolidation.Leg, error) {
	if err := ctx.Err(); err != nil {
		return consolidation.Leg{}, err
	}
	if from == to {
		return consolidation.Leg{}, nil
	}
	miles := m.cfg.DefaultMiles
	if row, ok := m.cfg.Matrix[from]; ok {
		if v, ok := row[to]; ok {
			miles = v
		}
	} else if row, ok := m.cfg.Matrix[to]; ok {
		if v, ok := row[from]; ok {
			miles = v
		}
	}
	return consolidation.Leg{
		Miles:   miles,
		Minutes: miles / m.cfg.AverageSpeedMph * 60,
	}, nil
}
