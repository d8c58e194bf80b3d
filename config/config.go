package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/loadaxis/fleetopt/core/consolidation"
	"github.com/loadaxis/fleetopt/core/fleet"
	"github.com/loadaxis/fleetopt/core/metrics"
	"github.com/loadaxis/fleetopt/core/scheduler"
	"github.com/loadaxis/fleetopt/infra/distance"
	"github.com/loadaxis/fleetopt/infra/notify"
)

// OptimizerConfig exposes the bundle optimizer tunables in configuration
// files. Zero fields fall back to the standard rate card and limits.
type OptimizerConfig struct {
	MaxBundleSize      int     `json:"max_bundle_size" yaml:"max_bundle_size"`
	ServiceMinutes     float64 `json:"service_minutes" yaml:"service_minutes"`
	FuelPerMile        float64 `json:"fuel_per_mile" yaml:"fuel_per_mile"`
	LaborPerHour       float64 `json:"labor_per_hour" yaml:"labor_per_hour"`
	MaintenancePerMile float64 `json:"maintenance_per_mile" yaml:"maintenance_per_mile"`
}

// Options converts the configuration into optimizer options.
func (c OptimizerConfig) Options() consolidation.Options {
	costs := consolidation.DefaultCostModel()
	if c.FuelPerMile > 0 {
		costs.FuelPerMile = c.FuelPerMile
	}
	if c.LaborPerHour > 0 {
		costs.LaborPerHour = c.LaborPerHour
	}
	if c.MaintenancePerMile > 0 {
		costs.MaintenancePerMile = c.MaintenancePerMile
	}
	return consolidation.Options{
		MaxBundleSize:  c.MaxBundleSize,
		ServiceMinutes: c.ServiceMinutes,
		Costs:          costs,
	}
}

// Validate rejects negative rates.
func (c OptimizerConfig) Validate() error {
	if c.MaxBundleSize < 0 {
		return fmt.Errorf("optimizer: max_bundle_size must not be negative, got %d", c.MaxBundleSize)
	}
	if c.FuelPerMile < 0 || c.LaborPerHour < 0 || c.MaintenancePerMile < 0 {
		return fmt.Errorf("optimizer: cost rates must not be negative")
	}
	return nil
}

// Store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// StoresConfig selects the load store backend.
type StoresConfig struct {
	Backend     string `json:"backend" yaml:"backend"`
	PostgresDSN string `json:"postgres_dsn" yaml:"postgres_dsn"`
}

// SetDefaults selects the in-memory backend when none is configured.
func (c *StoresConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
}

// Validate checks the backend selection.
func (c StoresConfig) Validate() error {
	switch c.Backend {
	case BackendMemory:
		return nil
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("stores: postgres backend requires postgres_dsn")
		}
		return nil
	default:
		return fmt.Errorf("stores: unknown backend %q", c.Backend)
	}
}

// NotifyConfig enables optional outbound notification transports. The log
// sink is always active; MQTT and Redis are attached when configured.
type NotifyConfig struct {
	MQTT  *notify.MQTTConfig  `json:"mqtt" yaml:"mqtt"`
	Redis *notify.RedisConfig `json:"redis" yaml:"redis"`
}

// Config is the root application configuration.
type Config struct {
	Optimizer OptimizerConfig  `json:"optimizer"`
	Scheduler scheduler.Config `json:"scheduler"`
	Fleet     fleet.Config     `json:"fleet"`
	Metrics   metrics.Config   `json:"metrics"`
	Stores    StoresConfig     `json:"stores"`
	Notify    NotifyConfig     `json:"notify"`
	Distance  distance.Config  `json:"distance"`
}

// Load reads the configuration file at path, applies K_-prefixed environment
// overrides, fills defaults and validates every section.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Fleet.SetDefaults()
	cfg.Scheduler.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Stores.SetDefaults()
	cfg.Distance.SetDefaults()
	if err := cfg.Optimizer.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Fleet.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Scheduler.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Stores.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
