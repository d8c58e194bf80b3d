package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadYAMLAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
fleet:
  auto_approve_threshold: 90
stores:
  backend: memory
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 90.0, cfg.Fleet.AutoApproveThreshold)
	// Untouched sections get their defaults.
	assert.Equal(t, 3, cfg.Fleet.MaxConsolidationLoads)
	assert.Equal(t, 30, cfg.Scheduler.HorizonDays)
	assert.Equal(t, ":9090", cfg.Metrics.PrometheusAddr)
	assert.Equal(t, 55.0, cfg.Distance.AverageSpeedMph)
	assert.Equal(t, BackendMemory, cfg.Stores.Backend)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
  "fleet": {"optimization_frequency_minutes": 10},
  "optimizer": {"fuel_per_mile": 0.8}
}`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Fleet.OptimizationFrequencyMinutes)
	opts := cfg.Optimizer.Options()
	assert.Equal(t, 0.8, opts.Costs.FuelPerMile)
	assert.Equal(t, 28.0, opts.Costs.LaborPerHour)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
fleet:
  auto_approve_threshold: 85
`)
	t.Setenv("K_FLEET__AUTO_APPROVE_THRESHOLD", "92")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 92.0, cfg.Fleet.AutoApproveThreshold)
}

func TestLoadRejectsUnsupportedFormat(t *testing.T) {
	path := writeConfig(t, "config.toml", "x = 1")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidSection(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
fleet:
  auto_approve_threshold: 150
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestStoresConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     StoresConfig
		wantErr bool
	}{
		{"memory", StoresConfig{Backend: BackendMemory}, false},
		{"postgres with dsn", StoresConfig{Backend: BackendPostgres, PostgresDSN: "postgres://localhost/fleet"}, false},
		{"postgres without dsn", StoresConfig{Backend: BackendPostgres}, true},
		{"unknown", StoresConfig{Backend: "cassandra"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
