package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/loadaxis/fleetopt/core/model"
	"github.com/loadaxis/fleetopt/infra/stores"
)

// Fixture is a JSON snapshot of fleet state used to seed the in-memory
// backend for one-shot runs and demos.
type Fixture struct {
	Drivers []model.DriverUtilizationTarget
	Loads   []model.Load
}

// LoadFixture reads a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixture: %w", err)
	}
	var fx Fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return &fx, nil
}

// Seed loads the fixture into the service's stores. Only the in-memory
// backend accepts seeding.
func (s *Service) Seed(fx *Fixture) error {
	loads, ok := s.Loads.(*stores.MemoryLoadStore)
	if !ok {
		return fmt.Errorf("seed: load store backend does not accept fixtures")
	}
	drivers, ok := s.Drivers.(*stores.MemoryDriverStore)
	if !ok {
		return fmt.Errorf("seed: driver store backend does not accept fixtures")
	}
	for _, l := range fx.Loads {
		if err := loads.Put(l); err != nil {
			return fmt.Errorf("seed load %s: %w", l.ID, err)
		}
	}
	for _, t := range fx.Drivers {
		if err := drivers.PutDriver(t); err != nil {
			return fmt.Errorf("seed driver %s: %w", t.Driver.DriverID, err)
		}
	}
	return nil
}
