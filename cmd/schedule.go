package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/loadaxis/fleetopt/app"
	"github.com/loadaxis/fleetopt/core/model"
)

var scheduleDriverID string

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Plan a multi-day schedule for one driver from a fleet snapshot",
	RunE:  runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVarP(&scheduleDriverID, "driver", "d", "", "driver to plan for (defaults to the first in the fixture)")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if fixturePath == "" {
		return fmt.Errorf("schedule requires --fixture with drivers and loads")
	}
	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	fx, err := app.LoadFixture(fixturePath)
	if err != nil {
		return err
	}
	target, err := pickDriver(fx, scheduleDriverID)
	if err != nil {
		return err
	}

	plan, err := svc.Scheduler.PlanHorizon(ctx, target.Driver, fx.Loads, target.Capacity)
	if err != nil {
		return fmt.Errorf("plan horizon: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}

func pickDriver(fx *app.Fixture, id string) (model.DriverUtilizationTarget, error) {
	if len(fx.Drivers) == 0 {
		return model.DriverUtilizationTarget{}, fmt.Errorf("fixture contains no drivers")
	}
	if id == "" {
		return fx.Drivers[0], nil
	}
	for _, t := range fx.Drivers {
		if t.Driver.DriverID == id {
			return t, nil
		}
	}
	return model.DriverUtilizationTarget{}, fmt.Errorf("driver %s not found in fixture", id)
}
