package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/loadaxis/fleetopt/app"
	"github.com/loadaxis/fleetopt/core/model"
)

var (
	optimizeDriverID string
	optimizeTop      int
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Rank load bundles for one driver from a fleet snapshot",
	RunE:  runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVarP(&optimizeDriverID, "driver", "d", "", "driver to optimize for (defaults to the first in the fixture)")
	optimizeCmd.Flags().IntVarP(&optimizeTop, "top", "n", 5, "number of routes to print")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if fixturePath == "" {
		return fmt.Errorf("optimize requires --fixture with drivers and loads")
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
	target, err := pickDriver(fx, optimizeDriverID)
	if err != nil {
		return err
	}

	period := model.TimeWindow{Start: target.Driver.AvailableFrom, End: target.Driver.AvailableTo}
	if period.End.IsZero() {
		period.End = period.Start.Add(7 * 24 * time.Hour)
	}
	routes, err := svc.Scheduler.Optimizer.OptimizeDriverSchedule(ctx, target.Driver, fx.Loads, target.Capacity, period)
	if err != nil {
		return fmt.Errorf("optimize: %w", err)
	}
	if optimizeTop > 0 && len(routes) > optimizeTop {
		routes = routes[:optimizeTop]
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(routes)
}
