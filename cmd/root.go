package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/loadaxis/fleetopt/app"
	"github.com/loadaxis/fleetopt/config"
	"github.com/loadaxis/fleetopt/infra/logger"
)

var (
	cfgPath     string
	fixturePath string
)

var rootCmd = &cobra.Command{
	Use:   "fleetopt",
	Short: "Continuous fleet-utilization optimization service",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.PersistentFlags().StringVarP(&fixturePath, "fixture", "f", "", "JSON fleet snapshot to seed the in-memory stores")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx)
}

func newService(ctx context.Context) (*app.Service, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if fixturePath != "" {
		fx, err := app.LoadFixture(fixturePath)
		if err != nil {
			return nil, err
		}
		if err := svc.Seed(fx); err != nil {
			return nil, err
		}
	}
	return svc, nil
}
