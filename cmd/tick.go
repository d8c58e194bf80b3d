package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/loadaxis/fleetopt/infra/logger"
)

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Run a single optimization pass and exit",
	RunE:  runTick,
}

func init() {
	rootCmd.AddCommand(tickCmd)
}

func runTick(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	logg := logger.New("tick-command")
	defer func() {
		if err := svc.Close(); err != nil {
			logg.Errorf("service close: %v", err)
		}
	}()

	res := svc.RunTick(ctx)
	logg.Infof("tick done: evaluated=%d implemented=%d queued=%d skipped=%d swaps=%d errors=%d utilization=%.1f%%",
		res.DriversEvaluated, res.ProposalsImplemented, res.ProposalsQueued,
		res.DriversSkipped, res.SwapsImplemented, res.Errors, res.MeanUtilizationPct)
	return nil
}
