package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the lifecycle sweeps once (approval, expiry, incomplete)",
	Long: "Promotes held introductions whose veto window elapsed, expires sent " +
		"introductions past the response window, and marks stale accepted " +
		"introductions incomplete. Run from cron or a scheduler.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return sweep(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func sweep(ctx context.Context) error {
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	approved, err := a.lifecycle.ApprovalSweep(ctx)
	if err != nil {
		return fmt.Errorf("approval sweep: %w", err)
	}
	expired, err := a.lifecycle.ExpireSweep(ctx)
	if err != nil {
		return fmt.Errorf("expire sweep: %w", err)
	}
	incomplete, err := a.lifecycle.IncompleteSweep(ctx)
	if err != nil {
		return fmt.Errorf("incomplete sweep: %w", err)
	}

	a.logger.Info("sweeps finished",
		zap.Int("approved", approved),
		zap.Int("expired", expired),
		zap.Int("incomplete", incomplete),
	)
	return nil
}
