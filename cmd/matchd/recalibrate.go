package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var recalibrateCmd = &cobra.Command{
	Use:   "recalibrate",
	Short: "Run one learning pass and save a weights proposal",
	Long: "Correlates the score components of completed introductions with " +
		"their feedback scores and saves a candidate weight configuration for " +
		"operator review. Nothing is applied automatically.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return recalibrate(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(recalibrateCmd)
}

func recalibrate(ctx context.Context) error {
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	proposal, err := a.learning.Run(ctx)
	if err != nil {
		return fmt.Errorf("learning pass: %w", err)
	}

	a.logger.Info("proposal ready for review",
		zap.Int("version", proposal.Weights.Version()),
		zap.Int("sample_size", proposal.SampleSize),
	)
	return nil
}
