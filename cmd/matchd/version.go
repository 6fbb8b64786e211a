package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ainative-studio/publicfounders/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("%s version %s (commit %s, built %s)\n", appName, version.Version, version.Commit, version.Date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
