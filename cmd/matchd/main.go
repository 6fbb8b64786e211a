package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const appName = "matchd"

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "matchd is the founder matching and introduction engine",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
