// Package main provides the ecoscope CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "ecoscope",
		Short: "Environmental and recyclability intelligence for product bills of materials",
		Long: `Ecoscope loads component tree snapshots, resolves part weights, and assesses
sustainability scores, environmental impact and recyclability.`,
		Version: version,
	}

	rootCmd.AddCommand(
		newAssessCmd(),
		newTreeCmd(),
		newBreakdownCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
