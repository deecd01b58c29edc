package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ecoscope/ecoscope/pkg/assess"
	"github.com/ecoscope/ecoscope/pkg/bom"
	"github.com/ecoscope/ecoscope/pkg/bomquery"
)

func newBreakdownCmd() *cobra.Command {
	var (
		configPath string
		outputFmt  string
	)

	cmd := &cobra.Command{
		Use:   "breakdown <tree.json>",
		Short: "Weight share per material family",
		Long:  `Resolves part weights and aggregates them by material family, the grouping recyclers sort by.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBreakdown(args[0], configPath, outputFmt)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file (default: .ecoscope/config.yaml in a parent directory)")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")

	return cmd
}

func runBreakdown(treePath, configPath, outputFmt string) error {
	tree, err := bom.LoadTree(treePath)
	if err != nil {
		return err
	}

	cfg := loadConfig(treePath, configPath)
	evaluator := assess.NewEvaluator(cfg.Weights())
	if err := evaluator.ResolveAll(tree); err != nil {
		return fmt.Errorf("resolving weights: %w", err)
	}

	shares := bomquery.FamilyBreakdown(tree)

	if outputFmt == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(shares)
	}

	for _, s := range shares {
		fmt.Printf("%-16s %8.3f kg  %5.1f%%  (%d parts)\n",
			s.Family, s.Weight, s.Fraction*100, s.Parts)
	}
	return nil
}
