package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ecoscope/ecoscope/pkg/assess"
	"github.com/ecoscope/ecoscope/pkg/bom"
)

func newTreeCmd() *cobra.Command {
	var (
		configPath string
		maxDepth   int
		resolve    bool
	)

	cmd := &cobra.Command{
		Use:   "tree <tree.json>",
		Short: "Print the component hierarchy of a tree snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(treeOpts{
				treePath:   args[0],
				configPath: configPath,
				maxDepth:   maxDepth,
				resolve:    resolve,
			})
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file (default: .ecoscope/config.yaml in a parent directory)")
	cmd.Flags().IntVar(&maxDepth, "depth", 0, "Maximum depth to print (0 = unlimited)")
	cmd.Flags().BoolVar(&resolve, "resolve", true, "Resolve weights before printing")

	return cmd
}

type treeOpts struct {
	treePath   string
	configPath string
	maxDepth   int
	resolve    bool
}

func runTree(opts treeOpts) error {
	tree, err := bom.LoadTree(opts.treePath)
	if err != nil {
		return err
	}

	if opts.resolve {
		cfg := loadConfig(opts.treePath, opts.configPath)
		evaluator := assess.NewEvaluator(cfg.Weights())
		if err := evaluator.ResolveAll(tree); err != nil {
			return fmt.Errorf("resolving weights: %w", err)
		}
	}

	for _, root := range tree.Roots() {
		printComponent(tree, root, 0, opts.maxDepth)
	}

	stats := tree.Stats()
	fmt.Fprintf(os.Stderr, "\n%d components, %d atomic, %d materials, %d roots\n",
		stats.ComponentCount, stats.AtomicCount, stats.MaterialCount, stats.RootCount)
	return nil
}

func printComponent(tree *bom.Tree, c *bom.Component, depth, maxDepth int) {
	indent := strings.Repeat("  ", depth)

	label := c.Name
	if c.IsAtomic {
		if mat := tree.MaterialOf(c); mat != nil {
			label += " [" + mat.Name + "]"
		}
	}
	weight := "?"
	if c.Weight != nil {
		weight = fmt.Sprintf("%.3f kg", *c.Weight)
	}
	fmt.Printf("%s#%d %s (%s)\n", indent, c.ID, label, weight)

	if maxDepth > 0 && depth+1 >= maxDepth {
		return
	}
	for _, child := range tree.Children(c.ID) {
		printComponent(tree, child, depth+1, maxDepth)
	}
}
