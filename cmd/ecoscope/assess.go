package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ecoscope/ecoscope/pkg/assess"
	"github.com/ecoscope/ecoscope/pkg/bom"
	"github.com/ecoscope/ecoscope/pkg/config"
	"github.com/ecoscope/ecoscope/pkg/surface"
)

func newAssessCmd() *cobra.Command {
	var (
		configPath string
		outputFmt  string
		noSave     bool
	)

	cmd := &cobra.Command{
		Use:   "assess <tree.json>",
		Short: "Full assessment of a component tree snapshot",
		Long:  `Resolves part weights bottom-up, then computes the sustainability score, aggregate environmental impact, and recycle evaluation.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssess(assessOpts{
				treePath:   args[0],
				configPath: configPath,
				outputFmt:  outputFmt,
				noSave:     noSave,
			})
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file (default: .ecoscope/config.yaml in a parent directory)")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Skip saving the report and resolved tree to the cache directory")

	return cmd
}

type assessOpts struct {
	treePath   string
	configPath string
	outputFmt  string
	noSave     bool
}

func runAssess(opts assessOpts) error {
	tree, err := bom.LoadTree(opts.treePath)
	if err != nil {
		return err
	}
	if err := tree.Validate(); err != nil {
		return fmt.Errorf("invalid tree: %w", err)
	}

	cfg := loadConfig(opts.treePath, opts.configPath)
	evaluator := assess.NewEvaluator(cfg.Weights())

	if err := evaluator.ResolveAll(tree); err != nil {
		return fmt.Errorf("resolving weights: %w", err)
	}

	report, err := evaluator.Evaluate(tree)
	if err != nil {
		return fmt.Errorf("assessing: %w", err)
	}

	if !opts.noSave {
		saveReport(opts.treePath, cfg, tree, report)
	}

	switch opts.outputFmt {
	case "json":
		renderer := &surface.JSONRenderer{}
		if err := renderer.Render(os.Stdout, report); err != nil {
			return fmt.Errorf("rendering: %w", err)
		}
	default:
		renderer := &surface.TerminalRenderer{}
		if err := renderer.Render(os.Stdout, report); err != nil {
			return fmt.Errorf("rendering: %w", err)
		}
	}

	return nil
}

// saveReport persists the report and the resolved tree to the cache
// directory, so later runs can diff against them.
func saveReport(treePath string, cfg *config.Config, tree *bom.Tree, report *assess.Report) {
	reportDir := firstNonEmpty(cfg.Reports.Dir, config.ReportDir(treePath))
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to create report dir: %v\n", err)
		return
	}

	id := uuid.NewString()
	wrapped := struct {
		*assess.Report
		ID         string `json:"id"`
		AssessedAt string `json:"assessed_at"`
	}{
		Report:     report,
		ID:         id,
		AssessedAt: time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.MarshalIndent(wrapped, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to marshal report: %v\n", err)
		return
	}

	path := filepath.Join(reportDir, id+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save report: %v\n", err)
		return
	}

	treeOut := filepath.Join(config.TreeDir(treePath), id+".json")
	if err := bom.SaveTree(treeOut, tree); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save resolved tree: %v\n", err)
	}

	fmt.Fprintf(os.Stderr, "Report saved: %s\n", path)
}

func loadConfig(treePath, explicit string) *config.Config {
	cfgFile := explicit
	if cfgFile == "" {
		dir, err := filepath.Abs(filepath.Dir(treePath))
		if err != nil {
			return config.DefaultConfig()
		}
		cfgFile = config.FindConfigFile(dir)
	}
	if cfgFile == "" {
		return config.DefaultConfig()
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		return config.DefaultConfig()
	}
	return cfg
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
