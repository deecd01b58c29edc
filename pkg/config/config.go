// Package config handles loading and managing Ecoscope configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ecoscope/ecoscope/pkg/assess"
)

// Config is the top-level configuration for Ecoscope.
type Config struct {
	Assessment AssessmentConfig `yaml:"assessment"`
	Reports    ReportsConfig    `yaml:"reports"`
}

// AssessmentConfig tunes the assessment formulas. Zero values fall back to
// the engine defaults.
type AssessmentConfig struct {
	ReuseFactor           float64 `yaml:"reuse_factor"`
	ConnectionPenaltyStep float64 `yaml:"connection_penalty_step"`
	ContaminationSentinel float64 `yaml:"contamination_sentinel"`
	SystemAbilityGate     float64 `yaml:"system_ability_gate"`
	RoundDigits           int     `yaml:"round_digits"`
}

// ReportsConfig controls where the CLI keeps assessment artifacts.
type ReportsConfig struct {
	Dir string `yaml:"dir"` // empty means the per-workspace cache dir
}

// DefaultConfig returns a Config mirroring the engine defaults.
func DefaultConfig() *Config {
	w := assess.Defaults()
	return &Config{
		Assessment: AssessmentConfig{
			ReuseFactor:           w.ReuseFactor,
			ConnectionPenaltyStep: w.ConnectionPenaltyStep,
			ContaminationSentinel: w.ContaminationSentinel,
			SystemAbilityGate:     w.SystemAbilityGate,
			RoundDigits:           w.RoundDigits,
		},
	}
}

// Weights materializes the configured assessment weights, substituting the
// engine defaults for unset values.
func (c *Config) Weights() assess.Weights {
	w := assess.Defaults()
	if c.Assessment.ReuseFactor > 0 {
		w.ReuseFactor = c.Assessment.ReuseFactor
	}
	if c.Assessment.ConnectionPenaltyStep > 0 {
		w.ConnectionPenaltyStep = c.Assessment.ConnectionPenaltyStep
	}
	if c.Assessment.ContaminationSentinel > 0 {
		w.ContaminationSentinel = c.Assessment.ContaminationSentinel
	}
	if c.Assessment.SystemAbilityGate > 0 {
		w.SystemAbilityGate = c.Assessment.SystemAbilityGate
	}
	if c.Assessment.RoundDigits > 0 {
		w.RoundDigits = c.Assessment.RoundDigits
	}
	return w
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// FindConfigFile looks for .ecoscope/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".ecoscope", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// CacheDir returns the cache directory for a given tree file or project
// directory. Uses ~/.cache/ecoscope/<slug>/ to avoid polluting the workspace.
func CacheDir(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to temp dir if HOME isn't available
		home = os.TempDir()
	}
	return filepath.Join(home, ".cache", "ecoscope", pathSlug(path))
}

// ReportDir returns the report storage directory for a tree file or project.
func ReportDir(path string) string {
	return filepath.Join(CacheDir(path), "reports")
}

// TreeDir returns the tree snapshot storage directory for a tree file or project.
func TreeDir(path string) string {
	return filepath.Join(CacheDir(path), "trees")
}

// pathSlug creates a filesystem-safe identifier from a path.
// Uses the last two path components (e.g., "bottles_pump.json").
func pathSlug(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	dir := filepath.Base(filepath.Dir(abs))
	base := filepath.Base(abs)
	return dir + "_" + base
}
