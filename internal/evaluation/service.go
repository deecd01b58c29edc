// Package evaluation orchestrates the Ecoscope pipeline: tree assembly,
// weight resolution, assessment, and result storage.
package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"github.com/google/uuid"

	"github.com/ecoscope/ecoscope/internal/registry"
	"github.com/ecoscope/ecoscope/pkg/assess"
	"github.com/ecoscope/ecoscope/pkg/bom"
)

// Service orchestrates evaluation runs against the registry.
type Service struct {
	registry  *registry.Service
	storage   StorageClient
	evaluator *assess.Evaluator
}

// NewService creates a new evaluation Service.
func NewService(reg *registry.Service, storage StorageClient, evaluator *assess.Evaluator) *Service {
	return &Service{
		registry:  reg,
		storage:   storage,
		evaluator: evaluator,
	}
}

// RunResult bundles the persisted evaluation row with the full report.
type RunResult struct {
	Evaluation *registry.EvaluationRow `json:"evaluation"`
	Report     *assess.Report          `json:"report"`
}

// Run executes a full evaluation for one project: load the tree, validate
// it, resolve weights (persisting derived values), assess, and record the
// result. The report and the tree snapshot it ran against are archived in
// blob storage under the evaluation id.
func (s *Service) Run(ctx context.Context, projectID int64) (*RunResult, error) {
	tree, err := s.registry.LoadTree(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load tree: %w", err)
	}
	if err := tree.Validate(); err != nil {
		return nil, fmt.Errorf("validate tree: %w", err)
	}

	before := snapshotWeights(tree)
	if err := s.evaluator.ResolveAll(tree); err != nil {
		return nil, fmt.Errorf("resolve weights: %w", err)
	}
	if err := s.persistChangedWeights(ctx, tree, before); err != nil {
		return nil, err
	}

	report, err := s.evaluator.Evaluate(tree)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	evaluationID := uuid.NewString()
	project := strconv.FormatInt(projectID, 10)

	reportData, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	if err := s.storage.PutReport(ctx, project, evaluationID, reportData); err != nil {
		return nil, fmt.Errorf("put report blob: %w", err)
	}

	treeData, err := bom.EncodeTree(tree)
	if err != nil {
		return nil, fmt.Errorf("encode tree snapshot: %w", err)
	}
	if err := s.storage.PutTree(ctx, project, evaluationID, treeData); err != nil {
		return nil, fmt.Errorf("put tree blob: %w", err)
	}

	row := &registry.EvaluationRow{
		ID:           evaluationID,
		ProjectID:    projectID,
		RootID:       report.RootID,
		Weight:       report.Weight,
		Score:        report.Score,
		RecycleValue: report.Recycle.Value,
		RecycleGrade: report.Recycle.Grade,
		Gate:         gateRef(report.Recycle.Gate),
		ImpactGWP:    report.Impact.TotalGWP,
		ImpactGrade:  report.Impact.Grade,
		ReportRef:    fmt.Sprintf("%s/reports/%s.json", project, evaluationID),
	}
	if err := s.registry.InsertEvaluation(ctx, row); err != nil {
		return nil, err
	}

	log.Printf("evaluation %s completed: project=%d recycle=%s(%.3f) impact=%s score=%.3f",
		evaluationID, projectID, report.Recycle.Grade, report.Recycle.Value,
		report.Impact.Grade, report.Score)

	return &RunResult{Evaluation: row, Report: report}, nil
}

// RecalcComponent re-derives weights along the path from a changed component
// to its root and persists the updated values. Called on store-change
// notifications so cached weights never go stale.
func (s *Service) RecalcComponent(ctx context.Context, projectID, componentID int64) error {
	tree, err := s.registry.LoadTree(ctx, projectID)
	if err != nil {
		return fmt.Errorf("load tree: %w", err)
	}
	if _, ok := tree.Components[componentID]; !ok {
		return fmt.Errorf("component %d not in project %d", componentID, projectID)
	}

	before := snapshotWeights(tree)
	if err := s.evaluator.RecalcAncestors(tree, componentID); err != nil {
		return fmt.Errorf("recalc ancestors of %d: %w", componentID, err)
	}
	return s.persistChangedWeights(ctx, tree, before)
}

// ResolveProject re-derives every weight in a project and persists the
// changes. Used when a localized recalculation is not possible, for example
// after a component was deleted upstream.
func (s *Service) ResolveProject(ctx context.Context, projectID int64) error {
	tree, err := s.registry.LoadTree(ctx, projectID)
	if err != nil {
		return fmt.Errorf("load tree: %w", err)
	}

	before := snapshotWeights(tree)
	if err := s.evaluator.ResolveAll(tree); err != nil {
		return fmt.Errorf("resolve weights: %w", err)
	}
	return s.persistChangedWeights(ctx, tree, before)
}

// GetReport fetches an archived report blob for an evaluation.
func (s *Service) GetReport(ctx context.Context, projectID int64, evaluationID string) (*assess.Report, error) {
	data, err := s.storage.GetReport(ctx, strconv.FormatInt(projectID, 10), evaluationID)
	if err != nil {
		return nil, fmt.Errorf("get report blob: %w", err)
	}
	var report assess.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &report, nil
}

// GetTree fetches the archived tree snapshot an evaluation ran against.
func (s *Service) GetTree(ctx context.Context, projectID int64, evaluationID string) ([]byte, error) {
	data, err := s.storage.GetTree(ctx, strconv.FormatInt(projectID, 10), evaluationID)
	if err != nil {
		return nil, fmt.Errorf("get tree blob: %w", err)
	}
	return data, nil
}

// snapshotWeights copies the current weight values so the caller can tell
// which components the resolver actually touched.
func snapshotWeights(t *bom.Tree) map[int64]*float64 {
	before := make(map[int64]*float64, len(t.Components))
	for id, c := range t.Components {
		if c.Weight != nil {
			w := *c.Weight
			before[id] = &w
		} else {
			before[id] = nil
		}
	}
	return before
}

func (s *Service) persistChangedWeights(ctx context.Context, t *bom.Tree, before map[int64]*float64) error {
	for id, c := range t.Components {
		if c.Weight == nil {
			continue
		}
		prev := before[id]
		if prev != nil && *prev == *c.Weight {
			continue
		}
		if err := s.registry.UpdateComponentWeight(ctx, id, *c.Weight); err != nil {
			return err
		}
	}
	return nil
}

func gateRef(gate assess.GateReason) *string {
	if gate == assess.GateNone {
		return nil
	}
	s := string(gate)
	return &s
}
