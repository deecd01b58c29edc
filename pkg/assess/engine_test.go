package assess_test

import (
	"testing"

	"github.com/ecoscope/ecoscope/pkg/assess"
	"github.com/ecoscope/ecoscope/pkg/bom"
)

func TestEvaluateFullReport(t *testing.T) {
	tree := mustTree(t,
		[]*bom.Component{
			{ID: 1, IsAtomic: false, SystemAbility: 1.0},
			{
				ID: 2, ParentID: i64(1), IsAtomic: true, MaterialID: i64(10),
				Volume: f64(0.5), RFactor: 1.0, SeparationEff: 1.0, SortingEff: 1.0,
			},
			{
				ID: 3, ParentID: i64(1), IsAtomic: true, MaterialID: i64(11),
				Weight: f64(1.0), RFactor: 1.0, SeparationEff: 1.0, SortingEff: 1.0,
			},
		},
		[]*bom.Material{
			{ID: 10, Name: "Steel", Density: f64(4.0), TotalGWP: f64(10.0)},
			{ID: 11, Name: "Wood", TotalGWP: f64(5.0)},
		},
		nil,
	)

	e := assess.NewEvaluator(assess.Defaults())
	report, err := e.Evaluate(tree)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if report.RootID != 1 {
		t.Errorf("root id = %d, want 1", report.RootID)
	}
	approx(t, report.Weight, 3.0, 1e-9, "root weight")
	// weight 3 x (20 + 5) x 1.0 x 1.0
	approx(t, report.Score, 75.0, 1e-9, "score")
	approx(t, report.Impact.TotalGWP, 25.0, 1e-9, "total gwp")
	if report.Impact.Grade != "B" {
		t.Errorf("impact grade = %q, want B", report.Impact.Grade)
	}
	if report.Recycle.Gated() {
		t.Errorf("unexpected gate %q", report.Recycle.Gate)
	}
	if report.Stats.ComponentCount != 3 || report.Stats.AtomicCount != 2 || report.Stats.RootCount != 1 {
		t.Errorf("unexpected stats %+v", report.Stats)
	}
}

func TestEvaluateForestUsesLowestIDRoot(t *testing.T) {
	tree := mustTree(t,
		[]*bom.Component{
			{ID: 5, IsAtomic: true, MaterialID: i64(10), Weight: f64(1.0), SystemAbility: 1.0, RFactor: 1.0, SeparationEff: 1.0, SortingEff: 1.0},
			{ID: 9, IsAtomic: true, MaterialID: i64(10), Weight: f64(2.0), RFactor: 1.0, SeparationEff: 1.0, SortingEff: 1.0},
		},
		[]*bom.Material{{ID: 10, TotalGWP: f64(1.0)}},
		nil,
	)

	e := assess.NewEvaluator(assess.Defaults())
	report, err := e.Evaluate(tree)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if report.RootID != 5 {
		t.Errorf("root id = %d, want lowest id 5", report.RootID)
	}
	// Component 5 carries systemability 1.0, so the gate passes.
	if report.Recycle.Gate == assess.GateSystemIncompatible {
		t.Error("system gate must read the lowest-id root")
	}
}

func TestEvaluateNilAndEmptyTrees(t *testing.T) {
	e := assess.NewEvaluator(assess.Defaults())

	if _, err := e.Evaluate(nil); err == nil {
		t.Error("expected error for nil tree")
	}

	empty := mustTree(t, nil, nil, nil)
	if _, err := e.Evaluate(empty); err == nil {
		t.Error("expected error for rootless tree")
	}
}

func TestEvaluateCyclicTreeReportsStructuralError(t *testing.T) {
	tree := mustTree(t,
		[]*bom.Component{
			{ID: 1, IsAtomic: false},
			{ID: 2, ParentID: i64(1), IsAtomic: false},
		},
		nil, nil,
	)
	// Introduce the loop after indexing, the way a buggy reparent would.
	tree.Components[1].ParentID = i64(2)
	if err := tree.Reindex(); err != nil {
		t.Fatalf("Reindex: %v", err)
	}

	e := assess.NewEvaluator(assess.Defaults())
	_, err := e.Evaluate(tree)
	if err == nil {
		t.Fatal("expected error for cyclic tree")
	}
	if !bom.IsStructural(err) {
		t.Errorf("expected StructuralError, got %v", err)
	}
}
