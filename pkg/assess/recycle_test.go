package assess_test

import (
	"testing"

	"github.com/ecoscope/ecoscope/pkg/assess"
	"github.com/ecoscope/ecoscope/pkg/bom"
)

// twoSiblingTree builds the reference scenario: a system-compatible root with
// two equal-weight atomic parts.
func twoSiblingTree(t *testing.T, dangerous bool) *bom.Tree {
	t.Helper()
	return mustTree(t,
		[]*bom.Component{
			{ID: 1, IsAtomic: false, SystemAbility: 1.0},
			{
				ID: 2, ParentID: i64(1), IsAtomic: true, MaterialID: i64(10),
				Volume: f64(1.0), RFactor: 1.0, SeparationEff: 1.0, SortingEff: 1.0,
				CompatBonus: 0.5,
			},
			{
				ID: 3, ParentID: i64(1), IsAtomic: true, MaterialID: i64(11),
				Volume: f64(1.0), RFactor: 0.9, SeparationEff: 0.95, SortingEff: 0.9,
				CompatBonus: 0.5,
			},
		},
		[]*bom.Material{
			{ID: 10, Name: "PE", Density: f64(1.0)},
			{ID: 11, Name: "PP", Density: f64(1.0), IsDangerous: dangerous},
		},
		nil,
	)
}

func TestRecycleEvaluationReference(t *testing.T) {
	tree := twoSiblingTree(t, false)
	e := assess.NewEvaluator(assess.Defaults())

	r, err := e.EvaluateRecycling(tree)
	if err != nil {
		t.Fatalf("EvaluateRecycling: %v", err)
	}

	// fractions 0.5/0.5: pW=0.95, etaSep=0.975, etaSort=0.95,
	// pair bonus 0.25*0.5=0.125 -> 0.95*(0.92625+0.125)=0.9987 -> 0.999
	approx(t, r.Value, 0.999, 1e-9, "recycle value")
	if r.Grade != "A" {
		t.Errorf("grade = %q, want A", r.Grade)
	}
	if r.Gated() {
		t.Errorf("unexpected gate %q", r.Gate)
	}
}

func TestRecycleEvaluationUnequalWeights(t *testing.T) {
	tree := mustTree(t,
		[]*bom.Component{
			{ID: 1, IsAtomic: false, SystemAbility: 1.0},
			{
				ID: 2, ParentID: i64(1), IsAtomic: true, MaterialID: i64(10),
				Volume: f64(2.0), RFactor: 1.0, SeparationEff: 1.0, SortingEff: 1.0,
			},
			{
				ID: 3, ParentID: i64(1), IsAtomic: true, MaterialID: i64(11),
				Volume: f64(1.0), RFactor: 0.9, SeparationEff: 0.95, SortingEff: 0.95,
			},
		},
		[]*bom.Material{
			{ID: 10, Name: "PE", Density: f64(1.0)},
			{ID: 11, Name: "PP", Density: f64(1.0)},
		},
		nil,
	)
	e := assess.NewEvaluator(assess.Defaults())

	r, err := e.EvaluateRecycling(tree)
	if err != nil {
		t.Fatalf("EvaluateRecycling: %v", err)
	}
	approx(t, r.Value, 0.935, 1e-3, "recycle value")
	if r.Grade != "B" {
		t.Errorf("grade = %q, want B", r.Grade)
	}
}

func TestRecycleDangerousMaterialGate(t *testing.T) {
	tree := twoSiblingTree(t, true)
	e := assess.NewEvaluator(assess.Defaults())

	r, err := e.EvaluateRecycling(tree)
	if err != nil {
		t.Fatalf("EvaluateRecycling: %v", err)
	}
	if r.Value != 0 || r.Grade != "F" {
		t.Errorf("dangerous material must force {0, F}, got {%v, %s}", r.Value, r.Grade)
	}
	if r.Gate != assess.GateDangerousMaterial {
		t.Errorf("gate = %q, want %q", r.Gate, assess.GateDangerousMaterial)
	}
}

func TestRecycleNoAtomicsGate(t *testing.T) {
	tree := mustTree(t,
		[]*bom.Component{{ID: 1, IsAtomic: false, SystemAbility: 1.0}},
		nil, nil,
	)
	e := assess.NewEvaluator(assess.Defaults())

	r, err := e.EvaluateRecycling(tree)
	if err != nil {
		t.Fatalf("EvaluateRecycling: %v", err)
	}
	if r.Gate != assess.GateNoAtomicParts || r.Value != 0 || r.Grade != "F" {
		t.Errorf("expected no-atomics gate, got %+v", r)
	}
}

func TestRecycleContaminationSentinel(t *testing.T) {
	tree := twoSiblingTree(t, false)
	// Malus of exactly 3 on one part marks every pair containing it.
	tree.Components[3].CompatMalus = 3.0
	e := assess.NewEvaluator(assess.Defaults())

	r, err := e.EvaluateRecycling(tree)
	if err != nil {
		t.Fatalf("EvaluateRecycling: %v", err)
	}
	if r.Gate != assess.GateContaminated || r.Value != 0 || r.Grade != "F" {
		t.Errorf("expected contamination gate, got %+v", r)
	}
}

func TestRecycleCompatTableOverridesComponents(t *testing.T) {
	tree := twoSiblingTree(t, false)
	// The table entry replaces the per-component fallback entirely.
	tree.Compat = bom.CompatTable{
		bom.MakePairKey(11, 10): {Bonus: 0.0, Malus: 0.0},
	}
	e := assess.NewEvaluator(assess.Defaults())

	r, err := e.EvaluateRecycling(tree)
	if err != nil {
		t.Fatalf("EvaluateRecycling: %v", err)
	}
	// Same as reference but without the 0.125 bonus: 0.95*0.92625=0.87994
	approx(t, r.Value, 0.88, 1e-3, "recycle value")
	if r.Grade != "B" {
		t.Errorf("grade = %q, want B", r.Grade)
	}
}

func TestRecycleCompatTableContamination(t *testing.T) {
	tree := twoSiblingTree(t, false)
	tree.Compat = bom.CompatTable{
		bom.MakePairKey(10, 11): {Bonus: 0.0, Malus: 3.0},
	}
	e := assess.NewEvaluator(assess.Defaults())

	r, err := e.EvaluateRecycling(tree)
	if err != nil {
		t.Fatalf("EvaluateRecycling: %v", err)
	}
	if r.Gate != assess.GateContaminated {
		t.Errorf("gate = %q, want %q", r.Gate, assess.GateContaminated)
	}
}

func TestRecycleSystemAbilityGate(t *testing.T) {
	tree := twoSiblingTree(t, false)
	tree.Components[1].SystemAbility = 0.0
	e := assess.NewEvaluator(assess.Defaults())

	r, err := e.EvaluateRecycling(tree)
	if err != nil {
		t.Fatalf("EvaluateRecycling: %v", err)
	}
	if r.Gate != assess.GateSystemIncompatible || r.Value != 0 || r.Grade != "F" {
		t.Errorf("expected system gate, got %+v", r)
	}
}

func TestRecycleZeroTotalWeight(t *testing.T) {
	// All-zero weights must not divide by zero; fractions degrade to 0.
	tree := mustTree(t,
		[]*bom.Component{
			{ID: 1, IsAtomic: false, SystemAbility: 1.0},
			{ID: 2, ParentID: i64(1), IsAtomic: true, MaterialID: i64(10), RFactor: 1.0},
			{ID: 3, ParentID: i64(1), IsAtomic: true, MaterialID: i64(11), RFactor: 1.0},
		},
		[]*bom.Material{{ID: 10}, {ID: 11}},
		nil,
	)
	e := assess.NewEvaluator(assess.Defaults())

	r, err := e.EvaluateRecycling(tree)
	if err != nil {
		t.Fatalf("EvaluateRecycling: %v", err)
	}
	if r.Value != 0 {
		t.Errorf("value = %v, want 0", r.Value)
	}
	if r.Gated() {
		t.Errorf("zero weight is not a gate, got %q", r.Gate)
	}
}

func TestRecycleValueBounded(t *testing.T) {
	tree := twoSiblingTree(t, false)
	// Exaggerated bonuses would push the raw value above 1.
	tree.Components[2].CompatBonus = 50
	tree.Components[3].CompatBonus = 50
	e := assess.NewEvaluator(assess.Defaults())

	r, err := e.EvaluateRecycling(tree)
	if err != nil {
		t.Fatalf("EvaluateRecycling: %v", err)
	}
	if r.Value < 0 || r.Value > 1 {
		t.Errorf("value %v outside [0,1]", r.Value)
	}
	if r.Value != 1.0 {
		t.Errorf("value = %v, want clamp to 1.0", r.Value)
	}
}

func TestRecycleGradeThresholds(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{0.96, "A"},
		{0.95, "B"},
		{0.86, "B"},
		{0.85, "C"},
		{0.71, "C"},
		{0.7, "D"},
		{0.51, "D"},
		{0.5, "E"},
		{0.31, "E"},
		{0.3, "F"},
		{0.0, "F"},
	}
	for _, tc := range tests {
		if got := assess.RecycleGrade(tc.value); got != tc.want {
			t.Errorf("RecycleGrade(%v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}
