package bomquery_test

import (
	"math"
	"testing"

	"github.com/ecoscope/ecoscope/pkg/bom"
	"github.com/ecoscope/ecoscope/pkg/bomquery"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func fixture(t *testing.T) *bom.Tree {
	t.Helper()
	tree, err := bom.BuildTree(1,
		[]*bom.Component{
			{ID: 1, IsAtomic: false},
			{ID: 2, ParentID: i64(1), IsAtomic: false},
			{ID: 3, ParentID: i64(2), IsAtomic: true, MaterialID: i64(10), Weight: f64(2.0)},
			{ID: 4, ParentID: i64(2), IsAtomic: true, MaterialID: i64(11), Weight: f64(1.0)},
			{ID: 5, ParentID: i64(1), IsAtomic: true, MaterialID: i64(10), Weight: f64(3.0)},
		},
		[]*bom.Material{
			{ID: 10, Name: "PE film", Family: "PE"},
			{ID: 11, Name: "PP cap", Family: "PP"},
		},
		nil,
	)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	return tree
}

func TestSubtreeDepthLimits(t *testing.T) {
	tree := fixture(t)

	r := bomquery.Subtree(tree, 1, 0, 0)
	if len(r.Components) != 1 {
		t.Errorf("depth 0: %d components, want 1", len(r.Components))
	}

	r = bomquery.Subtree(tree, 1, 1, 0)
	if len(r.Components) != 3 {
		t.Errorf("depth 1: %d components, want 3", len(r.Components))
	}

	r = bomquery.Subtree(tree, 1, 10, 0)
	if len(r.Components) != 5 {
		t.Errorf("full depth: %d components, want 5", len(r.Components))
	}
	if r.Truncated {
		t.Error("unexpected truncation")
	}
}

func TestSubtreeMaxNodes(t *testing.T) {
	tree := fixture(t)
	r := bomquery.Subtree(tree, 1, 10, 2)
	if len(r.Components) != 2 {
		t.Errorf("%d components, want 2", len(r.Components))
	}
	if !r.Truncated {
		t.Error("expected truncation flag")
	}
}

func TestSubtreeUnknownRoot(t *testing.T) {
	tree := fixture(t)
	r := bomquery.Subtree(tree, 99, 3, 0)
	if len(r.Components) != 0 {
		t.Errorf("unknown root should yield empty result, got %d", len(r.Components))
	}
}

func TestAncestorPath(t *testing.T) {
	tree := fixture(t)
	path, err := bomquery.AncestorPath(tree, 3)
	if err != nil {
		t.Fatalf("AncestorPath: %v", err)
	}
	want := []int64{3, 2, 1}
	if len(path) != len(want) {
		t.Fatalf("path = %v, want %v", path, want)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("path = %v, want %v", path, want)
		}
	}
}

func TestAncestorPathCycle(t *testing.T) {
	tree := fixture(t)
	tree.Components[1].ParentID = i64(2)
	if err := tree.Reindex(); err != nil {
		t.Fatalf("Reindex: %v", err)
	}

	_, err := bomquery.AncestorPath(tree, 3)
	if !bom.IsStructural(err) {
		t.Errorf("expected StructuralError, got %v", err)
	}
}

func TestFamilyBreakdown(t *testing.T) {
	tree := fixture(t)
	shares := bomquery.FamilyBreakdown(tree)
	if len(shares) != 2 {
		t.Fatalf("shares = %d, want 2", len(shares))
	}

	// PE: 2.0 + 3.0 = 5.0 of 6.0 total; PP: 1.0
	if shares[0].Family != "PE" || shares[1].Family != "PP" {
		t.Errorf("unexpected order: %+v", shares)
	}
	if math.Abs(shares[0].Fraction-5.0/6.0) > 1e-9 {
		t.Errorf("PE fraction = %v", shares[0].Fraction)
	}
	if shares[0].Parts != 2 || shares[1].Parts != 1 {
		t.Errorf("part counts: %+v", shares)
	}
}

func TestFamilyBreakdownUnclassified(t *testing.T) {
	tree, err := bom.BuildTree(1,
		[]*bom.Component{
			{ID: 1, IsAtomic: true, MaterialID: i64(10), Weight: f64(1.0)},
		},
		[]*bom.Material{{ID: 10, Name: "mystery"}},
		nil,
	)
	if err != nil {
		t.Fatal(err)
	}
	shares := bomquery.FamilyBreakdown(tree)
	if len(shares) != 1 || shares[0].Family != "unclassified" {
		t.Errorf("unexpected shares: %+v", shares)
	}
}
