package bom_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ecoscope/ecoscope/pkg/bom"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func TestBuildTreeIndexesChildren(t *testing.T) {
	tree, err := bom.BuildTree(1,
		[]*bom.Component{
			{ID: 1, IsAtomic: false},
			{ID: 3, ParentID: i64(1), IsAtomic: true, MaterialID: i64(10)},
			{ID: 2, ParentID: i64(1), IsAtomic: true, MaterialID: i64(10)},
		},
		[]*bom.Material{{ID: 10, Name: "PE"}},
		nil,
	)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}

	children := tree.Children(1)
	if len(children) != 2 {
		t.Fatalf("children = %d, want 2", len(children))
	}
	if children[0].ID != 2 || children[1].ID != 3 {
		t.Errorf("children not sorted by id: %d, %d", children[0].ID, children[1].ID)
	}

	roots := tree.Roots()
	if len(roots) != 1 || roots[0].ID != 1 {
		t.Errorf("unexpected roots: %+v", roots)
	}

	atomics := tree.Atomics()
	if len(atomics) != 2 {
		t.Errorf("atomics = %d, want 2", len(atomics))
	}
}

func TestBuildTreeRejectsOrphanParent(t *testing.T) {
	_, err := bom.BuildTree(1,
		[]*bom.Component{
			{ID: 1, ParentID: i64(99), IsAtomic: true, MaterialID: i64(10)},
		},
		[]*bom.Material{{ID: 10}},
		nil,
	)
	if err == nil {
		t.Fatal("expected orphan parent error")
	}
	var se *bom.StructuralError
	if !errors.As(err, &se) {
		t.Fatalf("expected StructuralError, got %v", err)
	}
	if se.Kind != bom.StructuralOrphanParent || se.ComponentID != 1 {
		t.Errorf("unexpected error detail: %+v", se)
	}
}

func TestValidateAtomicWithoutMaterial(t *testing.T) {
	tree, err := bom.BuildTree(1,
		[]*bom.Component{{ID: 1, IsAtomic: true}},
		nil, nil,
	)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}

	err = tree.Validate()
	var se *bom.StructuralError
	if !errors.As(err, &se) {
		t.Fatalf("expected StructuralError, got %v", err)
	}
	if se.Kind != bom.StructuralMissingMaterial {
		t.Errorf("kind = %q, want %q", se.Kind, bom.StructuralMissingMaterial)
	}
}

func TestValidateAcceptsCompleteTree(t *testing.T) {
	tree, err := bom.BuildTree(1,
		[]*bom.Component{
			{ID: 1, IsAtomic: false},
			{ID: 2, ParentID: i64(1), IsAtomic: true, MaterialID: i64(10)},
		},
		[]*bom.Material{{ID: 10}},
		nil,
	)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	if err := tree.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestTreeSaveLoadRoundTrip(t *testing.T) {
	tree, err := bom.BuildTree(7,
		[]*bom.Component{
			{ID: 1, IsAtomic: false, SystemAbility: 1.0},
			{ID: 2, ParentID: i64(1), IsAtomic: true, MaterialID: i64(10), Volume: f64(0.5)},
		},
		[]*bom.Material{{ID: 10, Name: "Steel", Density: f64(4.0), TotalGWP: f64(10.0)}},
		bom.CompatTable{bom.MakePairKey(10, 11): {Bonus: 0.2, Malus: 1.0}},
	)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}

	path := filepath.Join(t.TempDir(), "trees", "p7.json")
	if err := bom.SaveTree(path, tree); err != nil {
		t.Fatalf("SaveTree: %v", err)
	}

	loaded, err := bom.LoadTree(path)
	if err != nil {
		t.Fatalf("LoadTree: %v", err)
	}
	if loaded.ProjectID != 7 {
		t.Errorf("project id = %d, want 7", loaded.ProjectID)
	}
	if len(loaded.Children(1)) != 1 {
		t.Error("children index not rebuilt after load")
	}
	entry, ok := loaded.CompatFor(11, 10)
	if !ok {
		t.Fatal("compat table lost in round trip")
	}
	if entry.Bonus != 0.2 || entry.Malus != 1.0 {
		t.Errorf("compat entry = %+v", entry)
	}
	mat := loaded.MaterialOf(loaded.Components[2])
	if mat == nil || mat.Name != "Steel" {
		t.Errorf("material not resolved after load: %+v", mat)
	}
}

func TestMakePairKeyOrders(t *testing.T) {
	if bom.MakePairKey(5, 2) != bom.MakePairKey(2, 5) {
		t.Error("pair key must be order independent")
	}
}

func TestConnectionTypeParseAndLevel(t *testing.T) {
	tests := []struct {
		name  string
		conn  bom.ConnectionType
		level int
	}{
		{"none", bom.ConnectionNone, 0},
		{"snap_fit", bom.ConnectionSnapFit, 1},
		{"screwed", bom.ConnectionScrewed, 2},
		{"riveted", bom.ConnectionRiveted, 3},
		{"glued", bom.ConnectionGlued, 4},
		{"welded", bom.ConnectionWelded, 5},
	}
	for _, tc := range tests {
		if got := bom.ParseConnectionType(tc.name); got != tc.conn {
			t.Errorf("ParseConnectionType(%q) = %v, want %v", tc.name, got, tc.conn)
		}
		if got := tc.conn.Level(); got != tc.level {
			t.Errorf("%v.Level() = %d, want %d", tc.conn, got, tc.level)
		}
		if tc.conn.String() != tc.name {
			t.Errorf("String() = %q, want %q", tc.conn.String(), tc.name)
		}
	}

	if bom.ParseConnectionType("bolted?") != bom.ConnectionNone {
		t.Error("unknown names must map to ConnectionNone")
	}
	if bom.ConnectionType(-3).Level() != 0 {
		t.Error("negative levels must clamp to 0")
	}
	if bom.ConnectionType(99).Level() != 5 {
		t.Error("oversized levels must clamp to 5")
	}
}
