package bom

import "sort"

// BuildTree assembles a Tree from flat component and material lists, as they
// come out of the component store. It builds the children index and rejects
// orphaned parent references. Cycles are not rejected here; the evaluators
// carry their own recursion guards so a cycle surfaces as a StructuralError
// at evaluation time.
func BuildTree(projectID int64, components []*Component, materials []*Material, compat CompatTable) (*Tree, error) {
	t := &Tree{
		ProjectID:  projectID,
		Components: make(map[int64]*Component, len(components)),
		Materials:  make(map[int64]*Material, len(materials)),
		Compat:     compat,
		children:   make(map[int64][]int64),
	}
	for _, m := range materials {
		t.Materials[m.ID] = m
	}
	for _, c := range components {
		t.Components[c.ID] = c
	}
	for _, c := range components {
		if c.ParentID == nil {
			continue
		}
		if _, ok := t.Components[*c.ParentID]; !ok {
			return nil, &StructuralError{Kind: StructuralOrphanParent, ComponentID: c.ID}
		}
		t.children[*c.ParentID] = append(t.children[*c.ParentID], c.ID)
	}
	for id := range t.children {
		ids := t.children[id]
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	return t, nil
}

// Reindex rebuilds the children index after parent links changed in place.
func (t *Tree) Reindex() error {
	t.children = make(map[int64][]int64)
	for _, c := range t.Components {
		if c.ParentID == nil {
			continue
		}
		if _, ok := t.Components[*c.ParentID]; !ok {
			return &StructuralError{Kind: StructuralOrphanParent, ComponentID: c.ID}
		}
		t.children[*c.ParentID] = append(t.children[*c.ParentID], c.ID)
	}
	for id := range t.children {
		ids := t.children[id]
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	return nil
}

// Validate checks invariants the evaluators rely on: every atomic component
// must reference a material known to the tree. Violations indicate bugs in
// the calling store rather than missing optional data.
func (t *Tree) Validate() error {
	for _, c := range t.Components {
		if !c.IsAtomic {
			continue
		}
		if t.MaterialOf(c) == nil {
			return &StructuralError{Kind: StructuralMissingMaterial, ComponentID: c.ID}
		}
	}
	return nil
}
