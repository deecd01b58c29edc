package assess

import "github.com/ecoscope/ecoscope/pkg/bom"

// ResolveWeight computes the effective weight of one component, recursing
// bottom-up through its subtree. Derived values are written back onto the
// components so the caller can persist them.
func (e *Evaluator) ResolveWeight(t *bom.Tree, id int64) (float64, error) {
	return e.newPass(t).resolveWeight(id)
}

// ResolveAll resolves the weight of every root, and through recursion every
// component of the tree.
func (e *Evaluator) ResolveAll(t *bom.Tree) error {
	p := e.newPass(t)
	for _, root := range t.Roots() {
		if _, err := p.resolveWeight(root.ID); err != nil {
			return err
		}
	}
	return nil
}

// RecalcAncestors re-derives weights after a mutation of the given component
// (volume, material, explicit weight, children, reparenting). Composite
// weights are not self-invalidating, so the whole chain up to the root is
// recomputed.
func (e *Evaluator) RecalcAncestors(t *bom.Tree, id int64) error {
	c, ok := t.Components[id]
	if !ok {
		return &bom.StructuralError{Kind: bom.StructuralOrphanParent, ComponentID: id}
	}

	// Walk up to the root; resolving there sweeps the full chain. The step
	// bound catches parent loops introduced by buggy reparenting.
	steps := 0
	for c.ParentID != nil {
		parent, ok := t.Components[*c.ParentID]
		if !ok {
			return &bom.StructuralError{Kind: bom.StructuralOrphanParent, ComponentID: c.ID}
		}
		steps++
		if steps > len(t.Components) {
			return &bom.StructuralError{Kind: bom.StructuralCycle, ComponentID: c.ID}
		}
		c = parent
	}

	_, err := e.newPass(t).resolveWeight(c.ID)
	return err
}

// resolveWeight is the memoized recursive weight resolution.
//
// Atomic: explicit weight wins, then volume x density, then 0.
// Composite: sum of children, which takes precedence over any stored value
// and is written back for persistence.
func (p *pass) resolveWeight(id int64) (float64, error) {
	if w, ok := p.weights[id]; ok {
		return w, nil
	}
	c, err := p.component(id)
	if err != nil {
		return 0, err
	}
	if err := enter(p.visitingWeight, id); err != nil {
		return 0, err
	}
	defer delete(p.visitingWeight, id)

	var w float64
	if c.IsAtomic {
		mat := p.tree.MaterialOf(c)
		switch {
		case c.Weight != nil:
			w = *c.Weight
		case c.Volume != nil && mat != nil && mat.Density != nil:
			w = *c.Volume * *mat.Density
			c.Weight = &w
		default:
			w = 0
		}
	} else {
		for _, child := range p.tree.Children(id) {
			cw, err := p.resolveWeight(child.ID)
			if err != nil {
				return 0, err
			}
			w += cw
		}
		sum := w
		c.Weight = &sum
	}

	p.weights[id] = w
	return w, nil
}
