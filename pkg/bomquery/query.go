// Package bomquery provides shared read queries over Ecoscope component
// trees. Used by both the CLI and the hosted platform API.
package bomquery

import (
	"sort"

	"github.com/ecoscope/ecoscope/pkg/bom"
)

// SubtreeResult holds the result of a subtree extraction.
type SubtreeResult struct {
	Components map[int64]*bom.Component `json:"components"`
	Truncated  bool                     `json:"truncated,omitempty"`
}

// FamilyShare is one material family's contribution to a tree's total weight.
type FamilyShare struct {
	Family   string  `json:"family"`
	Weight   float64 `json:"weight"`
	Fraction float64 `json:"fraction"`
	Parts    int     `json:"parts"`
}

// Subtree collects the component rooted at rootID and its descendants down to
// the given depth (depth 0 = the root alone). maxNodes caps the result; the
// Truncated flag is set when the cap cuts the walk short.
func Subtree(tree *bom.Tree, rootID int64, depth, maxNodes int) *SubtreeResult {
	result := &SubtreeResult{Components: make(map[int64]*bom.Component)}

	root, ok := tree.Components[rootID]
	if !ok {
		return result
	}
	result.Components[rootID] = root

	queue := []int64{rootID}
	for d := 0; d < depth && len(queue) > 0; d++ {
		var next []int64
		for _, id := range queue {
			for _, child := range tree.Children(id) {
				if _, seen := result.Components[child.ID]; seen {
					continue
				}
				if maxNodes > 0 && len(result.Components) >= maxNodes {
					result.Truncated = true
					return result
				}
				result.Components[child.ID] = child
				next = append(next, child.ID)
			}
		}
		queue = next
	}

	return result
}

// AncestorPath returns the ids from the given component up to its root,
// starting with the component itself. A parent loop yields a StructuralError.
func AncestorPath(tree *bom.Tree, id int64) ([]int64, error) {
	c, ok := tree.Components[id]
	if !ok {
		return nil, &bom.StructuralError{Kind: bom.StructuralOrphanParent, ComponentID: id}
	}

	path := []int64{c.ID}
	seen := map[int64]bool{c.ID: true}
	for c.ParentID != nil {
		parent, ok := tree.Components[*c.ParentID]
		if !ok {
			return nil, &bom.StructuralError{Kind: bom.StructuralOrphanParent, ComponentID: c.ID}
		}
		if seen[parent.ID] {
			return nil, &bom.StructuralError{Kind: bom.StructuralCycle, ComponentID: parent.ID}
		}
		seen[parent.ID] = true
		path = append(path, parent.ID)
		c = parent
	}
	return path, nil
}

// FamilyBreakdown aggregates the resolved weights of all atomic parts by
// material family. Parts without a family are grouped under "unclassified".
// Weights must have been resolved beforehand; unresolved parts count as zero.
func FamilyBreakdown(tree *bom.Tree) []FamilyShare {
	type agg struct {
		weight float64
		parts  int
	}
	byFamily := make(map[string]*agg)
	var total float64

	for _, c := range tree.Atomics() {
		family := "unclassified"
		if mat := tree.MaterialOf(c); mat != nil && mat.Family != "" {
			family = mat.Family
		}
		a, ok := byFamily[family]
		if !ok {
			a = &agg{}
			byFamily[family] = a
		}
		var w float64
		if c.Weight != nil {
			w = *c.Weight
		}
		a.weight += w
		a.parts++
		total += w
	}

	shares := make([]FamilyShare, 0, len(byFamily))
	for family, a := range byFamily {
		share := FamilyShare{Family: family, Weight: a.weight, Parts: a.parts}
		if total > 0 {
			share.Fraction = a.weight / total
		}
		shares = append(shares, share)
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Weight != shares[j].Weight {
			return shares[i].Weight > shares[j].Weight
		}
		return shares[i].Family < shares[j].Family
	})
	return shares
}
