package assess

import (
	"fmt"

	"github.com/ecoscope/ecoscope/pkg/bom"
)

// Evaluator runs the assessment formulas over tree snapshots. It is stateless
// across invocations; all memoization lives in a per-call pass.
type Evaluator struct {
	w Weights
}

// NewEvaluator creates an evaluator with the given weights.
func NewEvaluator(w Weights) *Evaluator {
	return &Evaluator{w: w}
}

// pass carries the memoization caches and recursion guards for one top-level
// evaluation. A pass must never be reused across trees: component ids may be
// reused across projects.
type pass struct {
	ev   *Evaluator
	tree *bom.Tree

	weights map[int64]float64
	scores  map[int64]float64

	// One recursion guard per walk; the weight walk is reentered from the
	// score and impact walks, so they must not share a guard.
	visitingWeight map[int64]bool
	visitingScore  map[int64]bool
	visitingImpact map[int64]bool
}

func (e *Evaluator) newPass(t *bom.Tree) *pass {
	return &pass{
		ev:             e,
		tree:           t,
		weights:        make(map[int64]float64),
		scores:         make(map[int64]float64),
		visitingWeight: make(map[int64]bool),
		visitingScore:  make(map[int64]bool),
		visitingImpact: make(map[int64]bool),
	}
}

func (p *pass) component(id int64) (*bom.Component, error) {
	c, ok := p.tree.Components[id]
	if !ok {
		return nil, &bom.StructuralError{Kind: bom.StructuralOrphanParent, ComponentID: id}
	}
	return c, nil
}

// enter marks a component as being visited in one walk and fails if it
// already is, which means the parent chain loops.
func enter(visiting map[int64]bool, id int64) error {
	if visiting[id] {
		return &bom.StructuralError{Kind: bom.StructuralCycle, ComponentID: id}
	}
	visiting[id] = true
	return nil
}

// Evaluate produces a full assessment report for one tree: resolved root
// weight, sustainability score, aggregate impact and recycle evaluation.
// All four share one memoization pass.
func (e *Evaluator) Evaluate(t *bom.Tree) (*Report, error) {
	if t == nil {
		return nil, fmt.Errorf("tree is nil")
	}
	if len(t.Components) == 0 {
		return nil, fmt.Errorf("tree has no components")
	}
	roots := t.Roots()
	if len(roots) == 0 {
		// Components exist but every one has a parent: the chain loops.
		var anyID int64
		for id := range t.Components {
			anyID = id
			break
		}
		return nil, &bom.StructuralError{Kind: bom.StructuralCycle, ComponentID: anyID}
	}
	// On a forest the lowest-id root is assessed; see the recycle evaluator
	// for the matching gate behavior.
	root := roots[0]

	p := e.newPass(t)
	var weight float64
	for _, r := range roots {
		w, err := p.resolveWeight(r.ID)
		if err != nil {
			return nil, err
		}
		if r.ID == root.ID {
			weight = w
		}
	}
	score, err := p.score(root.ID)
	if err != nil {
		return nil, err
	}
	impact, err := p.impact(root.ID)
	if err != nil {
		return nil, err
	}
	recycle, err := p.recycle()
	if err != nil {
		return nil, err
	}

	stats := t.Stats()
	return &Report{
		ProjectID: t.ProjectID,
		RootID:    root.ID,
		Weight:    weight,
		Score:     score,
		Impact:    impact,
		Recycle:   recycle,
		Stats: TreeStatsView{
			ComponentCount: stats.ComponentCount,
			AtomicCount:    stats.AtomicCount,
			MaterialCount:  stats.MaterialCount,
			RootCount:      stats.RootCount,
		},
	}, nil
}
