package assess

import "github.com/ecoscope/ecoscope/pkg/bom"

// Score computes the composite sustainability score of one component. The
// result is a raw magnitude (kg CO2e-like), not normalized or clamped.
func (e *Evaluator) Score(t *bom.Tree, id int64) (float64, error) {
	return e.newPass(t).score(id)
}

// score is the memoized recursive score aggregation.
//
// Atomic: weight x material total GWP (0 when the figure is missing).
// Composite: weight x sum of child scores x reuse factor x connection factor.
// A composite whose weight is still unresolved contributes the multiplicative
// identity instead of zeroing out its subtree; this is deliberate and
// distinct from the weight resolver's own zero default.
func (p *pass) score(id int64) (float64, error) {
	if s, ok := p.scores[id]; ok {
		return s, nil
	}
	c, err := p.component(id)
	if err != nil {
		return 0, err
	}
	if err := enter(p.visitingScore, id); err != nil {
		return 0, err
	}
	defer delete(p.visitingScore, id)

	var s float64
	if c.IsAtomic {
		w, err := p.resolveWeight(id)
		if err != nil {
			return 0, err
		}
		var gwp float64
		if mat := p.tree.MaterialOf(c); mat != nil && mat.TotalGWP != nil {
			gwp = *mat.TotalGWP
		}
		s = w * gwp
	} else {
		var sum float64
		for _, child := range p.tree.Children(id) {
			cs, err := p.score(child.ID)
			if err != nil {
				return 0, err
			}
			sum += cs
		}

		w := p.ev.w.UnresolvedWeightScore
		if c.Weight != nil {
			w = *c.Weight
		}

		reuse := 1.0
		if c.Reusable {
			reuse = p.ev.w.ReuseFactor
		}
		conn := 1.0 - p.ev.w.ConnectionPenaltyStep*float64(c.Connection.Level())

		s = w * sum * reuse * conn
	}

	p.scores[id] = s
	return s, nil
}
