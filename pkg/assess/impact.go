package assess

import "github.com/ecoscope/ecoscope/pkg/bom"

// AggregateImpact sums the absolute environmental metrics over a subtree and
// derives the letter grade from the total GWP.
func (e *Evaluator) AggregateImpact(t *bom.Tree, id int64) (ImpactResult, error) {
	return e.newPass(t).impact(id)
}

// impact recursively accumulates weight x material figures. Any node carrying
// a material contributes, atomic or not; a missing material or missing figure
// contributes zero. No gating applies.
func (p *pass) impact(id int64) (ImpactResult, error) {
	c, err := p.component(id)
	if err != nil {
		return ImpactResult{}, err
	}
	if err := enter(p.visitingImpact, id); err != nil {
		return ImpactResult{}, err
	}
	defer delete(p.visitingImpact, id)

	var r ImpactResult
	if mat := p.tree.MaterialOf(c); mat != nil {
		w, err := p.resolveWeight(id)
		if err != nil {
			return ImpactResult{}, err
		}
		r.TotalGWP += w * floatOrZero(mat.TotalGWP)
		r.FossilGWP += w * floatOrZero(mat.FossilGWP)
		r.BiogenicGWP += w * floatOrZero(mat.BiogenicGWP)
		r.ADPF += w * floatOrZero(mat.ADPF)
	}

	for _, child := range p.tree.Children(id) {
		cr, err := p.impact(child.ID)
		if err != nil {
			return ImpactResult{}, err
		}
		r.TotalGWP += cr.TotalGWP
		r.FossilGWP += cr.FossilGWP
		r.BiogenicGWP += cr.BiogenicGWP
		r.ADPF += cr.ADPF
	}

	r.Grade = ImpactGrade(r.TotalGWP)
	return r, nil
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
