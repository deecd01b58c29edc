package assess

import (
	"math"

	"github.com/ecoscope/ecoscope/pkg/bom"
)

// EvaluateRecycling computes the normalized recycle value of a whole tree.
// Hard gates force a zero/F result regardless of the other terms; the
// returned gate reason tells a gated zero apart from a computed one.
func (e *Evaluator) EvaluateRecycling(t *bom.Tree) (RecycleResult, error) {
	return e.newPass(t).recycle()
}

func gatedZero(reason GateReason) RecycleResult {
	return RecycleResult{Value: 0, Grade: "F", Gate: reason}
}

func (p *pass) recycle() (RecycleResult, error) {
	w := p.ev.w

	// Gate 1: a product with no atomic parts cannot be evaluated.
	atomics := p.tree.Atomics()
	if len(atomics) == 0 {
		return gatedZero(GateNoAtomicParts), nil
	}

	// Gate 2: any dangerous material on an atomic part fails the product.
	// Danger flags on composite nodes do not trigger this.
	for _, c := range atomics {
		if mat := p.tree.MaterialOf(c); mat != nil && mat.IsDangerous {
			return gatedZero(GateDangerousMaterial), nil
		}
	}

	// Weight fractions over the atomic parts.
	var total float64
	resolved := make(map[int64]float64, len(atomics))
	for _, c := range atomics {
		cw, err := p.resolveWeight(c.ID)
		if err != nil {
			return RecycleResult{}, err
		}
		resolved[c.ID] = cw
		total += cw
	}
	fraction := func(c *bom.Component) float64 {
		if total == 0 {
			return 0
		}
		return resolved[c.ID] / total
	}

	// Weighted separability, sortability and recyclability terms.
	var pW, etaSep, etaSort float64
	for _, c := range atomics {
		f := fraction(c)
		pW += f * c.RFactor
		etaSep += f * c.SeparationEff
		etaSort += f * c.SortingEff
	}

	// Pairwise material compatibility across all atomic parts. An explicit
	// table entry wins; otherwise the components' own bonus/malus fields
	// degrade to an average bonus and the worse of the two maluses.
	var bonus, malus float64
	contaminated := false
	for i := 0; i < len(atomics); i++ {
		mi := p.tree.MaterialOf(atomics[i])
		if mi == nil {
			continue
		}
		for j := i + 1; j < len(atomics); j++ {
			mj := p.tree.MaterialOf(atomics[j])
			if mj == nil {
				continue
			}
			gf := fraction(atomics[i]) * fraction(atomics[j])

			var pb, pm float64
			if entry, ok := p.tree.CompatFor(mi.ID, mj.ID); ok {
				pb, pm = entry.Bonus, entry.Malus
			} else {
				pb = (atomics[i].CompatBonus + atomics[j].CompatBonus) / 2
				pm = math.Max(atomics[i].CompatMalus, atomics[j].CompatMalus)
			}
			if pm == w.ContaminationSentinel {
				contaminated = true
			}
			bonus += gf * pb
			malus += gf * pm
		}
	}

	// Gate 3: contamination, checked after the terms are computed but
	// before they are used.
	if contaminated {
		return gatedZero(GateContaminated), nil
	}

	// Gate 4: system compatibility of the product root. On a forest the
	// lowest-id root carries the gate flag.
	// Every component having a parent means the chain loops somewhere.
	roots := p.tree.Roots()
	if len(roots) == 0 {
		return RecycleResult{}, &bom.StructuralError{Kind: bom.StructuralCycle, ComponentID: atomics[0].ID}
	}
	sysAbility := roots[0].SystemAbility
	if sysAbility < w.SystemAbilityGate {
		return gatedZero(GateSystemIncompatible), nil
	}

	rv := sysAbility * pW * (etaSep*etaSort + bonus - malus)
	if rv < 0 {
		rv = 0
	}
	if rv > 1 {
		rv = 1
	}
	rv = roundTo(rv, w.RoundDigits)

	return RecycleResult{Value: rv, Grade: RecycleGrade(rv)}, nil
}

func roundTo(v float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Round(v*scale) / scale
}
