// Package assess implements the Ecoscope assessment engine. It computes
// derived weights, sustainability scores, aggregate environmental impact and
// recycle values over a bill-of-materials tree snapshot.
package assess

// Report is the complete output of assessing one component tree.
// Immutable once computed.
type Report struct {
	ProjectID int64         `json:"project_id"`
	RootID    int64         `json:"root_id"`
	Weight    float64       `json:"weight"` // resolved weight of the root, kg
	Score     float64       `json:"score"`  // composite sustainability score, raw magnitude
	Impact    ImpactResult  `json:"impact"`
	Recycle   RecycleResult `json:"recycle"`
	Stats     TreeStatsView `json:"stats"`
}

// TreeStatsView is a read-only summary of the assessed tree for display purposes.
type TreeStatsView struct {
	ComponentCount int `json:"component_count"`
	AtomicCount    int `json:"atomic_count"`
	MaterialCount  int `json:"material_count"`
	RootCount      int `json:"root_count"`
}

// ImpactResult holds aggregate environmental impact figures for a subtree.
type ImpactResult struct {
	TotalGWP    float64 `json:"total_gwp"`
	FossilGWP   float64 `json:"fossil_gwp"`
	BiogenicGWP float64 `json:"biogenic_gwp"`
	ADPF        float64 `json:"adpf"`
	Grade       string  `json:"grade"` // A, B, C, D
}

// GateReason explains why a recycle evaluation was forced to zero. A gated
// zero is a valid terminal result, not an error; the reason field exists so
// callers can tell it apart from a genuinely low score.
type GateReason string

const (
	GateNone               GateReason = ""
	GateNoAtomicParts      GateReason = "no_atomic_parts"
	GateDangerousMaterial  GateReason = "dangerous_material"
	GateContaminated       GateReason = "contaminated"
	GateSystemIncompatible GateReason = "system_incompatible"
)

// RecycleResult is the outcome of a recycle evaluation.
type RecycleResult struct {
	Value float64    `json:"recycle_value"` // normalized to [0,1], rounded to 3 digits
	Grade string     `json:"grade"`         // A..F
	Gate  GateReason `json:"gate,omitempty"`
}

// Gated reports whether the result was forced to zero by a hard gate.
func (r RecycleResult) Gated() bool { return r.Gate != GateNone }

// ImpactGrade maps an aggregate total GWP to a letter grade. Thresholds are
// absolute, not normalized per unit weight; a documented limitation.
func ImpactGrade(totalGWP float64) string {
	switch {
	case totalGWP < 15:
		return "A"
	case totalGWP < 30:
		return "B"
	case totalGWP < 50:
		return "C"
	default:
		return "D"
	}
}

// RecycleGrade maps a normalized recycle value to a letter grade.
func RecycleGrade(value float64) string {
	switch {
	case value > 0.95:
		return "A"
	case value > 0.85:
		return "B"
	case value > 0.7:
		return "C"
	case value > 0.5:
		return "D"
	case value > 0.3:
		return "E"
	default:
		return "F"
	}
}
