package assess

// Weights holds the tunable constants of the assessment formulas.
type Weights struct {
	// Score aggregation
	ReuseFactor            float64 // multiplier applied to reusable composites
	ConnectionPenaltyStep  float64 // penalty per joint quality level
	UnresolvedWeightScore  float64 // weight substituted when a composite's weight is unresolved

	// Recycle evaluation
	ContaminationSentinel float64 // malus value meaning "contaminating", hard gate
	SystemAbilityGate     float64 // minimum root systemability to pass the gate
	RoundDigits           int     // decimal digits of the reported recycle value
}

// Defaults returns the default assessment weights.
func Defaults() Weights {
	return Weights{
		ReuseFactor:           0.9,
		ConnectionPenaltyStep: 0.05,
		UnresolvedWeightScore: 1.0,

		ContaminationSentinel: 3.0,
		SystemAbilityGate:     1.0,
		RoundDigits:           3,
	}
}
