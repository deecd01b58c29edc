package surface

import (
	"fmt"
	"io"
	"os"

	"github.com/ecoscope/ecoscope/pkg/assess"
)

// TerminalRenderer renders an assessment report as colored terminal output.
type TerminalRenderer struct{}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

func gradeColor(grade string) string {
	if noColor() {
		return ""
	}
	switch grade {
	case "A", "B":
		return colorGreen
	case "C", "D":
		return colorYellow
	case "E", "F":
		return colorRed
	default:
		return ""
	}
}

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func bold(s string) string {
	if noColor() {
		return s
	}
	return colorBold + s + colorReset
}

func dim(s string) string {
	if noColor() {
		return s
	}
	return colorDim + s + colorReset
}

func colored(s, color string) string {
	if noColor() || color == "" {
		return s
	}
	return color + s + colorReset
}

var gateDescriptions = map[assess.GateReason]string{
	assess.GateNoAtomicParts:      "the product has no atomic parts to evaluate",
	assess.GateDangerousMaterial:  "an atomic part carries a dangerous material",
	assess.GateContaminated:       "a material pairing is contaminating",
	assess.GateSystemIncompatible: "the product is incompatible with established recycling systems",
}

func (r *TerminalRenderer) Render(w io.Writer, report *assess.Report) error {
	// Header
	fmt.Fprintf(w, "%s\n\n",
		bold(fmt.Sprintf("Ecoscope: Recycle %s (%.3f) / Impact %s (%.1f kg CO2e)",
			colored(report.Recycle.Grade, gradeColor(report.Recycle.Grade)), report.Recycle.Value,
			colored(report.Impact.Grade, gradeColor(report.Impact.Grade)), report.Impact.TotalGWP)))

	// Stats
	fmt.Fprintf(w, "Assessed: %d components / %d atomic parts / %d materials, root weight %.3f kg\n\n",
		report.Stats.ComponentCount, report.Stats.AtomicCount,
		report.Stats.MaterialCount, report.Weight)

	// Gate, when the recycle value was forced to zero
	if report.Recycle.Gated() {
		desc := gateDescriptions[report.Recycle.Gate]
		if desc == "" {
			desc = string(report.Recycle.Gate)
		}
		fmt.Fprintf(w, "%s %s\n\n", colored("✗ Gated:", colorRed), desc)
	}

	// Impact breakdown
	fmt.Fprintln(w, "Environmental impact:")
	fmt.Fprintf(w, "  total GWP     %10.3f kg CO2e\n", report.Impact.TotalGWP)
	fmt.Fprintf(w, "  fossil GWP    %10.3f kg CO2e\n", report.Impact.FossilGWP)
	fmt.Fprintf(w, "  biogenic GWP  %10.3f kg CO2e\n", report.Impact.BiogenicGWP)
	fmt.Fprintf(w, "  ADPf          %10.3f\n", report.Impact.ADPF)
	fmt.Fprintln(w)

	// Sustainability score (raw magnitude)
	fmt.Fprintf(w, "Sustainability score: %.3f %s\n", report.Score,
		dim("(raw magnitude, lower is better)"))

	return nil
}
