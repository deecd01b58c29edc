package surface_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ecoscope/ecoscope/pkg/assess"
	"github.com/ecoscope/ecoscope/pkg/surface"
)

func sampleReport() *assess.Report {
	return &assess.Report{
		ProjectID: 1,
		RootID:    1,
		Weight:    3.0,
		Score:     75.0,
		Impact: assess.ImpactResult{
			TotalGWP:    25.0,
			FossilGWP:   14.0,
			BiogenicGWP: 9.0,
			ADPF:        5.0,
			Grade:       "B",
		},
		Recycle: assess.RecycleResult{Value: 0.935, Grade: "B"},
		Stats: assess.TreeStatsView{
			ComponentCount: 3,
			AtomicCount:    2,
			MaterialCount:  2,
			RootCount:      1,
		},
	}
}

func TestTerminalRendererBasics(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	r := &surface.TerminalRenderer{}
	if err := r.Render(&buf, sampleReport()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Recycle B (0.935)",
		"Impact B (25.0 kg CO2e)",
		"3 components / 2 atomic parts / 2 materials",
		"fossil GWP",
		"Sustainability score: 75.000",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Gated") {
		t.Error("ungated report must not render a gate line")
	}
}

func TestTerminalRendererGate(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	report := sampleReport()
	report.Recycle = assess.RecycleResult{Value: 0, Grade: "F", Gate: assess.GateDangerousMaterial}

	var buf bytes.Buffer
	r := &surface.TerminalRenderer{}
	if err := r.Render(&buf, report); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Gated") || !strings.Contains(out, "dangerous material") {
		t.Errorf("gate line missing:\n%s", out)
	}
}

func TestTerminalRendererNoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	r := &surface.TerminalRenderer{}
	if err := r.Render(&buf, sampleReport()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(buf.String(), "\033[") {
		t.Error("NO_COLOR output must not contain ANSI escapes")
	}
}

func TestJSONRendererRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	r := &surface.JSONRenderer{}
	if err := r.Render(&buf, sampleReport()); err != nil {
		t.Fatalf("Render: %v", err)
	}

	var decoded assess.Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Recycle.Grade != "B" || decoded.Impact.TotalGWP != 25.0 {
		t.Errorf("round trip mismatch: %+v", decoded)
	}
}
