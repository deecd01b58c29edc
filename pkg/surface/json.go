package surface

import (
	"encoding/json"
	"io"

	"github.com/ecoscope/ecoscope/pkg/assess"
)

// JSONRenderer renders a report as indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(w io.Writer, report *assess.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
