// Package surface renders assessment reports to the places people read them:
// terminals and JSON consumers.
package surface

import (
	"io"

	"github.com/ecoscope/ecoscope/pkg/assess"
)

// Renderer renders an assessment report to a writer.
type Renderer interface {
	Render(w io.Writer, report *assess.Report) error
}
