package bom

import (
	"errors"
	"fmt"
)

// StructuralErrorKind classifies a data integrity defect in a component tree.
type StructuralErrorKind string

const (
	// StructuralCycle indicates a parent chain that loops back on itself.
	StructuralCycle StructuralErrorKind = "cycle"
	// StructuralOrphanParent indicates a parent_id pointing at a component
	// that is not part of the tree.
	StructuralOrphanParent StructuralErrorKind = "orphan_parent"
	// StructuralMissingMaterial indicates an atomic component without a
	// resolvable material reference.
	StructuralMissingMaterial StructuralErrorKind = "missing_material"
)

// StructuralError reports tree corruption caused by the calling store, as
// opposed to legitimate missing optional data (which every formula defaults).
type StructuralError struct {
	Kind        StructuralErrorKind
	ComponentID int64
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error (%s) at component %d", e.Kind, e.ComponentID)
}

// IsStructural reports whether err is (or wraps) a StructuralError.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}
