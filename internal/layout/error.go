package layout

import (
	"fmt"
	"strings"
)

// LayoutErrorKind enumerates types of layout calculation errors.
type LayoutErrorKind uint8

const (
	// LayoutErrRecursiveUnsized indicates a record that contains itself by value.
	LayoutErrRecursiveUnsized LayoutErrorKind = iota + 1
	LayoutErrLengthConversion
	LayoutErrNegativeLength
	// LayoutErrIncomplete is an opaque or unknown type used by value.
	LayoutErrIncomplete
)

// LayoutError represents an error during memory layout calculation.
type LayoutError struct {
	Kind  LayoutErrorKind
	Type  string
	Cycle []string // for LayoutErrRecursiveUnsized
	Value int64    // for LayoutErrNegativeLength
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case LayoutErrRecursiveUnsized:
		if len(e.Cycle) == 0 {
			return fmt.Sprintf("recursive type has infinite size (%s)", e.Type)
		}
		return fmt.Sprintf("recursive type has infinite size (cycle: %s)", strings.Join(e.Cycle, " -> "))
	case LayoutErrLengthConversion:
		return fmt.Sprintf("array length of %s is not a constant", e.Type)
	case LayoutErrNegativeLength:
		return fmt.Sprintf("negative array length: %d (%s)", e.Value, e.Type)
	case LayoutErrIncomplete:
		return fmt.Sprintf("%s has no known size", e.Type)
	default:
		return fmt.Sprintf("layout error kind=%d (%s)", e.Kind, e.Type)
	}
}
