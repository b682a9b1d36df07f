package models

import (
	"errors"
	"fmt"
)

// ============================================================
// Errors
// ============================================================

var (
	ErrMalformedDocument = errors.New("malformed annotation document")
	ErrInvalidPointCount = errors.New("invalid point count")
	ErrNoHostAvailable   = errors.New("no host wall available")
	ErrUnknownHandle     = errors.New("unknown backend handle")
)

// DegenerateGeometryError is returned when an annotation collapses to a
// zero-length centerline.
type DegenerateGeometryError struct {
	Label  string
	Length float64
}

func (e *DegenerateGeometryError) Error() string {
	if e.Label == "" {
		return fmt.Sprintf("degenerate geometry: length %g", e.Length)
	}
	return fmt.Sprintf("degenerate geometry in %s: length %g", e.Label, e.Length)
}
