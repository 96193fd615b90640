package barneshut

import "errors"

// Domain errors for engine operations.
var (
	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("barneshut: parameter out of valid bounds")

	// ErrInvalidState indicates a body with non-finite location or velocity.
	ErrInvalidState = errors.New("barneshut: invalid state (NaN or Inf detected)")

	// ErrNoBodies indicates an operation that needs at least one body.
	ErrNoBodies = errors.New("barneshut: no bodies")
)
