package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrNonFinite indicates a field holding NaN or Inf after a step.
	ErrNonFinite = errors.New("dynamo: non-finite value in field")

	// ErrShapeMismatch indicates fields whose dimensions differ from the grid.
	ErrShapeMismatch = errors.New("dynamo: field shape mismatch")

	// ErrInvalidGrid indicates grid parameters that cannot carry the scheme.
	ErrInvalidGrid = errors.New("dynamo: invalid grid parameters")

	// ErrInvalidTimeStep indicates a run configuration time step outside the allowed range.
	ErrInvalidTimeStep = errors.New("dynamo: time step out of range")

	// ErrNonPositivePressure indicates an initial profile whose pressure can
	// reach zero or below; the wind tendencies divide by pressure.
	ErrNonPositivePressure = errors.New("dynamo: initial pressure not strictly positive")

	// ErrUnknownComponent indicates an unrecognised integrator, initializer,
	// boundary mode or field name.
	ErrUnknownComponent = errors.New("dynamo: unknown component")
)

// FieldError locates a bad value inside a state.
type FieldError struct {
	Variable Variable
	Cell     Cell
	Value    float64
	Wrapped  error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s at %s = %g: %v", e.Variable, e.Cell, e.Value, e.Wrapped)
}

func (e *FieldError) Unwrap() error { return e.Wrapped }

// SimError wraps an error with the step it happened on.
type SimError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.1fs): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimError) Unwrap() error { return e.Wrapped }
