package dynamo

import (
	"errors"
	"fmt"

	"github.com/san-kum/qdynsim/internal/qobj"
)

// Domain errors for solver operations.
var (
	// ErrUnsupportedSolver indicates a solver name other than sesolve or mesolve.
	ErrUnsupportedSolver = errors.New("dynamo: unsupported solver")

	// ErrInvalidState indicates a state vector containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrStepRejected is returned by adaptive steppers when the local error
	// estimate exceeds tolerance; the caller retries with the suggested dt.
	ErrStepRejected = errors.New("dynamo: step rejected")

	// ErrInvalidTimeGrid indicates an empty or non-increasing time grid.
	ErrInvalidTimeGrid = errors.New("dynamo: invalid time grid")

	// ErrDimensionMismatch indicates operators or states over different Hilbert spaces.
	ErrDimensionMismatch = qobj.ErrDimensionMismatch
)

// SolveError wraps an error with solver context.
type SolveError struct {
	Solver  string
	Step    int
	Time    float64
	Wrapped error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("%s: step %d (t=%.4f): %v", e.Solver, e.Step, e.Time, e.Wrapped)
}

func (e *SolveError) Unwrap() error {
	return e.Wrapped
}
