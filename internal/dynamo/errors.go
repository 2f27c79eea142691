package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidConfig indicates a run or driver configuration that cannot be stepped.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrInvalidBox indicates a box with non-positive length or mass.
	ErrInvalidBox = errors.New("dynamo: invalid box")

	// ErrEmptyBox indicates a driver was given a box with no particles.
	ErrEmptyBox = errors.New("dynamo: box has no particles")

	// ErrOverlap indicates two particles share a position (rij2 = 0) or the
	// pair energy became non-finite.
	ErrOverlap = errors.New("dynamo: particle overlap (non-finite energy)")

	// ErrContextCanceled indicates the run was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")
)

// SimulationError wraps an error with the step at which it occurred.
type SimulationError struct {
	Step    int
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
