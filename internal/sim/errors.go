package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState indicates a NaN or Inf reading.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")

	// ErrInvalidDuration indicates a run of zero or negative ticks.
	ErrInvalidDuration = errors.New("sim: duration must be positive")
)

// SimError records where in a run a failure happened.
type SimError struct {
	Tick    int
	Time    float64
	Message string
	Wrapped error
}

func (e SimError) Error() string {
	return fmt.Sprintf("tick %d (t=%.0fs): %s", e.Tick, e.Time, e.Message)
}

func (e SimError) Unwrap() error { return e.Wrapped }
