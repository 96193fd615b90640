package sim

import "fmt"

// SimulationError wraps an error with the step at which it occurred.
type SimulationError struct {
	Step    int
	Time    float64
	BodyID  uint64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("sim: step %d (t=%g) body %d: %v", e.Step, e.Time, e.BodyID, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
