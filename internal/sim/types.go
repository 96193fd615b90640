package sim

import (
	"time"

	"github.com/san-kum/barneshut/internal/barneshut"
)

// Metric accumulates a scalar over the snapshots of a run.
type Metric interface {
	Name() string
	Observe(bodies []*barneshut.Body, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every completed step.
type Observer interface {
	OnStep(info StepInfo)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(StepInfo)

func (f ObserverFunc) OnStep(info StepInfo) { f(info) }

// StepInfo describes one completed step.
type StepInfo struct {
	Step     int
	Time     float64
	Bodies   int
	Tree     barneshut.Stats
	Duration time.Duration
}

type Config struct {
	Dt    float64
	Steps int
	// SampleEvery records a Sample every n steps. Zero keeps only the first
	// and last samples.
	SampleEvery int
	// ValidateState stops the run when a body leaves the finite range.
	ValidateState bool
}

// Sample is a diagnostic snapshot taken during Run.
type Sample struct {
	Step         int
	Time         float64
	Energy       float64
	Momentum     barneshut.Vector
	Nodes        int
	Depth        int
	StepDuration time.Duration
}

type Result struct {
	Samples     []Sample
	StepsTaken  int
	Time        float64
	Theta       float64
	EnergyDrift float64
	Metrics     map[string]float64
	Elapsed     time.Duration
}

// Final returns the last recorded sample.
func (r *Result) Final() (Sample, bool) {
	if len(r.Samples) == 0 {
		return Sample{}, false
	}
	return r.Samples[len(r.Samples)-1], true
}
