package sim

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/barneshut/internal/barneshut"
	"github.com/san-kum/barneshut/internal/compute"
	"github.com/san-kum/barneshut/internal/integrators"
	"github.com/san-kum/barneshut/internal/metrics"
)

// Simulator advances a body set with a quadtree rebuilt every step.
type Simulator struct {
	params    barneshut.Params
	workers   int
	log       logrus.FieldLogger
	metrics   []Metric
	observers []Observer
	tree      *barneshut.Quadtree
	integ     integrators.Integrator
}

func New(p barneshut.Params) *Simulator {
	quiet := logrus.New()
	quiet.Out = io.Discard
	return &Simulator{
		params:    p,
		workers:   1,
		log:       quiet,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		integ:     integrators.NewEuler(),
	}
}

func (s *Simulator) AddMetric(m Metric)             { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)         { s.observers = append(s.observers, o) }
func (s *Simulator) SetLogger(l logrus.FieldLogger) { s.log = l }
func (s *Simulator) Params() barneshut.Params       { return s.params }

// SetWorkers sets the number of goroutines used by the force phase. Values
// below one select runtime.NumCPU.
func (s *Simulator) SetWorkers(n int) { s.workers = n }

// SetTheta changes the opening threshold used by subsequent steps.
func (s *Simulator) SetTheta(theta float64) { s.params.Theta = theta }

// SetIntegrator replaces the semi-implicit Euler default.
func (s *Simulator) SetIntegrator(i integrators.Integrator) { s.integ = i }

func (s *Simulator) Integrator() integrators.Integrator { return s.integ }

// Tree returns the tree built by the last step, or nil when that step had
// fewer than two bodies.
func (s *Simulator) Tree() *barneshut.Quadtree { return s.tree }

// Step advances bodies by dt. Every force is computed against the same
// positions before any body moves.
func (s *Simulator) Step(bodies []*barneshut.Body, dt float64) {
	s.step(bodies, dt)
}

func (s *Simulator) step(bodies []*barneshut.Body, dt float64) barneshut.Stats {
	s.tree = nil
	if len(bodies) == 0 {
		return barneshut.Stats{}
	}
	return s.integ.Step(bodies, dt, s.forces)
}

// forces rebuilds the tree over bodies and fills every Force from it. A lone
// body feels nothing.
func (s *Simulator) forces(bodies []*barneshut.Body) barneshut.Stats {
	if len(bodies) < 2 {
		for _, b := range bodies {
			b.ResetForce()
		}
		s.tree = nil
		return barneshut.Stats{}
	}

	tree := barneshut.Build(bodies, s.params)
	s.tree = tree

	compute.ParallelFor(len(bodies), s.workers, func(start, end int) {
		for _, b := range bodies[start:end] {
			b.ResetForce()
			tree.UpdateForce(b)
		}
	})
	return tree.Stats()
}

// Run advances set for cfg.Steps steps. On cancellation the partial result is
// returned together with ctx.Err().
func (s *Simulator) Run(ctx context.Context, set *barneshut.Set, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Samples: make([]Sample, 0),
		Theta:   s.params.Theta,
		Metrics: make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}
	s.integ.Reset()

	log := s.log.WithFields(logrus.Fields{
		"bodies": set.Len(),
		"steps":  cfg.Steps,
		"dt":     cfg.Dt,
		"theta":  s.params.Theta,
		"integ":  s.integ.Name(),
	})
	log.Info("run started")
	start := time.Now()

	bodies := set.Bodies()
	t := 0.0
	result.Samples = append(result.Samples, s.sample(bodies, 0, t, barneshut.Stats{}, 0))
	initialEnergy := result.Samples[0].Energy

	finish := func() {
		result.Time = t
		result.Elapsed = time.Since(start)
		if last, ok := result.Final(); !ok || last.Step != result.StepsTaken {
			result.Samples = append(result.Samples, s.sample(bodies, result.StepsTaken, t, s.treeStats(), 0))
		}
		if final, ok := result.Final(); ok && initialEnergy != 0 {
			result.EnergyDrift = math.Abs(final.Energy-initialEnergy) / math.Abs(initialEnergy)
		}
		for _, m := range s.metrics {
			result.Metrics[m.Name()] = m.Value()
		}
	}

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			finish()
			log.WithField("step", i).Warn("run canceled")
			return result, ctx.Err()
		default:
		}

		for _, m := range s.metrics {
			m.Observe(bodies, t)
		}

		stepStart := time.Now()
		stats := s.step(bodies, cfg.Dt)
		elapsed := time.Since(stepStart)
		t += cfg.Dt
		result.StepsTaken++

		info := StepInfo{Step: i + 1, Time: t, Bodies: len(bodies), Tree: stats, Duration: elapsed}
		for _, obs := range s.observers {
			obs.OnStep(info)
		}

		if cfg.ValidateState {
			if id, bad := invalidBody(bodies); bad {
				finish()
				err := &SimulationError{Step: i + 1, Time: t, BodyID: id, Wrapped: barneshut.ErrInvalidState}
				log.WithField("step", i+1).WithError(err).Warn("invalid state")
				return result, err
			}
		}

		if cfg.SampleEvery > 0 && (i+1)%cfg.SampleEvery == 0 {
			smp := s.sample(bodies, i+1, t, stats, elapsed)
			result.Samples = append(result.Samples, smp)
			log.WithFields(logrus.Fields{
				"step":   smp.Step,
				"energy": smp.Energy,
				"nodes":  smp.Nodes,
			}).Debug("sample")
		}
	}

	finish()
	log.WithFields(logrus.Fields{
		"elapsed":      result.Elapsed,
		"energy_drift": result.EnergyDrift,
	}).Info("run finished")
	return result, nil
}

func (s *Simulator) sample(bodies []*barneshut.Body, step int, t float64, stats barneshut.Stats, d time.Duration) Sample {
	return Sample{
		Step:         step,
		Time:         t,
		Energy:       metrics.TotalEnergy(bodies, s.params),
		Momentum:     metrics.Momentum(bodies),
		Nodes:        stats.Nodes,
		Depth:        stats.MaxDepth,
		StepDuration: d,
	}
}

func (s *Simulator) treeStats() barneshut.Stats {
	if s.tree == nil {
		return barneshut.Stats{}
	}
	return s.tree.Stats()
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 || math.IsNaN(cfg.Dt) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("sim: dt must be positive, got %g: %w", cfg.Dt, barneshut.ErrParameterBounds)
	}
	if cfg.Steps <= 0 {
		return fmt.Errorf("sim: steps must be positive, got %d: %w", cfg.Steps, barneshut.ErrParameterBounds)
	}
	if cfg.SampleEvery < 0 {
		return fmt.Errorf("sim: sample interval must not be negative, got %d: %w", cfg.SampleEvery, barneshut.ErrParameterBounds)
	}
	return s.params.Validate()
}

func invalidBody(bodies []*barneshut.Body) (uint64, bool) {
	for _, b := range bodies {
		if !b.IsValid() {
			return b.ID, true
		}
	}
	return 0, false
}
