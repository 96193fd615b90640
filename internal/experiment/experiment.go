// Package experiment assembles a runnable simulation from a configuration.
package experiment

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/barneshut/internal/barneshut"
	"github.com/san-kum/barneshut/internal/config"
	"github.com/san-kum/barneshut/internal/integrators"
	"github.com/san-kum/barneshut/internal/metrics"
	"github.com/san-kum/barneshut/internal/sim"
	"github.com/san-kum/barneshut/internal/storage"
)

// Experiment is one configured run: a body set, a simulator with the
// standard drift metrics, and the run parameters.
type Experiment struct {
	cfg       *config.Config
	set       *barneshut.Set
	simulator *sim.Simulator
	integ     integrators.Integrator
}

// New validates cfg and builds the body set it describes.
func New(cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	integ, err := integrators.Get(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	set, err := cfg.NewSet()
	if err != nil {
		return nil, err
	}
	return &Experiment{cfg: cfg, set: set, integ: integ}, nil
}

// Setup creates the simulator. Observers are attached in order.
func (e *Experiment) Setup(log logrus.FieldLogger, observers ...sim.Observer) {
	p := e.cfg.Params()
	s := sim.New(p)
	s.SetWorkers(e.cfg.Workers)
	s.SetIntegrator(e.integ)
	if log != nil {
		s.SetLogger(log)
	}
	s.AddMetric(metrics.NewEnergyDrift(p))
	s.AddMetric(metrics.NewMomentumDrift())
	s.AddMetric(metrics.NewMaxSpeed())
	for _, o := range observers {
		s.AddObserver(o)
	}
	e.simulator = s
}

func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{
		Dt:            e.cfg.Dt,
		Steps:         e.cfg.Steps,
		SampleEvery:   e.cfg.SampleEvery,
		ValidateState: e.cfg.ValidateState,
	}
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.set, e.SimConfig())
}

// Sweep runs copies of the initial set under each theta.
func (e *Experiment) Sweep(ctx context.Context, thetas []float64) ([]*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Sweep(ctx, e.set, e.SimConfig(), thetas)
}

// Metadata describes the run for storage. Result fields are filled in by
// storage.Store.SaveResult.
func (e *Experiment) Metadata(name string) storage.RunMetadata {
	return storage.RunMetadata{
		Name:       name,
		Seed:       e.cfg.Seed,
		Bodies:     e.set.Len(),
		Integrator: e.integ.Name(),
		Dt:         e.cfg.Dt,
		Steps:      e.cfg.Steps,
		G:          e.cfg.Engine.G,
		Softening:  e.cfg.Engine.Softening,
		Workers:    e.cfg.Workers,
	}
}

func (e *Experiment) Config() *config.Config    { return e.cfg }
func (e *Experiment) Set() *barneshut.Set       { return e.set }
func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }
