// Package automation runs scripted batches of simulations.
package automation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/barneshut/internal/barneshut"
	"github.com/san-kum/barneshut/internal/config"
	"github.com/san-kum/barneshut/internal/experiment"
	"github.com/san-kum/barneshut/internal/sim"
	"github.com/san-kum/barneshut/internal/storage"
)

// Scenario defines a scripted simulation sequence.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run. It starts from Preset, or Config when set,
// or the default configuration, and applies the non-zero overrides.
type ScenarioStep struct {
	Preset     string  `yaml:"preset"`
	Config     string  `yaml:"config"`
	Layout     string  `yaml:"layout"`
	Integrator string  `yaml:"integrator"`
	Count      int     `yaml:"count"`
	Theta      float64 `yaml:"theta"`
	Dt         float64 `yaml:"dt"`
	Steps      int     `yaml:"steps"`
	Seed       int64   `yaml:"seed"`
	// Thetas turns the step into a sweep with one run per value.
	Thetas []float64 `yaml:"thetas"`
	SaveAs string    `yaml:"save_as"`
}

// StepResult is the outcome of one run of a scenario.
type StepResult struct {
	Step   int
	Name   string
	RunID  string
	Result *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("automation: parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("automation: scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Resolve builds the configuration for a step.
func (st ScenarioStep) Resolve() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case st.Preset != "":
		cfg = config.GetPreset(st.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("automation: unknown preset %q", st.Preset)
		}
	case st.Config != "":
		var err error
		if cfg, err = config.Load(st.Config); err != nil {
			return nil, err
		}
	default:
		cfg = config.DefaultConfig()
	}

	if st.Layout != "" {
		cfg.Layout.Name = st.Layout
		cfg.Bodies = nil
	}
	if st.Integrator != "" {
		cfg.Integrator = st.Integrator
	}
	if st.Count > 0 {
		cfg.Layout.Count = st.Count
	}
	if st.Theta > 0 {
		cfg.Engine.Theta = st.Theta
	}
	if st.Dt > 0 {
		cfg.Dt = st.Dt
	}
	if st.Steps > 0 {
		cfg.Steps = st.Steps
	}
	if st.Seed != 0 {
		cfg.Seed = st.Seed
	}
	return cfg, cfg.Validate()
}

func (st ScenarioStep) name(i int) string {
	switch {
	case st.SaveAs != "":
		return st.SaveAs
	case st.Preset != "":
		return st.Preset
	}
	return fmt.Sprintf("step%d", i+1)
}

// Runner executes scenarios. A nil Store skips saving.
type Runner struct {
	Store     *storage.Store
	Log       logrus.FieldLogger
	Workers   int
	Observers []sim.Observer
}

func (r *Runner) logger() logrus.FieldLogger {
	if r.Log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		return l
	}
	return r.Log
}

// RunScenario executes the steps in order. Results completed before an
// error are returned with it.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	log := r.logger().WithField("scenario", scenario.Name)
	var results []StepResult

	for i, step := range scenario.Steps {
		name := step.name(i)
		log.WithFields(logrus.Fields{"step": i + 1, "of": len(scenario.Steps), "name": name}).Info("running step")

		exp, err := r.prepare(step, log.WithField("step", i+1))
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		var runs []*sim.Result
		if len(step.Thetas) > 0 {
			runs, err = exp.Sweep(ctx, step.Thetas)
		} else {
			var res *sim.Result
			res, err = exp.Run(ctx)
			runs = []*sim.Result{res}
		}
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		for _, res := range runs {
			sr := StepResult{Step: i + 1, Name: name, Result: res}
			if len(runs) > 1 {
				sr.Name = fmt.Sprintf("%s_theta%g", name, res.Theta)
			}
			if r.Store != nil {
				if sr.RunID, err = r.Store.SaveResult(exp.Metadata(sr.Name), res); err != nil {
					return results, fmt.Errorf("step %d save: %w", i+1, err)
				}
			}
			results = append(results, sr)
		}
	}

	return results, nil
}

func (r *Runner) prepare(step ScenarioStep, log logrus.FieldLogger) (*experiment.Experiment, error) {
	cfg, err := step.Resolve()
	if err != nil {
		return nil, err
	}
	if r.Workers > 0 {
		cfg.Workers = r.Workers
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return nil, err
	}
	exp.Setup(log, r.Observers...)
	return exp, nil
}

// TrialConfig repeats one configuration over consecutive seeds.
type TrialConfig struct {
	Base   *config.Config
	Trials int
	// MaxDrift marks a trial unstable when its relative energy drift
	// exceeds it. Zero disables the threshold.
	MaxDrift float64
}

type TrialResult struct {
	Seed        int64
	EnergyDrift float64
	MaxSpeed    float64
	Stable      bool
}

// RunTrials runs the base configuration once per seed, starting at its own
// seed. A trial is stable when every diagnostic stayed finite and under
// MaxDrift.
func (r *Runner) RunTrials(ctx context.Context, tc TrialConfig) ([]TrialResult, error) {
	log := r.logger()
	results := make([]TrialResult, 0, tc.Trials)

	for trial := 0; trial < tc.Trials; trial++ {
		cfg := tc.Base.Clone()
		cfg.Seed = tc.Base.Seed + int64(trial)
		cfg.ValidateState = true
		if r.Workers > 0 {
			cfg.Workers = r.Workers
		}

		exp, err := experiment.New(cfg)
		if err != nil {
			return results, err
		}
		exp.Setup(log.WithField("seed", cfg.Seed), r.Observers...)

		res, err := exp.Run(ctx)
		diverged := false
		if err != nil {
			if !errors.Is(err, barneshut.ErrInvalidState) {
				return results, err
			}
			diverged = true
			log.WithError(err).WithField("seed", cfg.Seed).Warn("trial diverged")
		}

		tr := TrialResult{Seed: cfg.Seed, Stable: !diverged}
		if res != nil {
			tr.EnergyDrift = res.EnergyDrift
			tr.MaxSpeed = res.Metrics["max_speed"]
		}
		if math.IsNaN(tr.EnergyDrift) || math.IsInf(tr.EnergyDrift, 0) {
			tr.Stable = false
		}
		if tc.MaxDrift > 0 && tr.EnergyDrift > tc.MaxDrift {
			tr.Stable = false
		}
		results = append(results, tr)

		if (trial+1)%10 == 0 {
			log.Infof("trials: %d/%d complete", trial+1, tc.Trials)
		}
	}

	return results, nil
}

// TrialStats counts stable and unstable trials.
func TrialStats(results []TrialResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
