package sim

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/barneshut/internal/barneshut"
	"github.com/san-kum/barneshut/internal/integrators"
	"github.com/san-kum/barneshut/internal/metrics"
)

func unitParams() barneshut.Params {
	p := barneshut.DefaultParams()
	p.G = 1
	p.Softening = 0.05
	return p
}

func randomSet(n int, seed int64, p barneshut.Params) *barneshut.Set {
	rng := rand.New(rand.NewSource(seed))
	set := barneshut.NewSet(p)
	for i := 0; i < n; i++ {
		set.Add(barneshut.Point{X: rng.Float64() * 100, Y: rng.Float64() * 100}, 1+rng.Float64())
	}
	return set
}

func TestStep_Empty(t *testing.T) {
	s := New(unitParams())
	s.Step(nil, 1)
	if s.Tree() != nil {
		t.Error("expected no tree for an empty step")
	}
}

func TestStep_SingleBody(t *testing.T) {
	p := unitParams()
	b := barneshut.NewBody(barneshut.Point{X: 1, Y: 2}, 1, p)
	b.Velocity = barneshut.Vector{X: 1, Y: -1}
	b.Force = barneshut.Vector{X: 100, Y: 100}

	s := New(p)
	s.Step([]*barneshut.Body{b}, 2)

	if b.Force != (barneshut.Vector{}) {
		t.Errorf("expected force reset, got %v", b.Force)
	}
	if b.Location != (barneshut.Point{X: 3, Y: 0}) {
		t.Errorf("expected (3, 0), got %v", b.Location)
	}
	if s.Tree() != nil {
		t.Error("expected no tree for a single body")
	}
}

func TestStep_TwoBodySymmetry(t *testing.T) {
	p := unitParams()
	a := barneshut.NewBody(barneshut.Point{X: -1, Y: 0}, 1, p)
	b := barneshut.NewBody(barneshut.Point{X: 1, Y: 0}, 1, p)
	bodies := []*barneshut.Body{a, b}

	s := New(p)
	for i := 0; i < 5; i++ {
		s.Step(bodies, 0.01)
		if a.Velocity.X != -b.Velocity.X || a.Velocity.Y != -b.Velocity.Y {
			t.Fatalf("step %d: velocities not opposite: %v vs %v", i, a.Velocity, b.Velocity)
		}
	}
	if a.Velocity.X <= 0 {
		t.Errorf("expected body a to move toward b, got %v", a.Velocity)
	}
	if s.Tree() == nil || s.Tree().Len() != 2 {
		t.Error("expected a tree holding both bodies")
	}
}

func TestStep_ParallelMatchesSerial(t *testing.T) {
	p := unitParams()
	serial := randomSet(300, 11, p)
	parallel := serial.Clone()

	s1 := New(p)
	s2 := New(p)
	s2.SetWorkers(8)

	for i := 0; i < 3; i++ {
		s1.Step(serial.Bodies(), 0.1)
		s2.Step(parallel.Bodies(), 0.1)
	}

	for i, b := range serial.Bodies() {
		o := parallel.Bodies()[i]
		if b.Location != o.Location || b.Velocity != o.Velocity {
			t.Fatalf("body %d diverged: %v vs %v", i, b.Location, o.Location)
		}
	}
}

func TestSimulatorRun(t *testing.T) {
	p := unitParams()
	set := randomSet(50, 3, p)

	s := New(p)
	result, err := s.Run(context.Background(), set, Config{Dt: 0.01, Steps: 20, SampleEvery: 5})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StepsTaken != 20 {
		t.Errorf("expected 20 steps, got %d", result.StepsTaken)
	}
	// step 0, 5, 10, 15, 20
	if len(result.Samples) != 5 {
		t.Errorf("expected 5 samples, got %d", len(result.Samples))
	}
	if math.Abs(result.Time-0.2) > 1e-12 {
		t.Errorf("expected time 0.2, got %f", result.Time)
	}
	final, _ := result.Final()
	if final.Nodes == 0 {
		t.Error("expected tree statistics in the final sample")
	}
}

func TestSimulatorRun_FinalSampleAdded(t *testing.T) {
	p := unitParams()
	s := New(p)
	result, err := s.Run(context.Background(), randomSet(10, 1, p), Config{Dt: 0.1, Steps: 7})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Samples) != 2 {
		t.Fatalf("expected initial and final samples, got %d", len(result.Samples))
	}
	if result.Samples[1].Step != 7 {
		t.Errorf("expected final step 7, got %d", result.Samples[1].Step)
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	p := unitParams()
	s := New(p)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Steps: 1}},
		{"negative dt", Config{Dt: -0.1, Steps: 1}},
		{"NaN dt", Config{Dt: math.NaN(), Steps: 1}},
		{"zero steps", Config{Dt: 0.1, Steps: 0}},
		{"negative sample interval", Config{Dt: 0.1, Steps: 1, SampleEvery: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), randomSet(2, 1, p), tt.cfg)
			if !errors.Is(err, barneshut.ErrParameterBounds) {
				t.Errorf("expected ErrParameterBounds, got %v", err)
			}
		})
	}
}

func TestSimulatorRun_Canceled(t *testing.T) {
	p := unitParams()
	s := New(p)

	ctx, cancel := context.WithCancel(context.Background())
	steps := 0
	s.AddObserver(ObserverFunc(func(info StepInfo) {
		steps = info.Step
		if info.Step == 3 {
			cancel()
		}
	}))

	result, err := s.Run(ctx, randomSet(10, 2, p), Config{Dt: 0.1, Steps: 1000})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.StepsTaken != 3 || steps != 3 {
		t.Errorf("expected partial result after 3 steps, got %+v", result)
	}
}

func TestSimulatorRun_InvalidState(t *testing.T) {
	p := unitParams()
	set := barneshut.NewSet(p)
	set.Add(barneshut.Point{}, 1)
	bad := set.Add(barneshut.Point{X: 1}, 1)
	bad.Velocity = barneshut.Vector{X: math.Inf(1)}

	s := New(p)
	_, err := s.Run(context.Background(), set, Config{Dt: 0.1, Steps: 10, ValidateState: true})

	var simErr *SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected SimulationError, got %v", err)
	}
	if simErr.Step != 1 || simErr.BodyID != bad.ID {
		t.Errorf("unexpected error context: %+v", simErr)
	}
	if !errors.Is(err, barneshut.ErrInvalidState) {
		t.Error("expected wrapped ErrInvalidState")
	}
}

func TestSimulatorMetrics(t *testing.T) {
	p := unitParams()
	s := New(p)
	s.AddMetric(metrics.NewEnergyDrift(p))
	s.AddMetric(metrics.NewMaxSpeed())

	result, err := s.Run(context.Background(), randomSet(20, 4, p), Config{Dt: 0.01, Steps: 10})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for _, name := range []string{"energy_drift", "max_speed"} {
		if _, ok := result.Metrics[name]; !ok {
			t.Errorf("metric %q not found in result", name)
		}
	}
	if result.Metrics["max_speed"] <= 0 {
		t.Error("expected bodies to have picked up speed")
	}
}

func TestSweep(t *testing.T) {
	p := unitParams()
	set := randomSet(40, 5, p)
	before := set.Bodies()[0].Location

	s := New(p)
	thetas := []float64{0, 0.5, 1}
	results, err := s.Sweep(context.Background(), set, Config{Dt: 0.01, Steps: 5}, thetas)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	if len(results) != len(thetas) {
		t.Fatalf("expected %d results, got %d", len(thetas), len(results))
	}
	for i, r := range results {
		if r.Theta != thetas[i] {
			t.Errorf("result %d: expected theta %v, got %v", i, thetas[i], r.Theta)
		}
		if r.StepsTaken != 5 {
			t.Errorf("result %d: expected 5 steps, got %d", i, r.StepsTaken)
		}
	}
	if set.Bodies()[0].Location != before {
		t.Error("Sweep modified the input set")
	}
}

func BenchmarkStep(b *testing.B) {
	p := unitParams()
	set := randomSet(2000, 1, p)
	s := New(p)
	s.SetWorkers(0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Step(set.Bodies(), 0.001)
	}
}

func TestSimulatorRun_Leapfrog(t *testing.T) {
	p := unitParams()
	euler, leap := randomSet(40, 5, p), randomSet(40, 5, p)
	cfg := Config{Dt: 0.01, Steps: 20, SampleEvery: 5}

	s := New(p)
	a, err := s.Run(context.Background(), euler, cfg)
	if err != nil {
		t.Fatalf("euler run failed: %v", err)
	}

	s = New(p)
	s.SetIntegrator(integrators.NewLeapfrog())
	b, err := s.Run(context.Background(), leap, cfg)
	if err != nil {
		t.Fatalf("leapfrog run failed: %v", err)
	}

	if a.StepsTaken != b.StepsTaken || len(a.Samples) != len(b.Samples) {
		t.Errorf("expected matching run shape, got %d/%d steps", a.StepsTaken, b.StepsTaken)
	}
	if euler.Bodies()[0].Location == leap.Bodies()[0].Location {
		t.Error("expected schemes to diverge")
	}
	if s.Tree() == nil {
		t.Error("expected a tree after a leapfrog run")
	}
}
