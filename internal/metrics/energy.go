package metrics

import (
	"math"

	"github.com/san-kum/barneshut/internal/barneshut"
)

// TotalEnergy returns kinetic energy plus the softened pairwise potential
// -G*mi*mj/sqrt(d^2+eps^2). Coincident pairs are skipped, matching the zero
// force they exert on each other.
func TotalEnergy(bodies []*barneshut.Body, p barneshut.Params) float64 {
	return Kinetic(bodies) + Potential(bodies, p)
}

func Kinetic(bodies []*barneshut.Body) float64 {
	ke := 0.0
	for _, b := range bodies {
		v := b.Velocity
		ke += 0.5 * b.Mass * (v.X*v.X + v.Y*v.Y)
	}
	return ke
}

func Potential(bodies []*barneshut.Body, p barneshut.Params) float64 {
	eps2 := p.Softening * p.Softening
	pe := 0.0
	for i, a := range bodies {
		for _, b := range bodies[i+1:] {
			d := a.DistanceTo(b)
			if d == 0 {
				continue
			}
			pe -= p.G * a.Mass * b.Mass / math.Sqrt(d*d+eps2)
		}
	}
	return pe
}

// Momentum returns the total linear momentum.
func Momentum(bodies []*barneshut.Body) barneshut.Vector {
	var m barneshut.Vector
	for _, b := range bodies {
		m = m.Add(b.Velocity.Scale(b.Mass))
	}
	return m
}

// EnergyDrift tracks the largest relative departure from the first observed
// total energy.
type EnergyDrift struct {
	params   barneshut.Params
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift(p barneshut.Params) *EnergyDrift {
	return &EnergyDrift{params: p}
}

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(bodies []*barneshut.Body, t float64) {
	energy := TotalEnergy(bodies, e.params)
	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}

// MomentumDrift tracks the largest absolute change of total momentum.
type MomentumDrift struct {
	initial  barneshut.Vector
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift { return &MomentumDrift{} }

func (m *MomentumDrift) Name() string { return "momentum_drift" }

func (m *MomentumDrift) Observe(bodies []*barneshut.Body, t float64) {
	p := Momentum(bodies)
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, p.Sub(m.initial).Norm())
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = barneshut.Vector{}
	m.maxDrift = 0
	m.samples = 0
}

// MaxSpeed records the fastest body seen.
type MaxSpeed struct {
	max float64
}

func NewMaxSpeed() *MaxSpeed { return &MaxSpeed{} }

func (m *MaxSpeed) Name() string { return "max_speed" }

func (m *MaxSpeed) Observe(bodies []*barneshut.Body, t float64) {
	for _, b := range bodies {
		m.max = math.Max(m.max, b.Speed())
	}
}

func (m *MaxSpeed) Value() float64 { return m.max }
func (m *MaxSpeed) Reset()         { m.max = 0 }
