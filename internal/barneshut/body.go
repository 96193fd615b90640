package barneshut

import (
	"math"
	"sync/atomic"
)

// NoID marks a synthesized aggregate body.
const NoID uint64 = 0

var lastID atomic.Uint64

func nextID() uint64 { return lastID.Add(1) }

// Body is a point mass with the force accumulated for the current step.
type Body struct {
	ID       uint64
	Location Point
	Mass     float64
	Velocity Vector
	Force    Vector
}

// NewBody creates a body with a fresh identity. A mass that is not strictly
// positive and finite is replaced by p.DefaultMass.
func NewBody(loc Point, mass float64, p Params) *Body {
	if mass <= 0 || !isFinite(mass) {
		mass = p.DefaultMass
	}
	return &Body{ID: nextID(), Location: loc, Mass: mass}
}

func (b *Body) DistanceTo(o *Body) float64 {
	return b.Location.DistanceTo(o.Location)
}

// Add returns the aggregate of b and o placed at their centre of mass.
// Neither input is modified and the result carries no identity.
func (b *Body) Add(o *Body) Body {
	m := b.Mass + o.Mass
	return Body{
		ID: NoID,
		Location: Point{
			X: (b.Location.X*b.Mass + o.Location.X*o.Mass) / m,
			Y: (b.Location.Y*b.Mass + o.Location.Y*o.Mass) / m,
		},
		Mass: m,
	}
}

// AddForce accumulates the softened attraction of o on b:
//
//	F = G*m1*m2 / (d^2 + eps^2)
//
// resolved along (dx/d, dy/d). Coincident bodies exert no force.
func (b *Body) AddForce(o *Body, p Params) {
	dx := o.Location.X - b.Location.X
	dy := o.Location.Y - b.Location.Y
	d := math.Hypot(dx, dy)
	if d == 0 {
		return
	}

	f := p.G * b.Mass * o.Mass / (d*d + p.Softening*p.Softening)
	b.Force.X += f * dx / d
	b.Force.Y += f * dy / d
}

func (b *Body) ResetForce() {
	b.Force = Vector{}
}

// Update advances velocity then location by dt (semi-implicit Euler).
// A non-positive dt is treated as one time unit.
func (b *Body) Update(dt float64) {
	if dt <= 0 {
		dt = 1
	}
	b.Velocity.X += b.Force.X / b.Mass * dt
	b.Velocity.Y += b.Force.Y / b.Mass * dt
	b.Location.X += b.Velocity.X * dt
	b.Location.Y += b.Velocity.Y * dt
}

// Equals reports structural equality on location and mass.
func (b *Body) Equals(o *Body) bool {
	return b.Location == o.Location && b.Mass == o.Mass
}

// Same reports whether b and o are the same real body.
func (b *Body) Same(o *Body) bool {
	return b.ID != NoID && b.ID == o.ID
}

// Radius returns the render radius for the given density.
func (b *Body) Radius(density float64) float64 {
	return math.Sqrt(b.Mass / density / math.Pi)
}

func (b *Body) IsValid() bool {
	return b.Location.IsFinite() && b.Velocity.IsFinite()
}

// Speed is the magnitude of the velocity.
func (b *Body) Speed() float64 { return b.Velocity.Norm() }
