package integrators

import "github.com/san-kum/barneshut/internal/barneshut"

// Leapfrog is kick-drift-kick. The closing forces of one step are reused as
// the opening forces of the next, so each step costs one evaluation once
// primed.
type Leapfrog struct {
	primed map[uint64]struct{}
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Name() string { return "leapfrog" }
func (l *Leapfrog) Reset()       { l.primed = nil }

func (l *Leapfrog) Step(bodies []*barneshut.Body, dt float64, forces ForceFunc) barneshut.Stats {
	dt = normalizeDt(dt)
	primed := l.isPrimed(bodies)
	if !primed {
		forces(bodies)
	}

	half := dt / 2
	for _, b := range bodies {
		kick(b, half)
		b.Location.X += b.Velocity.X * dt
		b.Location.Y += b.Velocity.Y * dt
	}

	stats := forces(bodies)
	for _, b := range bodies {
		kick(b, half)
	}
	if !primed {
		l.mark(bodies)
	}
	return stats
}

func kick(b *barneshut.Body, dt float64) {
	b.Velocity.X += b.Force.X / b.Mass * dt
	b.Velocity.Y += b.Force.Y / b.Mass * dt
}

// isPrimed reports whether the cached forces belong to exactly these bodies.
func (l *Leapfrog) isPrimed(bodies []*barneshut.Body) bool {
	if len(l.primed) != len(bodies) {
		return false
	}
	for _, b := range bodies {
		if _, ok := l.primed[b.ID]; !ok {
			return false
		}
	}
	return true
}

func (l *Leapfrog) mark(bodies []*barneshut.Body) {
	l.primed = make(map[uint64]struct{}, len(bodies))
	for _, b := range bodies {
		l.primed[b.ID] = struct{}{}
	}
}
