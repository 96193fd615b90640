package integrators

import "github.com/san-kum/barneshut/internal/barneshut"

// Euler is semi-implicit Euler: all forces first, then Body.Update on every
// body. It keeps no state.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }
func (e *Euler) Reset()       {}

func (e *Euler) Step(bodies []*barneshut.Body, dt float64, forces ForceFunc) barneshut.Stats {
	stats := forces(bodies)
	for _, b := range bodies {
		b.Update(dt)
	}
	return stats
}
