// Package integrators advances body sets given a force evaluation.
package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/barneshut/internal/barneshut"
)

// ForceFunc fills Force on every body from their current locations and
// reports the tree it used.
type ForceFunc func(bodies []*barneshut.Body) barneshut.Stats

// Integrator advances bodies by one step of dt. Implementations may cache
// forces between steps; Reset drops that state.
type Integrator interface {
	Name() string
	Step(bodies []*barneshut.Body, dt float64, forces ForceFunc) barneshut.Stats
	Reset()
}

const Default = "euler"

var registry = map[string]func() Integrator{
	"euler":    func() Integrator { return NewEuler() },
	"leapfrog": func() Integrator { return NewLeapfrog() },
}

// Get returns a fresh integrator. An empty name selects Default.
func Get(name string) (Integrator, error) {
	if name == "" {
		name = Default
	}
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, Names())
	}
	return ctor(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeDt(dt float64) float64 {
	if dt <= 0 {
		return 1
	}
	return dt
}
