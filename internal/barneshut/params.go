package barneshut

import (
	"fmt"
	"math"
)

const (
	DefaultG         = 6.673e-11
	DefaultSoftening = 1e5
	DefaultTheta     = 0.5
	DefaultDensity   = 2 / (5 * math.Pi)
	DefaultMass      = 10.0
	DefaultMaxDepth  = 64
	DefaultMinCell   = 1e-9
	DefaultMinExtent = 1.0
)

// Params holds the physical constants and tuning knobs shared by every
// traversal of a run.
type Params struct {
	// G is the gravitational constant.
	G float64
	// Softening is the epsilon added to the squared distance in the force law.
	// Zero selects the un-softened law.
	Softening float64
	// Theta is the Barnes-Hut opening threshold. Zero forces exact summation.
	Theta float64
	// Density converts mass to a render radius.
	Density float64
	// DefaultMass replaces non-positive or non-finite masses.
	DefaultMass float64
	// MaxDepth bounds subdivision; nodes at this depth collect bodies in a bucket.
	MaxDepth int
	// MinCell stops subdivision once a quadrant side falls below it.
	MinCell float64
	// MinExtent is the smallest side of a bounding quadrant.
	MinExtent float64
	// SquareBounds grows the bounding quadrant to a square so that the
	// opening criterion sees the same extent on both axes.
	SquareBounds bool
}

func DefaultParams() Params {
	return Params{
		G:            DefaultG,
		Softening:    DefaultSoftening,
		Theta:        DefaultTheta,
		Density:      DefaultDensity,
		DefaultMass:  DefaultMass,
		MaxDepth:     DefaultMaxDepth,
		MinCell:      DefaultMinCell,
		MinExtent:    DefaultMinExtent,
		SquareBounds: true,
	}
}

// Validate checks that every parameter is usable by the engine.
func (p Params) Validate() error {
	switch {
	case !isFinite(p.G):
		return fmt.Errorf("g=%v: %w", p.G, ErrParameterBounds)
	case p.Softening < 0 || !isFinite(p.Softening):
		return fmt.Errorf("softening=%v: %w", p.Softening, ErrParameterBounds)
	case p.Theta < 0 || !isFinite(p.Theta):
		return fmt.Errorf("theta=%v: %w", p.Theta, ErrParameterBounds)
	case p.Density <= 0 || !isFinite(p.Density):
		return fmt.Errorf("density=%v: %w", p.Density, ErrParameterBounds)
	case p.DefaultMass <= 0 || !isFinite(p.DefaultMass):
		return fmt.Errorf("default mass=%v: %w", p.DefaultMass, ErrParameterBounds)
	case p.MaxDepth < 1:
		return fmt.Errorf("max depth=%d: %w", p.MaxDepth, ErrParameterBounds)
	case p.MinCell < 0 || !isFinite(p.MinCell):
		return fmt.Errorf("min cell=%v: %w", p.MinCell, ErrParameterBounds)
	case p.MinExtent <= 0 || !isFinite(p.MinExtent):
		return fmt.Errorf("min extent=%v: %w", p.MinExtent, ErrParameterBounds)
	}
	return nil
}
