package viz

import (
	"math"

	"github.com/san-kum/barneshut/internal/barneshut"
)

// Viewport maps world coordinates onto canvas dots. World y grows upward;
// canvas y grows downward.
type Viewport struct {
	Center barneshut.Point
	// Scale is dots per world unit.
	Scale float64
	// canvas size in dots
	w, h int
}

// NewViewport fits q into a w x h dot canvas with a small margin.
func NewViewport(q barneshut.Quadrant, w, h int) Viewport {
	v := Viewport{Center: q.Center, Scale: 1, w: w, h: h}
	if q.Width > 0 && q.Height > 0 {
		v.Scale = 0.9 * math.Min(float64(w)/q.Width, float64(h)/q.Height)
	}
	return v
}

// Project returns the dot coordinates of p.
func (v Viewport) Project(p barneshut.Point) (int, int) {
	x := float64(v.w)/2 + (p.X-v.Center.X)*v.Scale
	y := float64(v.h)/2 - (p.Y-v.Center.Y)*v.Scale
	return int(math.Round(x)), int(math.Round(y))
}

// Visible returns the world rectangle covered by the canvas.
func (v Viewport) Visible() barneshut.Quadrant {
	return barneshut.Quadrant{Center: v.Center, Width: float64(v.w) / v.Scale, Height: float64(v.h) / v.Scale}
}

func (v Viewport) Zoom(factor float64) Viewport {
	v.Scale *= factor
	return v
}
