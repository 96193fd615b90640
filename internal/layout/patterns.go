package layout

import (
	"math"
	"math/rand"
	"sort"

	"github.com/san-kum/barneshut/internal/barneshut"
)

// GoldenAngle is the per-body angular step of the spiral pattern.
const GoldenAngle = 1.618033988749894848

// Circle places Count bodies on a circle of diameter Height.
func Circle(set *barneshut.Set, o Options) {
	ring(set, o, o.Height/2, o.Height/2)
}

// Ellipse places Count bodies on the ellipse inscribed in the area.
func Ellipse(set *barneshut.Set, o Options) {
	ring(set, o, o.Width/2, o.Height/2)
}

func ring(set *barneshut.Set, o Options, rx, ry float64) {
	c := o.center()
	for i := 0; i < o.Count; i++ {
		theta := 2 * math.Pi * float64(i) / float64(o.Count)
		set.Add(barneshut.Point{X: c.X + math.Cos(theta)*rx, Y: c.Y + math.Sin(theta)*ry}, o.mass())
	}
}

// Square lays out a grid of side round(sqrt(Count)) with spacing Height/side.
func Square(set *barneshut.Set, o Options) {
	side := int(math.Round(math.Sqrt(float64(o.Count))))
	if side < 1 {
		return
	}
	c := o.center()
	step := o.Height / float64(side)
	half := side / 2
	for i := -half; i < side-half; i++ {
		for j := -half; j < side-half; j++ {
			set.Add(barneshut.Point{X: c.X + float64(i)*step, Y: c.Y + float64(j)*step}, o.mass())
		}
	}
}

// Spiral places body i at radius i/2, turning by GoldenAngle each time.
func Spiral(set *barneshut.Set, o Options) {
	c := o.center()
	theta := 0.0
	for i := 1; i <= o.Count; i++ {
		r := float64(i) / 2
		set.Add(barneshut.Point{X: c.X + math.Cos(theta)*r, Y: c.Y + math.Sin(theta)*r}, o.mass())
		theta += GoldenAngle
	}
}

// Random scatters bodies uniformly over the area using Seed.
func Random(set *barneshut.Set, o Options) {
	rng := rand.New(rand.NewSource(o.Seed))
	for i := 0; i < o.Count; i++ {
		set.Add(barneshut.Point{X: rng.Float64() * o.Width, Y: rng.Float64() * o.Height}, o.mass())
	}
}

// Binary places two bodies a quarter width either side of the centre with
// opposite velocities for a circular orbit under the set's softened law.
// Count is ignored.
func Binary(set *barneshut.Set, o Options) {
	p := set.Params()
	c := o.center()
	r := o.Width / 4
	m := o.mass()

	v := math.Sqrt(p.G * m * r / (4*r*r + p.Softening*p.Softening))
	a := set.Add(barneshut.Point{X: c.X - r, Y: c.Y}, m)
	b := set.Add(barneshut.Point{X: c.X + r, Y: c.Y}, m)
	a.Velocity = barneshut.Vector{Y: -v}
	b.Velocity = barneshut.Vector{Y: v}
}

// Disc places a core of mass Count*Mass at the centre and Count bodies
// scattered over a disc, each moving on the circular orbit set by the core
// and the disc mass inside its radius.
func Disc(set *barneshut.Set, o Options) {
	p := set.Params()
	rng := rand.New(rand.NewSource(o.Seed))
	c := o.center()
	m := o.mass()
	coreMass := float64(o.Count) * m
	radius := math.Min(o.Width, o.Height) / 2

	set.Add(c, coreMass)

	radii := make([]float64, o.Count)
	for i := range radii {
		// sqrt gives uniform density over the area
		radii[i] = radius * (0.05 + 0.95*math.Sqrt(rng.Float64()))
	}

	sort.Float64s(radii)

	eps2 := p.Softening * p.Softening
	for i, r := range radii {
		enclosed := coreMass + float64(i)*m
		v := math.Sqrt(p.G * enclosed * r / (r*r + eps2))

		theta := rng.Float64() * 2 * math.Pi
		cos, sin := math.Cos(theta), math.Sin(theta)
		b := set.Add(barneshut.Point{X: c.X + cos*r, Y: c.Y + sin*r}, m)
		b.Velocity = barneshut.Vector{X: -sin * v, Y: cos * v}
	}
}
