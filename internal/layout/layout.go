package layout

import (
	"fmt"
	"sort"

	"github.com/san-kum/barneshut/internal/barneshut"
)

// Options sizes a generated pattern. Patterns are laid out in the rectangle
// [0, Width] x [0, Height] around its centre.
type Options struct {
	Count  int
	Width  float64
	Height float64
	// Mass of each generated body. Zero selects 1.
	Mass float64
	Seed int64
}

// Generator appends a pattern to set.
type Generator func(set *barneshut.Set, o Options)

type entry struct {
	gen          Generator
	defaultCount int
	about        string
}

var registry = map[string]entry{
	"circle":  {Circle, 500, "bodies evenly spaced on a circle"},
	"ellipse": {Ellipse, 500, "bodies evenly spaced on an ellipse spanning the area"},
	"square":  {Square, 2500, "a square grid of bodies"},
	"spiral":  {Spiral, 750, "golden-angle spiral"},
	"random":  {Random, 1000, "uniformly scattered bodies"},
	"binary":  {Binary, 2, "two equal masses on a circular orbit"},
	"disc":    {Disc, 1000, "rotating disc around a heavy core"},
}

// Get returns the named generator.
func Get(name string) (Generator, error) {
	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("layout: unknown pattern %q", name)
	}
	return e.gen, nil
}

// Generate appends the named pattern to set, filling in the pattern's default
// count when o.Count is zero.
func Generate(name string, set *barneshut.Set, o Options) error {
	e, ok := registry[name]
	if !ok {
		return fmt.Errorf("layout: unknown pattern %q", name)
	}
	if o.Count <= 0 {
		o.Count = e.defaultCount
	}
	e.gen(set, o)
	return nil
}

// Describe returns a one-line summary of the named pattern.
func Describe(name string) string { return registry[name].about }

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (o Options) center() barneshut.Point {
	return barneshut.Point{X: o.Width / 2, Y: o.Height / 2}
}

func (o Options) mass() float64 {
	if o.Mass <= 0 {
		return 1
	}
	return o.Mass
}
