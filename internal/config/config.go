package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/barneshut/internal/barneshut"
	"github.com/san-kum/barneshut/internal/integrators"
	"github.com/san-kum/barneshut/internal/layout"
)

const (
	DefaultDt          = 0.01
	DefaultSteps       = 1000
	DefaultSampleEvery = 10
	DefaultLayout      = "disc"
	DefaultCount       = 1000
	DefaultExtent      = 200.0
)

type Config struct {
	Engine        EngineConfig `yaml:"engine" toml:"engine"`
	Integrator    string       `yaml:"integrator" toml:"integrator"`
	Dt            float64      `yaml:"dt" toml:"dt"`
	Steps         int          `yaml:"steps" toml:"steps"`
	SampleEvery   int          `yaml:"sample_every" toml:"sample_every"`
	Workers       int          `yaml:"workers" toml:"workers"`
	Seed          int64        `yaml:"seed" toml:"seed"`
	ValidateState bool         `yaml:"validate_state" toml:"validate_state"`
	Layout        LayoutConfig `yaml:"layout" toml:"layout"`
	Bodies        []BodyConfig `yaml:"bodies,omitempty" toml:"bodies,omitempty"`
}

// EngineConfig mirrors barneshut.Params.
type EngineConfig struct {
	G            float64 `yaml:"g" toml:"g"`
	Softening    float64 `yaml:"softening" toml:"softening"`
	Theta        float64 `yaml:"theta" toml:"theta"`
	Density      float64 `yaml:"density" toml:"density"`
	DefaultMass  float64 `yaml:"default_mass" toml:"default_mass"`
	MaxDepth     int     `yaml:"max_depth" toml:"max_depth"`
	MinCell      float64 `yaml:"min_cell" toml:"min_cell"`
	MinExtent    float64 `yaml:"min_extent" toml:"min_extent"`
	SquareBounds bool    `yaml:"square_bounds" toml:"square_bounds"`
}

type LayoutConfig struct {
	Name   string  `yaml:"name" toml:"name"`
	Count  int     `yaml:"count" toml:"count"`
	Width  float64 `yaml:"width" toml:"width"`
	Height float64 `yaml:"height" toml:"height"`
	Mass   float64 `yaml:"mass" toml:"mass"`
}

// BodyConfig is one explicitly placed body. A zero mass takes the engine's
// default mass.
type BodyConfig struct {
	X    float64 `yaml:"x" toml:"x"`
	Y    float64 `yaml:"y" toml:"y"`
	VX   float64 `yaml:"vx" toml:"vx"`
	VY   float64 `yaml:"vy" toml:"vy"`
	Mass float64 `yaml:"mass" toml:"mass"`
}

func DefaultEngine() EngineConfig {
	return FromParams(barneshut.DefaultParams())
}

// FromParams converts engine parameters to their file form.
func FromParams(p barneshut.Params) EngineConfig {
	return EngineConfig{
		G:            p.G,
		Softening:    p.Softening,
		Theta:        p.Theta,
		Density:      p.Density,
		DefaultMass:  p.DefaultMass,
		MaxDepth:     p.MaxDepth,
		MinCell:      p.MinCell,
		MinExtent:    p.MinExtent,
		SquareBounds: p.SquareBounds,
	}
}

// DefaultConfig is a unit-scale rotating disc.
func DefaultConfig() *Config {
	e := DefaultEngine()
	e.G = 1
	e.Softening = 0.5
	return &Config{
		Engine:      e,
		Integrator:  integrators.Default,
		Dt:          DefaultDt,
		Steps:       DefaultSteps,
		SampleEvery: DefaultSampleEvery,
		Seed:        1,
		Layout: LayoutConfig{
			Name:   DefaultLayout,
			Count:  DefaultCount,
			Width:  DefaultExtent,
			Height: DefaultExtent,
			Mass:   1,
		},
	}
}

// Load reads a YAML or TOML file, chosen by extension, over DefaultConfig.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	switch format(path) {
	case "toml":
		err = toml.Unmarshal(data, cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	switch format(path) {
	case "toml":
		data, err = toml.Marshal(cfg)
	default:
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("config: encode %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0644)
}

func format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml"
	default:
		return "yaml"
	}
}

// Params converts the engine section to barneshut.Params.
func (c *Config) Params() barneshut.Params {
	e := c.Engine
	return barneshut.Params{
		G:            e.G,
		Softening:    e.Softening,
		Theta:        e.Theta,
		Density:      e.Density,
		DefaultMass:  e.DefaultMass,
		MaxDepth:     e.MaxDepth,
		MinCell:      e.MinCell,
		MinExtent:    e.MinExtent,
		SquareBounds: e.SquareBounds,
	}
}

func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("config: engine: %w", err)
	}
	if _, err := integrators.Get(c.Integrator); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("config: dt must be positive, got %g: %w", c.Dt, barneshut.ErrParameterBounds)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("config: steps must be positive, got %d: %w", c.Steps, barneshut.ErrParameterBounds)
	}
	if c.SampleEvery < 0 {
		return fmt.Errorf("config: sample_every must not be negative: %w", barneshut.ErrParameterBounds)
	}
	if len(c.Bodies) == 0 {
		if _, err := layout.Get(c.Layout.Name); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}

// Populate appends the configured bodies to set. Explicit bodies take
// precedence over the layout.
func (c *Config) Populate(set *barneshut.Set) error {
	if len(c.Bodies) > 0 {
		for _, bc := range c.Bodies {
			b := set.Add(barneshut.Point{X: bc.X, Y: bc.Y}, bc.Mass)
			b.Velocity = barneshut.Vector{X: bc.VX, Y: bc.VY}
		}
		return nil
	}

	return layout.Generate(c.Layout.Name, set, layout.Options{
		Count:  c.Layout.Count,
		Width:  c.Layout.Width,
		Height: c.Layout.Height,
		Mass:   c.Layout.Mass,
		Seed:   c.Seed,
	})
}

// NewSet builds a body set from the configuration.
func (c *Config) NewSet() (*barneshut.Set, error) {
	set := barneshut.NewSet(c.Params())
	if err := c.Populate(set); err != nil {
		return nil, err
	}
	if set.Len() == 0 {
		return nil, fmt.Errorf("config: %w", barneshut.ErrNoBodies)
	}
	return set, nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Bodies = append([]BodyConfig(nil), c.Bodies...)
	return &cp
}
