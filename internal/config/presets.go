package config

import (
	"sort"

	"github.com/san-kum/barneshut/internal/barneshut"
)

func unitEngine(softening, theta float64) EngineConfig {
	e := DefaultEngine()
	e.G = 1
	e.Softening = softening
	e.Theta = theta
	return e
}

var Presets = map[string]*Config{
	"galaxy": {
		Engine: unitEngine(0.5, 0.5), Dt: 0.01, Steps: 2000, SampleEvery: 20, Seed: 1,
		Layout: LayoutConfig{Name: "disc", Count: 2000, Width: 400, Height: 400, Mass: 1},
	},
	"ring": {
		Engine: unitEngine(1, 0.5), Dt: 0.05, Steps: 1000, SampleEvery: 10,
		Layout: LayoutConfig{Name: "circle", Count: 500, Width: 200, Height: 200, Mass: 1},
	},
	"grid": {
		Engine: unitEngine(1, 0.7), Dt: 0.05, Steps: 500, SampleEvery: 10,
		Layout: LayoutConfig{Name: "square", Count: 2500, Width: 100, Height: 100, Mass: 1},
	},
	"binary": {
		Engine: unitEngine(0.01, 0.5), Dt: 0.01, Steps: 5000, SampleEvery: 50,
		Layout: LayoutConfig{Name: "binary", Width: 20, Height: 20, Mass: 10},
	},
	"spiral": {
		Engine: unitEngine(1, 0.5), Dt: 0.05, Steps: 1000, SampleEvery: 10,
		Layout: LayoutConfig{Name: "spiral", Count: 750, Width: 400, Height: 400, Mass: 1},
	},
	// canvas-scale constants with the engine defaults
	"canvas": {
		Engine: FromParams(barneshut.DefaultParams()), Dt: 1e9, Steps: 600, SampleEvery: 60,
		Layout: LayoutConfig{Name: "ellipse", Count: 500, Width: 1280, Height: 720, Mass: 1},
	},
	// one period of the choreography
	"figure-eight": {
		Engine: unitEngine(0, 0), Integrator: "leapfrog", Dt: 0.001, Steps: 6326, SampleEvery: 100,
		Bodies: figureEight(),
	},
}

// figureEight is the three-body choreography of Chenciner and Montgomery.
func figureEight() []BodyConfig {
	x, y := 0.97000436, -0.24308753
	vx, vy := 0.93240737, 0.86473146
	return []BodyConfig{
		{X: x, Y: y, VX: vx / 2, VY: vy / 2, Mass: 1},
		{X: -x, Y: -y, VX: vx / 2, VY: vy / 2, Mass: 1},
		{X: 0, Y: 0, VX: -vx, VY: -vy, Mass: 1},
	}
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
