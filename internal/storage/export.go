package storage

import (
	"encoding/json"
	"io"
	"math"

	"github.com/san-kum/barneshut/internal/sim"
)

type ExportData struct {
	Run     RunMetadata    `json:"run"`
	Samples []ExportSample `json:"samples"`
}

type ExportSample struct {
	Step       int      `json:"step"`
	Time       float64  `json:"time"`
	Energy     Float    `json:"energy"`
	Momentum   [2]Float `json:"momentum"`
	Nodes      int      `json:"nodes"`
	Depth      int      `json:"depth"`
	StepMillis float64  `json:"step_ms"`
}

// Float encodes NaN and infinities as null.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// ExportJSON writes a stored run and its samples as indented JSON.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}
	return WriteJSON(w, *meta, samples)
}

func WriteJSON(w io.Writer, meta RunMetadata, samples []sim.Sample) error {
	data := ExportData{
		Run:     meta,
		Samples: make([]ExportSample, len(samples)),
	}
	for i, smp := range samples {
		data.Samples[i] = ExportSample{
			Step:       smp.Step,
			Time:       smp.Time,
			Energy:     Float(smp.Energy),
			Momentum:   [2]Float{Float(smp.Momentum.X), Float(smp.Momentum.Y)},
			Nodes:      smp.Nodes,
			Depth:      smp.Depth,
			StepMillis: float64(smp.StepDuration.Microseconds()) / 1000,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
