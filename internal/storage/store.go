package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/barneshut/internal/sim"
)

// ErrNotFound is returned for an unknown run id.
var ErrNotFound = errors.New("storage: run not found")

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

// Store keeps one directory per run under baseDir. Only diagnostics are
// written; body state is not.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Bodies      int                `json:"bodies"`
	Integrator  string             `json:"integrator,omitempty"`
	Dt          float64            `json:"dt"`
	Steps       int                `json:"steps"`
	StepsTaken  int                `json:"steps_taken"`
	Theta       float64            `json:"theta"`
	G           float64            `json:"g"`
	Softening   float64            `json:"softening"`
	Workers     int                `json:"workers"`
	ElapsedMS   float64            `json:"elapsed_ms"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
	// Diverged is set when a diagnostic was not finite. Such values are
	// stored as zero in the metadata.
	Diverged bool `json:"diverged,omitempty"`
}

// Save writes meta and samples to a new run directory and returns its id.
// An empty meta.ID is generated from the name and the current time.
func (s *Store) Save(meta RunMetadata, samples []sim.Sample) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.ID == "" {
		name := meta.Name
		if name == "" {
			name = "run"
		}
		meta.ID = fmt.Sprintf("%s_%d", name, meta.Timestamp.UnixNano())
	}

	meta.sanitize()

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", fmt.Errorf("storage: write metadata: %w", err)
	}
	if err := writeSamples(filepath.Join(runDir, samplesFile), samples); err != nil {
		return "", fmt.Errorf("storage: write samples: %w", err)
	}
	return meta.ID, nil
}

// SaveResult records a finished run.
func (s *Store) SaveResult(meta RunMetadata, result *sim.Result) (string, error) {
	meta.StepsTaken = result.StepsTaken
	meta.Theta = result.Theta
	meta.ElapsedMS = float64(result.Elapsed.Microseconds()) / 1000
	meta.EnergyDrift = result.EnergyDrift
	meta.Metrics = result.Metrics
	return s.Save(meta, result.Samples)
}

func (m *RunMetadata) sanitize() {
	clean := func(v float64) float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			m.Diverged = true
			return 0
		}
		return v
	}
	m.EnergyDrift = clean(m.EnergyDrift)
	if m.Metrics == nil {
		return
	}
	metrics := make(map[string]float64, len(m.Metrics))
	for k, v := range m.Metrics {
		metrics[k] = clean(v)
	}
	m.Metrics = metrics
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var sampleHeader = []string{"step", "time", "energy", "momentum_x", "momentum_y", "nodes", "depth", "step_ns"}

func writeSamples(path string, samples []sim.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(sampleHeader); err != nil {
		return err
	}
	for _, smp := range samples {
		row := []string{
			strconv.Itoa(smp.Step),
			formatFloat(smp.Time),
			formatFloat(smp.Energy),
			formatFloat(smp.Momentum.X),
			formatFloat(smp.Momentum.Y),
			strconv.Itoa(smp.Nodes),
			strconv.Itoa(smp.Depth),
			strconv.FormatInt(smp.StepDuration.Nanoseconds(), 10),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: decode %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadSamples reads the diagnostic series of a run. Malformed rows are
// skipped.
func (s *Store) LoadSamples(runID string) ([]sim.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	samples := make([]sim.Sample, 0, len(records))
	for i, record := range records {
		if i == 0 || len(record) < len(sampleHeader) {
			continue
		}
		smp, err := parseSample(record)
		if err != nil {
			continue
		}
		samples = append(samples, smp)
	}
	return samples, nil
}

func parseSample(record []string) (sim.Sample, error) {
	var (
		smp  sim.Sample
		errs []error
	)
	parseInt := func(s string) int {
		v, err := strconv.Atoi(s)
		errs = append(errs, err)
		return v
	}
	parseFloat := func(s string) float64 {
		v, err := strconv.ParseFloat(s, 64)
		errs = append(errs, err)
		return v
	}

	smp.Step = parseInt(record[0])
	smp.Time = parseFloat(record[1])
	smp.Energy = parseFloat(record[2])
	smp.Momentum.X = parseFloat(record[3])
	smp.Momentum.Y = parseFloat(record[4])
	smp.Nodes = parseInt(record[5])
	smp.Depth = parseInt(record[6])
	smp.StepDuration = time.Duration(parseInt(record[7]))
	return smp, errors.Join(errs...)
}
