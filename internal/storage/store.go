// Package storage exports finished runs to disk.
//
// Each run gets a directory under the store's base directory holding
// metadata.json, history.csv (the probe series) and fields.nc (the final
// state). Runs are write-once; nothing is resumed from them.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/experiment"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/metrics"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/ncfile"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/sim"
)

const (
	metadataFile = "metadata.json"
	historyFile  = "history.csv"
	fieldsFile   = "fields.nc"
)

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
	ID            string                     `json:"id"`
	Timestamp     time.Time                  `json:"timestamp"`
	Grid          dynamo.Params              `json:"grid"`
	Initializer   string                     `json:"initializer"`
	Integrator    string                     `json:"integrator"`
	Boundary      string                     `json:"boundary"`
	StageBoundary bool                       `json:"stage_boundary"`
	Seed          int64                      `json:"seed"`
	TimeStep      float64                    `json:"time_step"`
	Steps         int                        `json:"steps"`
	Elapsed       float64                    `json:"elapsed"`
	Probe         dynamo.Cell                `json:"probe"`
	Metrics       map[string]float64         `json:"metrics"`
	Fields        map[string]metrics.Summary `json:"fields"`
	Fault         string                     `json:"fault,omitempty"`
}

// Save writes res to a new run directory and returns its ID.
func (s *Store) Save(res *experiment.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", res.Config.Initializer, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := newMetadata(runID, now, res)
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeHistory(filepath.Join(runDir, historyFile), res.History); err != nil {
		return "", err
	}
	if err := ncfile.Write(filepath.Join(runDir, fieldsFile), res.Final.Grid, res.Final.State); err != nil {
		return "", err
	}
	return runID, nil
}

func newMetadata(id string, ts time.Time, res *experiment.Result) RunMetadata {
	cfg := res.Config
	meta := RunMetadata{
		ID:            id,
		Timestamp:     ts,
		Grid:          cfg.Grid,
		Initializer:   cfg.Initializer,
		Integrator:    cfg.Integrator,
		Boundary:      cfg.Boundary,
		StageBoundary: cfg.StageBoundary,
		Seed:          cfg.Seed,
		TimeStep:      res.Final.TimeStep,
		Steps:         res.Steps,
		Elapsed:       res.Elapsed,
		Probe:         res.Final.Probe,
		Metrics:       make(map[string]float64),
		Fields:        make(map[string]metrics.Summary),
	}

	// JSON has no NaN or Inf; degenerate values are left out.
	for name, v := range res.Metrics {
		if finite(v) {
			meta.Metrics[name] = v
		}
	}
	for _, v := range dynamo.Variables() {
		sum := metrics.Describe(res.Final.State.Field(v))
		if finite(sum.Mean) && finite(sum.StdDev) && finite(sum.Min) && finite(sum.Max) {
			meta.Fields[v.String()] = sum
		}
	}
	if res.Fault != nil {
		meta.Fault = res.Fault.Error()
	}
	return meta
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

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

func writeHistory(path string, h sim.History) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := ExportCSV(f, h); err != nil {
		return err
	}
	return f.Close()
}

// List returns the metadata of every run, newest first. Directories without
// readable metadata are skipped.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadHistory(runID string) (sim.History, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, historyFile))
	if err != nil {
		return sim.History{}, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return sim.History{}, fmt.Errorf("run %s: %w", runID, err)
	}

	var h sim.History
	for i, record := range records {
		if i == 0 {
			continue
		}
		if len(record) != 3 {
			return sim.History{}, fmt.Errorf("run %s: history line %d has %d columns", runID, i+1, len(record))
		}
		step, err := strconv.Atoi(record[0])
		if err != nil {
			return sim.History{}, fmt.Errorf("run %s: history line %d: %w", runID, i+1, err)
		}
		p, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return sim.History{}, fmt.Errorf("run %s: history line %d: %w", runID, i+1, err)
		}
		t, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return sim.History{}, fmt.Errorf("run %s: history line %d: %w", runID, i+1, err)
		}
		h.Pressure = append(h.Pressure, sim.HistorySample{Step: step, Value: p})
		h.Temperature = append(h.Temperature, sim.HistorySample{Step: step, Value: t})
	}
	return h, nil
}

// LoadFields reads the final state of a run.
func (s *Store) LoadFields(runID string) (*dynamo.State, dynamo.Params, error) {
	return ncfile.Read(filepath.Join(s.baseDir, runID, fieldsFile))
}
