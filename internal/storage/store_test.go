package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mikeyj777/numerical-weather-prediction-school/internal/config"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/experiment"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/sim"
)

func runSmall(t *testing.T) *experiment.Result {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Grid = dynamo.Params{NX: 8, NY: 9, DX: 10000, DY: 10000}
	cfg.Steps = 4
	cfg.Seed = 42

	exp, err := experiment.New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	res := runSmall(t)
	runID, err := st.Save(res)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "analytic_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Seed != 42 || meta.Steps != 4 || meta.Integrator != "rk4" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Grid != res.Config.Grid {
		t.Errorf("grid = %+v, want %+v", meta.Grid, res.Config.Grid)
	}
	if _, ok := meta.Fields["pressure"]; !ok {
		t.Error("missing pressure summary")
	}

	h, err := st.LoadHistory(runID)
	if err != nil {
		t.Fatalf("load history failed: %v", err)
	}
	if h.Len() != 4 {
		t.Fatalf("expected 4 samples, got %d", h.Len())
	}
	for i := range h.Pressure {
		if h.Pressure[i] != res.History.Pressure[i] || h.Temperature[i] != res.History.Temperature[i] {
			t.Errorf("sample %d differs after round trip", i)
		}
	}

	state, p, err := st.LoadFields(runID)
	if err != nil {
		t.Fatalf("load fields failed: %v", err)
	}
	if p != res.Config.Grid {
		t.Errorf("fields grid = %+v", p)
	}
	if !state.Equal(res.Final.State) {
		t.Error("final state differs after round trip")
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.Save(runSmall(t)); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := os.Mkdir(filepath.Join(st.baseDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("List on missing dir = %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runID, err := st.Save(runSmall(t))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{metadataFile, historyFile, fieldsFile} {
		if _, err := os.Stat(filepath.Join(dir, runID, name)); err != nil {
			t.Errorf("%s not created: %v", name, err)
		}
	}
}

func TestMetadataDropsNonFinite(t *testing.T) {
	res := runSmall(t)
	res.Metrics["max_wind"] = math.Inf(1)
	res.Final.State.Pressure.Set(1, 1, math.NaN())

	meta := newMetadata("x", time.Now(), res)
	if _, ok := meta.Metrics["max_wind"]; ok {
		t.Error("infinite metric should be dropped")
	}
	if _, ok := meta.Metrics["mass_drift"]; !ok {
		t.Error("finite metric should be kept")
	}
	if _, ok := meta.Fields["pressure"]; ok {
		t.Error("non-finite pressure summary should be dropped")
	}
	if _, ok := meta.Fields["temperature"]; !ok {
		t.Error("finite temperature summary should be kept")
	}

	if _, err := New(t.TempDir()).Save(res); err != nil {
		t.Errorf("save with degenerate state failed: %v", err)
	}
}

func TestExportCSV(t *testing.T) {
	h := sim.History{
		Pressure:    []sim.HistorySample{{Step: 0, Value: 101325}, {Step: 1, Value: 101324.5}},
		Temperature: []sim.HistorySample{{Step: 0, Value: 288}, {Step: 1, Value: 287.25}},
	}

	var buf bytes.Buffer
	if err := ExportCSV(&buf, h); err != nil {
		t.Fatal(err)
	}
	want := "step,pressure,temperature\n0,101325,288\n1,101324.5,287.25\n"
	if buf.String() != want {
		t.Errorf("csv =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestExportJSON(t *testing.T) {
	h := sim.History{
		Pressure:    []sim.HistorySample{{Step: 0, Value: 1}},
		Temperature: []sim.HistorySample{{Step: 0, Value: 2}},
	}

	var buf bytes.Buffer
	if err := ExportJSON(&buf, RunMetadata{ID: "r1"}, h); err != nil {
		t.Fatal(err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Run.ID != "r1" || got.History.Temperature[0].Value != 2 {
		t.Errorf("unexpected export %+v", got)
	}
}
