package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/mikeyj777/numerical-weather-prediction-school/internal/sim"
)

type ExportData struct {
	Run     RunMetadata `json:"run"`
	History sim.History `json:"history"`
}

// ExportJSON writes a run's metadata and probe history as indented JSON.
func ExportJSON(w io.Writer, meta RunMetadata, h sim.History) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: meta, History: h})
}

// ExportCSV writes the probe history as step,pressure,temperature rows.
func ExportCSV(w io.Writer, h sim.History) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"step", "pressure", "temperature"}); err != nil {
		return err
	}
	for i, p := range h.Pressure {
		row := []string{
			strconv.Itoa(p.Step),
			strconv.FormatFloat(p.Value, 'g', -1, 64),
			strconv.FormatFloat(h.Temperature[i].Value, 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
