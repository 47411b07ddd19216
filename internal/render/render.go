// Package render draws fields and probe histories to PNG with gonum/plot.
package render

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/sim"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Options sets the image size in inches and its resolution.
type Options struct {
	Width  float64
	Height float64
	DPI    int
}

func DefaultOptions() Options {
	return Options{Width: 8, Height: 6.5, DPI: 300}
}

// fieldGrid exposes a field as plotter.GridXYZ with axes in kilometres.
// Columns run along i (x), rows along j (y).
type fieldGrid struct {
	f      *dynamo.Field
	dx, dy float64
}

func (g fieldGrid) Dims() (c, r int)   { return g.f.Dims() }
func (g fieldGrid) Z(c, r int) float64 { return g.f.At(c, r) }
func (g fieldGrid) X(c int) float64    { return float64(c) * g.dx / 1000 }
func (g fieldGrid) Y(r int) float64    { return float64(r) * g.dy / 1000 }

// Heatmap plots one field of s.
func Heatmap(w io.Writer, s *dynamo.State, grid dynamo.Params, v dynamo.Variable, opts Options) error {
	f := s.Field(v)
	if f == nil {
		return fmt.Errorf("render %s: %w", v, dynamo.ErrUnknownComponent)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (%s)", v, unit(v))
	p.X.Label.Text = "x (km)"
	p.Y.Label.Text = "y (km)"
	stylePlot(p)

	hm := plotter.NewHeatMap(fieldGrid{f: f, dx: grid.DX, dy: grid.DY}, moreland.Kindlmann().Palette(255))
	if !(hm.Max > hm.Min) {
		// Constant or fully degenerate fields still need a non-empty range.
		if math.IsNaN(hm.Min) || math.IsInf(hm.Min, 0) {
			hm.Min = 0
		}
		hm.Max = hm.Min + 1
	}
	p.Add(hm)

	return writePNG(w, p, opts)
}

// History plots a probe series against simulated time.
func History(w io.Writer, samples []sim.HistorySample, v dynamo.Variable, timeStep float64, opts Options) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s at probe", v)
	p.X.Label.Text = "time (h)"
	p.Y.Label.Text = fmt.Sprintf("%s (%s)", v, unit(v))
	stylePlot(p)

	pts := make(plotter.XYs, len(samples))
	for i, s := range samples {
		pts[i].X = float64(s.Step+1) * timeStep / 3600
		pts[i].Y = s.Value
	}

	if len(pts) > 0 {
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("history line: %w", err)
		}
		line.LineStyle.Width = vg.Points(3.0)
		p.Add(line)
	}

	return writePNG(w, p, opts)
}

// SaveHeatmap writes Heatmap output to path, creating parent directories.
func SaveHeatmap(path string, s *dynamo.State, grid dynamo.Params, v dynamo.Variable, opts Options) error {
	return saveFile(path, func(w io.Writer) error { return Heatmap(w, s, grid, v, opts) })
}

// SaveHistory writes History output to path, creating parent directories.
func SaveHistory(path string, samples []sim.HistorySample, v dynamo.Variable, timeStep float64, opts Options) error {
	return saveFile(path, func(w io.Writer) error { return History(w, samples, v, timeStep, opts) })
}

func saveFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := fn(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}

func writePNG(w io.Writer, p *plot.Plot, opts Options) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		def := DefaultOptions()
		opts.Width, opts.Height = def.Width, def.Height
	}
	if opts.DPI <= 0 {
		opts.DPI = DefaultOptions().DPI
	}

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(opts.Width)*vg.Inch, vg.Length(opts.Height)*vg.Inch),
		vgimg.UseDPI(opts.DPI),
	)
	p.Draw(draw.New(c))

	png := vgimg.PngCanvas{Canvas: c}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return nil
}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(18)
	p.Title.Padding = vg.Points(10)
	p.X.Label.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.TextStyle.Font.Size = vg.Points(14)
	p.X.Padding = vg.Points(10)
	p.Y.Padding = vg.Points(10)
	p.X.Tick.Label.Font.Size = vg.Points(11)
	p.Y.Tick.Label.Font.Size = vg.Points(11)
}

func unit(v dynamo.Variable) string {
	switch v {
	case dynamo.Pressure:
		return "Pa"
	case dynamo.Temperature:
		return "K"
	}
	return "m/s"
}
