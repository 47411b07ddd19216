package viz

import (
	"math"
	"strings"

	"github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"
)

// Braille cells hold 2×4 dots:
//
//	1 4
//	2 5
//	3 6
//	7 8
var dotBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Braille is a dot canvas of Width×Height characters, addressable at
// 2×Width by 4×Height dots.
type Braille struct {
	Width, Height int
	cells         [][]rune
}

func NewBraille(w, h int) *Braille {
	b := &Braille{Width: w, Height: h, cells: make([][]rune, h)}
	for r := range b.cells {
		b.cells[r] = make([]rune, w)
	}
	b.Clear()
	return b
}

func (b *Braille) Clear() {
	for _, row := range b.cells {
		for c := range row {
			row[c] = brailleBlank
		}
	}
}

// Set turns on the dot at (x, y). Dots off the canvas are ignored.
func (b *Braille) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= b.Width || row >= b.Height {
		return
	}
	b.cells[row][col] |= dotBits[y%4][x%2]
}

// Line draws from (x0, y0) to (x1, y1) with Bresenham's algorithm.
func (b *Braille) Line(x0, y0, x1, y1 int) {
	dx, dy := abs(x1-x0), abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx - dy

	for {
		b.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 > -dy {
			e -= dy
			x0 += sx
		}
		if e2 < dx {
			e += dx
			y0 += sy
		}
	}
}

func (b *Braille) String() string {
	var s strings.Builder
	for r, row := range b.cells {
		s.WriteString(string(row))
		if r < len(b.cells)-1 {
			s.WriteByte('\n')
		}
	}
	return s.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// WindVectors draws one wind arrow shaft per sampled cell on a w×h character
// canvas, rows along i and columns along j like Heatmap. Lengths are scaled
// so the fastest sampled wind spans one sampling cell; windU points right
// and windV points down.
func WindVectors(s *dynamo.State, w, h int) string {
	b := NewBraille(w, h)
	nx, ny := s.Dims()
	dotsX, dotsY := 2*w, 4*h

	const spacing = 8
	rows, cols := max(1, dotsY/spacing), max(1, dotsX/spacing)

	peak := 0.0
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i, j := r*nx/rows, c*ny/cols
			peak = math.Max(peak, math.Hypot(s.WindU.At(i, j), s.WindV.At(i, j)))
		}
	}
	if peak == 0 || math.IsNaN(peak) || math.IsInf(peak, 0) {
		return b.String()
	}

	reach := float64(spacing/2 - 1)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i, j := r*nx/rows, c*ny/cols
			x0, y0 := c*spacing+spacing/2, r*spacing+spacing/2
			u, v := s.WindU.At(i, j)/peak, s.WindV.At(i, j)/peak
			b.Set(x0, y0)
			b.Line(x0, y0, x0+int(math.Round(u*reach)), y0+int(math.Round(v*reach)))
		}
	}
	return b.String()
}
