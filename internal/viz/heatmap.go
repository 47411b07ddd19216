package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"
)

const cellGlyph = "██"

// Heatmap renders f as colored blocks, one text row per grid row i and one
// two-column block per grid column j. Grids larger than maxRows × maxCols are
// sampled at evenly spaced cells.
func Heatmap(f *dynamo.Field, scale ColorScale, maxRows, maxCols int) string {
	nx, ny := f.Dims()
	rows, cols := min(nx, maxRows), min(ny, maxCols)
	if rows <= 0 || cols <= 0 {
		return ""
	}

	styles := make(map[string]lipgloss.Style)
	var b strings.Builder
	for r := 0; r < rows; r++ {
		i := r * nx / rows
		for c := 0; c < cols; c++ {
			j := c * ny / cols
			hex := scale.Color(f.At(i, j)).Clamped().Hex()
			st, ok := styles[hex]
			if !ok {
				st = lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
				styles[hex] = st
			}
			b.WriteString(st.Render(cellGlyph))
		}
		if r < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
