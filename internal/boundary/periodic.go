// Package boundary rewrites the edge rows and columns of a state after a step
// so that the grid approximates a periodic domain.
package boundary

import (
	"fmt"

	"github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"
)

// Mode selects which interior cells are copied onto the edges.
type Mode int

const (
	// Ghost copies the second-to-last interior line onto the first edge and
	// the first interior line onto the last edge:
	//
	//	f[i][0] = f[i][ny-2]    f[i][ny-1] = f[i][1]
	//	f[0][j] = f[nx-2][j]    f[nx-1][j] = f[1][j]
	//
	// Edge cells act as one-cell ghost overlap.
	Ghost Mode = iota

	// Wrap makes the last line a duplicate of the first:
	//
	//	f[i][ny-1] = f[i][0]    f[nx-1][j] = f[0][j]
	Wrap
)

func (m Mode) String() string {
	switch m {
	case Ghost:
		return "ghost"
	case Wrap:
		return "wrap"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Periodic applies a Mode to every field of a state.
type Periodic struct {
	Mode Mode
}

func NewPeriodic(mode Mode) *Periodic {
	return &Periodic{Mode: mode}
}

func (p *Periodic) Apply(s *dynamo.State) {
	for _, f := range s.Fields() {
		p.ApplyField(f)
	}
}

// ApplyField rewrites the edges of one field. Rows are handled before
// columns, so corner cells take their value from the column pass.
func (p *Periodic) ApplyField(f *dynamo.Field) {
	nx, ny := f.Dims()
	if nx < 2 || ny < 2 {
		return
	}

	switch p.Mode {
	case Ghost:
		for i := 0; i < nx; i++ {
			f.Set(i, 0, f.At(i, ny-2))
			f.Set(i, ny-1, f.At(i, 1))
		}
		for j := 0; j < ny; j++ {
			f.Set(0, j, f.At(nx-2, j))
			f.Set(nx-1, j, f.At(1, j))
		}
	case Wrap:
		for i := 0; i < nx; i++ {
			f.Set(i, ny-1, f.At(i, 0))
		}
		for j := 0; j < ny; j++ {
			f.Set(nx-1, j, f.At(0, j))
		}
	}
}

// None leaves the edges as the integrator produced them.
type None struct{}

func (None) Apply(*dynamo.State) {}

// New returns the enforcer registered under name: "ghost", "wrap" or "none".
func New(name string) (dynamo.Enforcer, error) {
	switch name {
	case "ghost", "":
		return NewPeriodic(Ghost), nil
	case "wrap":
		return NewPeriodic(Wrap), nil
	case "none":
		return None{}, nil
	}
	return nil, fmt.Errorf("boundary %q (available: ghost, wrap, none): %w", name, dynamo.ErrUnknownComponent)
}
