package metrics

import (
	"math"

	"github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// MassDrift tracks the largest relative change of the summed interior
// pressure from the initial state. Pressure stands in for density in the
// tendency equations, so this is the scheme's mass-conservation error.
//
// The reference is set by Baseline. Without one, the first observed state
// is used.
type MassDrift struct {
	name     string
	baseline float64
	hasBase  bool
	maxDrift float64
}

func NewMassDrift() *MassDrift {
	return &MassDrift{name: "mass_drift"}
}

func (m *MassDrift) Name() string { return m.name }

// Baseline sets the reference mass to that of s and clears the drift.
func (m *MassDrift) Baseline(s *dynamo.State) {
	m.baseline = InteriorSum(s.Pressure)
	m.hasBase = true
	m.maxDrift = 0
}

func (m *MassDrift) Observe(s *dynamo.State, step int) {
	mass := InteriorSum(s.Pressure)
	if !m.hasBase {
		m.baseline = mass
		m.hasBase = true
	}

	if m.baseline != 0 {
		drift := math.Abs(mass-m.baseline) / math.Abs(m.baseline)
		m.maxDrift = math.Max(m.maxDrift, drift)
	}
}

func (m *MassDrift) Value() float64 { return m.maxDrift }

func (m *MassDrift) Reset() {
	m.baseline = 0
	m.hasBase = false
	m.maxDrift = 0
}

// InteriorSum adds up every cell not on an edge row or column.
func InteriorSum(f *dynamo.Field) float64 {
	nx, ny := f.Dims()
	if nx < 3 || ny < 3 {
		return 0
	}
	sum := 0.0
	for i := 1; i < nx-1; i++ {
		sum += floats.Sum(f.Row(i)[1 : ny-1])
	}
	return sum
}
