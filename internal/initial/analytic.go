// Package initial produces the starting state of a run.
//
// Every initializer implements [dynamo.Initializer]. Analytic, Uniform and
// Gradient are deterministic. Randomized scales each term by a uniform random
// factor and is only reproducible when given the same seeded source.
package initial

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"
)

// Profile holds the amplitudes of the closed-form initial fields:
//
//	pressure[i][j]    = P0 + sin(i/10)·cos(j/20)·Ap
//	temperature[i][j] = T0 − (i/nx)·DeltaT
//	windU[i][j]       = sin(j/20)·Au
//	windV[i][j]       = cos(i/20)·Au
type Profile struct {
	P0     float64 `yaml:"p0" json:"p0"`
	Ap     float64 `yaml:"ap" json:"ap"`
	T0     float64 `yaml:"t0" json:"t0"`
	DeltaT float64 `yaml:"delta_t" json:"delta_t"`
	Au     float64 `yaml:"au" json:"au"`
}

// DefaultProfile is a sea-level standard atmosphere with a 10 K meridional
// temperature drop and 5 m/s winds.
func DefaultProfile() Profile {
	return Profile{P0: 101325, Ap: 1000, T0: 288, DeltaT: 10, Au: 5}
}

// Validate rejects a profile whose pressure field can reach zero. The
// perturbation is bounded by |Ap|, so P0 - |Ap| must be positive.
func (p Profile) Validate() error {
	if low := p.P0 - math.Abs(p.Ap); !(low > 0) {
		return fmt.Errorf("profile p0=%g ap=%g gives minimum pressure %g: %w", p.P0, p.Ap, low, dynamo.ErrNonPositivePressure)
	}
	return nil
}

// orDefault replaces an unset profile with DefaultProfile.
func (p Profile) orDefault() Profile {
	if p == (Profile{}) {
		return DefaultProfile()
	}
	return p
}

// Analytic fills the fields from Profile with no randomness. A zero Profile
// means DefaultProfile.
type Analytic struct {
	Profile Profile
}

func NewAnalytic() *Analytic {
	return &Analytic{Profile: DefaultProfile()}
}

func (a *Analytic) Initialize(p dynamo.Params) (*dynamo.State, error) {
	return fill(p, a.Profile, func() float64 { return 1 })
}

// Randomized multiplies each perturbation term by an independent factor
// drawn from [0, 1).
type Randomized struct {
	Profile Profile
	rng     *rand.Rand
}

// NewRandomized seeds its source with seed, or with the clock when seed is 0.
func NewRandomized(seed int64) *Randomized {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Randomized{Profile: DefaultProfile(), rng: rand.New(rand.NewSource(seed))}
}

func (r *Randomized) Initialize(p dynamo.Params) (*dynamo.State, error) {
	return fill(p, r.Profile, r.rng.Float64)
}

func fill(p dynamo.Params, prof Profile, factor func() float64) (*dynamo.State, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	prof = prof.orDefault()
	if err := prof.Validate(); err != nil {
		return nil, err
	}
	s := dynamo.NewStateFor(p)
	nx := float64(p.NX)

	s.Pressure.Apply(func(i, j int) float64 {
		return prof.P0 + math.Sin(float64(i)/10)*math.Cos(float64(j)/20)*prof.Ap*factor()
	})
	s.Temperature.Apply(func(i, j int) float64 {
		return prof.T0 - float64(i)/nx*prof.DeltaT*factor()
	})
	s.WindU.Apply(func(i, j int) float64 {
		return math.Sin(float64(j)/20) * prof.Au * factor()
	})
	s.WindV.Apply(func(i, j int) float64 {
		return math.Cos(float64(i)/20) * prof.Au * factor()
	})
	return s, nil
}
