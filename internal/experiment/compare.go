package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mikeyj777/numerical-weather-prediction-school/internal/config"
)

// Compare runs cfg once per integrator name, in order. A zero seed is fixed
// to one clock value first so every run starts from the same initial state.
func Compare(ctx context.Context, cfg *config.Config, names []string, log *slog.Logger) ([]*Result, error) {
	base := cfg.Clone()
	if base.Seed == 0 {
		base.Seed = time.Now().UnixNano()
	}

	results := make([]*Result, 0, len(names))
	for _, name := range names {
		run := base.Clone()
		run.Integrator = name

		exp, err := New(run, log)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// MaxAbsDiff is the largest absolute cell difference between the final
// states of a and b over all fields.
func MaxAbsDiff(a, b *Result) float64 {
	af, bf := a.Final.State.Fields(), b.Final.State.Fields()
	d := 0.0
	for k := range af {
		x, y := af[k].Data(), bf[k].Data()
		for i := range x {
			d = max(d, abs(x[i]-y[i]))
		}
	}
	return d
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
