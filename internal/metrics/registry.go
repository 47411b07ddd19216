package metrics

import (
	"fmt"
	"sort"

	"github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"
)

// Metric accumulates a scalar over the steps of a run.
type Metric interface {
	Name() string
	Observe(s *dynamo.State, step int)
	Value() float64
	Reset()
}

// Baseliner is a Metric measured against the state a run starts from. The
// controller calls Baseline when the metric is added and after every reset.
type Baseliner interface {
	Baseline(s *dynamo.State)
}

var constructors = map[string]func() Metric{
	"mass_drift":       func() Metric { return NewMassDrift() },
	"max_wind":         func() Metric { return NewMaxWind() },
	"mean_temperature": func() Metric { return NewMeanTemperature() },
}

func New(name string) (Metric, error) {
	fn, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("metric %q (available: %v): %w", name, Names(), dynamo.ErrUnknownComponent)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
