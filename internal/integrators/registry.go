package integrators

import (
	"fmt"
	"sort"

	"github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"
)

var constructors = map[string]func(stage dynamo.Enforcer) dynamo.Integrator{
	"rk4": func(stage dynamo.Enforcer) dynamo.Integrator {
		return &RK4{Stage: stage}
	},
	"euler": func(dynamo.Enforcer) dynamo.Integrator { return NewEuler() },
}

// New returns the integrator registered under name. stage is only used by
// schemes with intermediate stages and may be nil.
func New(name string, stage dynamo.Enforcer) (dynamo.Integrator, error) {
	fn, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("integrator %q (available: %v): %w", name, Names(), dynamo.ErrUnknownComponent)
	}
	return fn(stage), nil
}

func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
