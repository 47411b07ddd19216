package initial

import (
	"fmt"
	"sort"

	"github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"
)

// Settings carries the inputs an initializer may need. Unused fields are
// ignored; a zero Profile means DefaultProfile.
type Settings struct {
	Profile Profile
	Seed    int64
	Path    string
}

var constructors = map[string]func(Settings) (dynamo.Initializer, error){
	"analytic": func(s Settings) (dynamo.Initializer, error) {
		prof := s.Profile.orDefault()
		if err := prof.Validate(); err != nil {
			return nil, err
		}
		return &Analytic{Profile: prof}, nil
	},
	"randomized": func(s Settings) (dynamo.Initializer, error) {
		prof := s.Profile.orDefault()
		if err := prof.Validate(); err != nil {
			return nil, err
		}
		r := NewRandomized(s.Seed)
		r.Profile = prof
		return r, nil
	},
	"uniform": func(Settings) (dynamo.Initializer, error) {
		return NewUniform(), nil
	},
	"gradient": func(Settings) (dynamo.Initializer, error) {
		return NewGradient(), nil
	},
	"netcdf": func(s Settings) (dynamo.Initializer, error) {
		if s.Path == "" {
			return nil, fmt.Errorf("netcdf initializer needs a file path")
		}
		return NewNetCDF(s.Path), nil
	},
}

func New(name string, s Settings) (dynamo.Initializer, error) {
	fn, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("initializer %q (available: %v): %w", name, Names(), dynamo.ErrUnknownComponent)
	}
	return fn(s)
}

func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
