package initial

import (
	"fmt"

	"github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/ncfile"
)

// NetCDF loads the initial fields from a NetCDF file whose shape must match
// the configured grid. The grid spacing of the run is not taken from the file.
type NetCDF struct {
	Path string
}

func NewNetCDF(path string) *NetCDF {
	return &NetCDF{Path: path}
}

func (n *NetCDF) Initialize(p dynamo.Params) (*dynamo.State, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s, _, err := ncfile.Read(n.Path)
	if err != nil {
		return nil, err
	}
	if err := s.CheckShape(p); err != nil {
		return nil, fmt.Errorf("%s: %w", n.Path, err)
	}
	return s, nil
}
