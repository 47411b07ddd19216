// Package ncfile reads and writes simulation states as NetCDF files.
//
// A file holds one 2-D variable per field (pressure, temperature, wind_u,
// wind_v) over the dimensions x and y, plus global attributes dx and dy. On
// read, ERA5 short names (sp, msl, t2m, u10, v10) are accepted as fallbacks,
// 3-D (time, x, y) variables contribute their first time slice, and packed
// int16 values are unpacked with scale_factor and add_offset.
package ncfile

import (
	"fmt"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"
)

var aliases = map[dynamo.Variable][]string{
	dynamo.Pressure:    {"sp", "msl"},
	dynamo.Temperature: {"t2m"},
	dynamo.WindU:       {"u10"},
	dynamo.WindV:       {"v10"},
}

var units = map[dynamo.Variable]string{
	dynamo.Pressure:    "Pa",
	dynamo.Temperature: "K",
	dynamo.WindU:       "m s-1",
	dynamo.WindV:       "m s-1",
}

// Write stores s and its grid spacing in a classic NetCDF file at path.
func Write(path string, p dynamo.Params, s *dynamo.State) error {
	if err := s.CheckShape(p); err != nil {
		return err
	}
	cw, err := cdf.OpenWriter(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	global, err := util.NewOrderedMap(
		[]string{"dx", "dy"},
		map[string]interface{}{"dx": p.DX, "dy": p.DY})
	if err != nil {
		cw.Close()
		return err
	}
	if err := cw.AddGlobalAttrs(global); err != nil {
		cw.Close()
		return err
	}

	for _, v := range dynamo.Variables() {
		attrs, err := util.NewOrderedMap(
			[]string{"units"},
			map[string]interface{}{"units": units[v]})
		if err != nil {
			cw.Close()
			return err
		}
		err = cw.AddVar(v.String(), api.Variable{
			Values:     s.Field(v).Rows(),
			Dimensions: []string{"x", "y"},
			Attributes: attrs,
		})
		if err != nil {
			cw.Close()
			return fmt.Errorf("write %s: %w", v, err)
		}
	}
	return cw.Close()
}

// Read loads a state from path. The grid shape is taken from the pressure
// variable; spacing from the dx and dy global attributes when present.
func Read(path string) (*dynamo.State, dynamo.Params, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, dynamo.Params{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer nc.Close()

	s := &dynamo.State{}
	for _, v := range dynamo.Variables() {
		f, err := readField(nc, v)
		if err != nil {
			return nil, dynamo.Params{}, fmt.Errorf("%s: %w", path, err)
		}
		switch v {
		case dynamo.Pressure:
			s.Pressure = f
		case dynamo.Temperature:
			s.Temperature = f
		case dynamo.WindU:
			s.WindU = f
		case dynamo.WindV:
			s.WindV = f
		}
	}

	nx, ny := s.Pressure.Dims()
	global := nc.Attributes()
	p := dynamo.Params{NX: nx, NY: ny, DX: attrFloat(global, "dx", 0), DY: attrFloat(global, "dy", 0)}
	if err := s.CheckShape(p); err != nil {
		return nil, p, fmt.Errorf("%s: %w", path, err)
	}
	return s, p, nil
}

func readField(nc api.Group, v dynamo.Variable) (*dynamo.Field, error) {
	names := append([]string{v.String()}, aliases[v]...)

	var (
		vr  *api.Variable
		err error
	)
	for _, name := range names {
		vr, err = nc.GetVariable(name)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("variable %s not found (tried %v): %w", v, names, err)
	}

	rows, err := toRows(vr.Values, attrFloat(vr.Attributes, "scale_factor", 1), attrFloat(vr.Attributes, "add_offset", 0))
	if err != nil {
		return nil, fmt.Errorf("variable %s: %w", v, err)
	}
	return dynamo.FieldFrom(rows)
}

func toRows(values interface{}, scale, offset float64) ([][]float64, error) {
	switch vals := values.(type) {
	case [][]float64:
		return convert(vals, func(x float64) float64 { return x }), nil
	case [][]float32:
		return convert(vals, func(x float32) float64 { return float64(x) }), nil
	case [][]int16:
		return convert(vals, func(x int16) float64 { return float64(x)*scale + offset }), nil
	case [][][]float64:
		if len(vals) > 0 {
			return toRows(vals[0], scale, offset)
		}
	case [][][]float32:
		if len(vals) > 0 {
			return toRows(vals[0], scale, offset)
		}
	case [][][]int16:
		if len(vals) > 0 {
			return toRows(vals[0], scale, offset)
		}
	default:
		return nil, fmt.Errorf("unsupported value type %T", values)
	}
	return nil, fmt.Errorf("empty time dimension: %w", dynamo.ErrShapeMismatch)
}

func convert[T float64 | float32 | int16](in [][]T, fn func(T) float64) [][]float64 {
	out := make([][]float64, len(in))
	for i, row := range in {
		out[i] = make([]float64, len(row))
		for j, x := range row {
			out[i][j] = fn(x)
		}
	}
	return out
}

func attrFloat(attrs api.AttributeMap, key string, def float64) float64 {
	if attrs == nil {
		return def
	}
	raw, ok := attrs.Get(key)
	if !ok {
		return def
	}
	switch x := raw.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case []float64:
		if len(x) > 0 {
			return x[0]
		}
	case []float32:
		if len(x) > 0 {
			return float64(x[0])
		}
	}
	return def
}
