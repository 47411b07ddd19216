package dynamo

import "fmt"

// Params is the immutable grid geometry: cell counts and spacing in metres.
type Params struct {
	NX int     `json:"nx" yaml:"nx"`
	NY int     `json:"ny" yaml:"ny"`
	DX float64 `json:"dx" yaml:"dx"`
	DY float64 `json:"dy" yaml:"dy"`
}

// DefaultParams is the 100 × 100 grid at 10 km spacing.
func DefaultParams() Params {
	return Params{NX: 100, NY: 100, DX: 10000, DY: 10000}
}

// Validate checks the grid can carry central differences and the periodic copy.
func (p Params) Validate() error {
	if p.NX < 3 || p.NY < 3 {
		return fmt.Errorf("grid %dx%d smaller than 3x3: %w", p.NX, p.NY, ErrInvalidGrid)
	}
	if p.DX <= 0 || p.DY <= 0 {
		return fmt.Errorf("spacing dx=%g dy=%g must be positive: %w", p.DX, p.DY, ErrInvalidGrid)
	}
	return nil
}

// Contains reports whether c is a cell of the grid.
func (p Params) Contains(c Cell) bool {
	return c.I >= 0 && c.I < p.NX && c.J >= 0 && c.J < p.NY
}

// Center returns the middle cell.
func (p Params) Center() Cell { return Cell{I: p.NX / 2, J: p.NY / 2} }

// Cell is a grid index pair.
type Cell struct {
	I int `json:"i" yaml:"i"`
	J int `json:"j" yaml:"j"`
}

func (c Cell) String() string { return fmt.Sprintf("(%d,%d)", c.I, c.J) }

// Variable names the four prognostic fields.
type Variable int

const (
	Pressure Variable = iota
	Temperature
	WindU
	WindV
	NumVariables
)

var variableNames = [NumVariables]string{"pressure", "temperature", "wind_u", "wind_v"}

func (v Variable) String() string {
	if v < 0 || v >= NumVariables {
		return fmt.Sprintf("variable(%d)", int(v))
	}
	return variableNames[v]
}

// Variables lists every prognostic field in canonical order.
func Variables() []Variable {
	return []Variable{Pressure, Temperature, WindU, WindV}
}

// ParseVariable maps a field name (as printed by String) back to a Variable.
func ParseVariable(name string) (Variable, error) {
	for v, n := range variableNames {
		if n == name {
			return Variable(v), nil
		}
	}
	switch name {
	case "windU", "u":
		return WindU, nil
	case "windV", "v":
		return WindV, nil
	}
	return 0, fmt.Errorf("unknown field %q: %w", name, ErrUnknownComponent)
}

// State is the tuple of the four fields at one instant. A step never
// mutates its input state; it returns a new one.
type State struct {
	Pressure    *Field
	Temperature *Field
	WindU       *Field
	WindV       *Field
}

// NewState returns a zero state of the given shape.
func NewState(nx, ny int) *State {
	return &State{
		Pressure:    NewField(nx, ny),
		Temperature: NewField(nx, ny),
		WindU:       NewField(nx, ny),
		WindV:       NewField(nx, ny),
	}
}

// NewStateFor returns a zero state shaped like the grid.
func NewStateFor(p Params) *State { return NewState(p.NX, p.NY) }

// Fields returns the four fields in Variable order.
func (s *State) Fields() [NumVariables]*Field {
	return [NumVariables]*Field{s.Pressure, s.Temperature, s.WindU, s.WindV}
}

// Field returns the field for v.
func (s *State) Field(v Variable) *Field {
	switch v {
	case Pressure:
		return s.Pressure
	case Temperature:
		return s.Temperature
	case WindU:
		return s.WindU
	case WindV:
		return s.WindV
	}
	return nil
}

// Dims returns the shared field dimensions.
func (s *State) Dims() (nx, ny int) { return s.Pressure.Dims() }

func (s *State) Clone() *State {
	return &State{
		Pressure:    s.Pressure.Clone(),
		Temperature: s.Temperature.Clone(),
		WindU:       s.WindU.Clone(),
		WindV:       s.WindV.Clone(),
	}
}

// CheckShape verifies all four fields are present and share the grid's shape.
func (s *State) CheckShape(p Params) error {
	for v, f := range s.Fields() {
		if f == nil {
			return fmt.Errorf("%s missing: %w", Variable(v), ErrShapeMismatch)
		}
		nx, ny := f.Dims()
		if nx != p.NX || ny != p.NY {
			return fmt.Errorf("%s is %dx%d, grid is %dx%d: %w", Variable(v), nx, ny, p.NX, p.NY, ErrShapeMismatch)
		}
	}
	return nil
}

// IsValid reports whether every value of every field is finite.
func (s *State) IsValid() bool {
	return s.Validate() == nil
}

// Validate returns a *FieldError wrapping ErrNonFinite for the first
// non-finite cell found, or nil.
func (s *State) Validate() error {
	for v, f := range s.Fields() {
		if c, bad := f.FirstNonFinite(); bad {
			return &FieldError{Variable: Variable(v), Cell: c, Value: f.At(c.I, c.J), Wrapped: ErrNonFinite}
		}
	}
	return nil
}

// Equal reports bitwise equality of all four fields.
func (s *State) Equal(o *State) bool {
	a, b := s.Fields(), o.Fields()
	for k := range a {
		if !a[k].Equal(b[k]) {
			return false
		}
	}
	return true
}

// System computes the instantaneous tendency of every field.
type System interface {
	Derive(s *State) *State
}

// Integrator advances a state by dt. Implementations must not mutate x.
type Integrator interface {
	Step(sys System, x *State, dt float64) *State
}

// Enforcer rewrites the edge rows and columns of a state in place.
type Enforcer interface {
	Apply(s *State)
}

// Initializer produces the initial state of a run.
type Initializer interface {
	Initialize(p Params) (*State, error)
}
