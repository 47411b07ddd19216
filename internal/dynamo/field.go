package dynamo

import (
	"fmt"
	"math"
)

// Field is a dense nx × ny grid of float64 values stored row-major, so that
// the cell (i, j) lives at data[i*ny+j].
type Field struct {
	nx, ny int
	data   []float64
}

// NewField returns a zero-filled field.
func NewField(nx, ny int) *Field {
	if nx < 0 {
		nx = 0
	}
	if ny < 0 {
		ny = 0
	}
	return &Field{nx: nx, ny: ny, data: make([]float64, nx*ny)}
}

// FieldFrom builds a field from nested rows. All rows must have the same length.
func FieldFrom(rows [][]float64) (*Field, error) {
	nx := len(rows)
	if nx == 0 {
		return NewField(0, 0), nil
	}
	ny := len(rows[0])
	f := NewField(nx, ny)
	for i, row := range rows {
		if len(row) != ny {
			return nil, fmt.Errorf("row %d has %d cells, want %d: %w", i, len(row), ny, ErrShapeMismatch)
		}
		copy(f.data[i*ny:(i+1)*ny], row)
	}
	return f, nil
}

// Dims returns the field dimensions.
func (f *Field) Dims() (nx, ny int) { return f.nx, f.ny }

func (f *Field) At(i, j int) float64 { return f.data[i*f.ny+j] }

func (f *Field) Set(i, j int, v float64) { f.data[i*f.ny+j] = v }

// Value is the bounds-checked variant of At.
func (f *Field) Value(i, j int) (float64, error) {
	if i < 0 || i >= f.nx {
		return 0, fmt.Errorf("x index %d out of range [0, %d)", i, f.nx)
	}
	if j < 0 || j >= f.ny {
		return 0, fmt.Errorf("y index %d out of range [0, %d)", j, f.ny)
	}
	return f.At(i, j), nil
}

// Data exposes the backing slice. Callers that only read must not write to it.
func (f *Field) Data() []float64 { return f.data }

// Row returns row i as a slice into the backing array.
func (f *Field) Row(i int) []float64 { return f.data[i*f.ny : (i+1)*f.ny] }

func (f *Field) Clone() *Field {
	c := &Field{nx: f.nx, ny: f.ny, data: make([]float64, len(f.data))}
	copy(c.data, f.data)
	return c
}

// CopyFrom overwrites f with the contents of src. Shapes must match.
func (f *Field) CopyFrom(src *Field) error {
	if !f.SameShape(src) {
		return fmt.Errorf("copy %dx%d into %dx%d: %w", src.nx, src.ny, f.nx, f.ny, ErrShapeMismatch)
	}
	copy(f.data, src.data)
	return nil
}

func (f *Field) Fill(v float64) {
	for k := range f.data {
		f.data[k] = v
	}
}

// Apply sets every cell to fn(i, j).
func (f *Field) Apply(fn func(i, j int) float64) {
	for i := 0; i < f.nx; i++ {
		row := f.Row(i)
		for j := range row {
			row[j] = fn(i, j)
		}
	}
}

func (f *Field) SameShape(o *Field) bool {
	return o != nil && f.nx == o.nx && f.ny == o.ny
}

// Rows copies the field into nested rows, the layout used by external
// renderers and file formats.
func (f *Field) Rows() [][]float64 {
	rows := make([][]float64, f.nx)
	for i := range rows {
		rows[i] = make([]float64, f.ny)
		copy(rows[i], f.Row(i))
	}
	return rows
}

// FirstNonFinite returns the first cell holding NaN or ±Inf.
func (f *Field) FirstNonFinite() (Cell, bool) {
	for k, v := range f.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Cell{I: k / f.ny, J: k % f.ny}, true
		}
	}
	return Cell{}, false
}

// Equal reports whether both fields have the same shape and bitwise-equal values.
func (f *Field) Equal(o *Field) bool {
	if !f.SameShape(o) {
		return false
	}
	for k, v := range f.data {
		if v != o.data[k] {
			return false
		}
	}
	return true
}
