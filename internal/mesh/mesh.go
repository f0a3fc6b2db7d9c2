package mesh

import (
	"errors"
	"fmt"
)

// EntireShape is the pseudo-region that selects every point of a shape.
const EntireShape = "Entire Shape"

// DefaultRegionSuffix marks arrays that are region masks rather than fields.
const DefaultRegionSuffix = "ROI"

var (
	// ErrUnsupported indicates a file format or encoding this package cannot read.
	ErrUnsupported = errors.New("unsupported mesh format")
	// ErrArrayNotFound indicates a shape has no array with the requested name.
	ErrArrayNotFound = errors.New("array not found")
	// ErrNotScalar indicates an array with more than one component.
	ErrNotScalar = errors.New("array is not single-component")
)

// Shape is a mesh with named per-point arrays.
type Shape interface {
	Name() string
	// ArrayNames lists the point arrays in file order.
	ArrayNames() []string
	// Components returns the number of components of the named array.
	Components(name string) (int, bool)
	// Values returns the values of a single-component array, one per point.
	Values(name string) ([]float64, error)
}

// Array is one named point array. Values are stored tuple by tuple.
type Array struct {
	Name       string
	Components int
	Values     []float64
}

// Tuples returns the number of points covered by the array.
func (a *Array) Tuples() int {
	if a.Components <= 0 {
		return 0
	}
	return len(a.Values) / a.Components
}

// PolyData is an in-memory Shape.
type PolyData struct {
	name   string
	points int
	arrays map[string]*Array
	order  []string
}

// NewPolyData returns an empty shape. points may be 0 when unknown; it is then
// taken from the first array added.
func NewPolyData(name string, points int) *PolyData {
	return &PolyData{name: name, points: points, arrays: make(map[string]*Array)}
}

// AddArray appends a point array. Names must be unique within the shape.
func (p *PolyData) AddArray(a *Array) error {
	if a == nil || a.Name == "" {
		return errors.New("array name is required")
	}
	if a.Components < 1 {
		return fmt.Errorf("array %q: invalid component count %d", a.Name, a.Components)
	}
	if len(a.Values)%a.Components != 0 {
		return fmt.Errorf("array %q: %d values is not a multiple of %d components", a.Name, len(a.Values), a.Components)
	}
	if _, dup := p.arrays[a.Name]; dup {
		return fmt.Errorf("array %q: duplicate name", a.Name)
	}
	if p.points == 0 {
		p.points = a.Tuples()
	}
	p.arrays[a.Name] = a
	p.order = append(p.order, a.Name)
	return nil
}

// SetName overrides the display name.
func (p *PolyData) SetName(name string) { p.name = name }

func (p *PolyData) Name() string { return p.name }

// Points returns the number of points of the shape.
func (p *PolyData) Points() int { return p.points }

func (p *PolyData) ArrayNames() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Array returns the named array.
func (p *PolyData) Array(name string) (*Array, bool) {
	a, ok := p.arrays[name]
	return a, ok
}

func (p *PolyData) Components(name string) (int, bool) {
	a, ok := p.arrays[name]
	if !ok {
		return 0, false
	}
	return a.Components, true
}

func (p *PolyData) Values(name string) ([]float64, error) {
	a, ok := p.arrays[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q on %s", ErrArrayNotFound, name, p.name)
	}
	if a.Components != 1 {
		return nil, fmt.Errorf("%w: %q has %d components", ErrNotScalar, name, a.Components)
	}
	return a.Values, nil
}
