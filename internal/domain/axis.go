package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Value is one legal setting of an axis. The empty Value is the falsy
// "feature absent" setting.
type Value string

const Absent Value = ""

func (v Value) Set() bool {
	return v != Absent
}

func (v Value) In(values ...Value) bool {
	for _, candidate := range values {
		if v == candidate {
			return true
		}
	}
	return false
}

// Axis is one configurable dimension of a task.
type Axis struct {
	Name   string
	Values []Value
}

// BoolAxis declares an on/off axis whose truthy value is the axis name.
func BoolAxis(name string) Axis {
	return Axis{Name: name, Values: []Value{Value(name), Absent}}
}

// Display renders a value the way task names and tags spell it: the absent
// value becomes "no<axis>".
func Display(axis string, v Value) string {
	if !v.Set() {
		return "no" + axis
	}
	return string(v)
}

// Binding is one (axis, value) pair of an assignment.
type Binding struct {
	Axis  string
	Value Value
}

// Assignment is an ordered tuple of bindings, one per axis of a space.
type Assignment []Binding

func (a Assignment) Get(axis string) (Value, bool) {
	for _, b := range a {
		if b.Axis == axis {
			return b.Value, true
		}
	}
	return Absent, false
}

func (a Assignment) String() string {
	parts := make([]string, 0, len(a))
	for _, b := range a {
		parts = append(parts, b.Axis+"="+Display(b.Axis, b.Value))
	}
	return strings.Join(parts, ",")
}

// AxisSpace is an ordered, validated set of axes. It is immutable once built.
type AxisSpace struct {
	axes []Axis
}

// NewAxisSpace validates the axes and returns a space that owns copies of them.
func NewAxisSpace(axes ...Axis) (AxisSpace, error) {
	if len(axes) == 0 {
		return AxisSpace{}, errors.New("axis space must declare at least one axis")
	}
	names := make(map[string]struct{}, len(axes))
	owned := make([]Axis, 0, len(axes))
	for i, axis := range axes {
		name := strings.TrimSpace(axis.Name)
		if name == "" {
			return AxisSpace{}, fmt.Errorf("axis[%d] name is required", i)
		}
		if name != axis.Name {
			return AxisSpace{}, fmt.Errorf("axis[%d] name %q has surrounding whitespace", i, axis.Name)
		}
		if _, ok := names[name]; ok {
			return AxisSpace{}, fmt.Errorf("duplicate axis %q", name)
		}
		names[name] = struct{}{}
		if len(axis.Values) == 0 {
			return AxisSpace{}, fmt.Errorf("axis %q has no values", name)
		}
		seen := make(map[Value]struct{}, len(axis.Values))
		for _, v := range axis.Values {
			if _, ok := seen[v]; ok {
				return AxisSpace{}, fmt.Errorf("axis %q lists %q twice", name, Display(name, v))
			}
			seen[v] = struct{}{}
		}
		owned = append(owned, Axis{Name: name, Values: append([]Value(nil), axis.Values...)})
	}
	return AxisSpace{axes: owned}, nil
}

// MustAxisSpace is NewAxisSpace for compiled-in axis definitions.
func MustAxisSpace(axes ...Axis) AxisSpace {
	space, err := NewAxisSpace(axes...)
	if err != nil {
		panic(err)
	}
	return space
}

func (s AxisSpace) Len() int {
	return len(s.axes)
}

func (s AxisSpace) Axes() []Axis {
	out := make([]Axis, 0, len(s.axes))
	for _, axis := range s.axes {
		out = append(out, Axis{Name: axis.Name, Values: append([]Value(nil), axis.Values...)})
	}
	return out
}

func (s AxisSpace) Names() []string {
	out := make([]string, 0, len(s.axes))
	for _, axis := range s.axes {
		out = append(out, axis.Name)
	}
	return out
}

func (s AxisSpace) Axis(name string) (Axis, bool) {
	for _, axis := range s.axes {
		if axis.Name == name {
			return Axis{Name: axis.Name, Values: append([]Value(nil), axis.Values...)}, true
		}
	}
	return Axis{}, false
}

// Size is the number of cells in the cartesian product of the space.
func (s AxisSpace) Size() int {
	if len(s.axes) == 0 {
		return 0
	}
	size := 1
	for _, axis := range s.axes {
		size *= len(axis.Values)
	}
	return size
}

// WithValues returns a copy of the space with one axis' values replaced.
func (s AxisSpace) WithValues(name string, values []Value) (AxisSpace, error) {
	if _, ok := s.Axis(name); !ok {
		return AxisSpace{}, fmt.Errorf("unknown axis %q", name)
	}
	axes := s.Axes()
	for i := range axes {
		if axes[i].Name == name {
			axes[i].Values = values
		}
	}
	return NewAxisSpace(axes...)
}
