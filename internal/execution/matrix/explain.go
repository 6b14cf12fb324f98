package matrix

import (
	"fmt"
	"sort"
	"strings"

	"github.com/animus-labs/evergreen-matrix/internal/domain"
	"github.com/animus-labs/evergreen-matrix/internal/execution/constraint"
	"github.com/animus-labs/evergreen-matrix/internal/execution/derive"
)

// Explanation reports how a single hand-written assignment fares.
type Explanation struct {
	Family     Family
	Assignment domain.Assignment
	Decision   constraint.Decision
	// Task is set only when the assignment is allowed.
	Task *domain.Task
}

// Explain evaluates one assignment of a combinatorial family. Axes missing
// from values default to absent when the axis allows it; every given value
// must be legal for its axis.
func (g *Generator) Explain(f Family, values map[string]domain.Value) (Explanation, error) {
	switch f {
	case FamilyIntegration:
		return explain(g.integration, values)
	case FamilyAuth:
		return explain(g.auth, values)
	default:
		return Explanation{}, fmt.Errorf("family %q is not combinatorial", f)
	}
}

func explain[T any](f family[T], values map[string]domain.Value) (Explanation, error) {
	known := make(map[string]struct{}, f.space.Len())
	cell := make(domain.Assignment, 0, f.space.Len())
	for _, axis := range f.space.Axes() {
		known[axis.Name] = struct{}{}
		v, ok := values[axis.Name]
		if !ok {
			v = domain.Absent
		}
		if !v.In(axis.Values...) {
			if !ok {
				return Explanation{}, fmt.Errorf("axis %q is required", axis.Name)
			}
			return Explanation{}, fmt.Errorf("axis %q does not allow %q (allowed: %s)", axis.Name, domain.Display(axis.Name, v), displayValues(axis))
		}
		cell = append(cell, domain.Binding{Axis: axis.Name, Value: v})
	}
	unknown := make([]string, 0)
	for name := range values {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Explanation{}, fmt.Errorf("unknown axes for %s: %s", f.name, strings.Join(unknown, ", "))
	}

	candidate, err := f.bind(cell)
	if err != nil {
		return Explanation{}, err
	}
	out := Explanation{Family: f.name, Assignment: cell, Decision: f.policy.Evaluate(candidate)}
	if out.Decision.Disallowed() {
		return out, nil
	}
	task := f.wrap(candidate)
	if err := derive.Decorate(&task, f.space.Names()); err != nil {
		return Explanation{}, err
	}
	out.Task = &task
	return out, nil
}

func displayValues(axis domain.Axis) string {
	parts := make([]string, 0, len(axis.Values))
	for _, v := range axis.Values {
		parts = append(parts, domain.Display(axis.Name, v))
	}
	return strings.Join(parts, ", ")
}
