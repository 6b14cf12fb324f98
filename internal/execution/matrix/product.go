package matrix

import "github.com/animus-labs/evergreen-matrix/internal/domain"

// Product enumerates the cartesian product of a space in axis-declaration
// order, the last axis varying fastest.
func Product(space domain.AxisSpace) []domain.Assignment {
	axes := space.Axes()
	if len(axes) == 0 {
		return nil
	}
	out := make([]domain.Assignment, 0, space.Size())
	indices := make([]int, len(axes))
	for {
		cell := make(domain.Assignment, len(axes))
		for i, axis := range axes {
			cell[i] = domain.Binding{Axis: axis.Name, Value: axis.Values[indices[i]]}
		}
		out = append(out, cell)

		pos := len(axes) - 1
		for pos >= 0 {
			indices[pos]++
			if indices[pos] < len(axes[pos].Values) {
				break
			}
			indices[pos] = 0
			pos--
		}
		if pos < 0 {
			return out
		}
	}
}
