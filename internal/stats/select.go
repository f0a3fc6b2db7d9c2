package stats

// Mask selects points of a measurement array. A point is in the region iff its
// mask value is exactly 1.0. A nil Mask selects every point.
type Mask []float64

// Select returns the values picked by mask, in index order, as a new slice.
// With a nil mask the whole array is copied.
func Select(values []float64, mask Mask) ([]float64, error) {
	if mask == nil {
		out := make([]float64, len(values))
		copy(out, values)
		return out, nil
	}
	if len(mask) != len(values) {
		return nil, &ShapeMismatchError{Values: len(values), Mask: len(mask)}
	}
	out := make([]float64, 0, len(values))
	for i, m := range mask {
		if m == 1.0 {
			out = append(out, values[i])
		}
	}
	return out, nil
}
