package saliency

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MinMaxScale rescales m linearly into [0, 1]. A flat map scales to all zeros.
func MinMaxScale(m Map) *mat.Dense {
	rows, cols := m.Dims()
	result := flatten(m)

	lo := floats.Min(result)
	hi := floats.Max(result)

	if hi != lo {
		floats.AddConst(-lo, result)
		floats.Scale(1.0/(hi-lo), result)
	} else {
		floats.Scale(0, result)
	}

	return mat.NewDense(rows, cols, result)
}

// IsFlat reports whether every cell of m holds the same value.
func IsFlat(m Map) bool {
	values := flatten(m)
	return len(values) == 0 || floats.Min(values) == floats.Max(values)
}
