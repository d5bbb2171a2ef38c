package saliency

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Epsilon is added to every cell during regularization so that no cell has
// zero probability.
const Epsilon = 1e-9

// Regularize turns m into a strictly positive probability distribution of the
// same shape: the map is shifted so that its minimum is not negative, offset by
// Epsilon and L1 normalized. m is left untouched.
func Regularize(m Map) (*mat.Dense, error) {
	rows, cols := m.Dims()
	if rows == 0 || cols == 0 {
		return nil, ErrEmptyMap
	}

	values := flatten(m)
	if err := checkFinite(values); err != nil {
		return nil, err
	}

	shift := min(0.0, floats.Min(values))
	floats.AddConst(Epsilon-shift, values)
	floats.Scale(1.0/floats.Sum(values), values)

	return mat.NewDense(rows, cols, values), nil
}
