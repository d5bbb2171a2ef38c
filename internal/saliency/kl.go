package saliency

import (
	"fmt"
	"math"
)

// KL computes the Kullback-Leibler divergence, in bits, of other from
// reference. The divergence is asymmetric, so the argument order matters.
// Both maps must be regularized: any cell that is not a positive finite
// probability is reported as ErrNonPositive.
func KL(reference, other Map) (float64, error) {
	if err := checkSameShape(reference, other); err != nil {
		return 0, err
	}

	rows, cols := reference.Dims()
	var divergence float64
	for r := range rows {
		for c := range cols {
			p := reference.At(r, c)
			q := other.At(r, c)
			if !isProbability(p) || !isProbability(q) {
				return 0, fmt.Errorf("%w at (%d, %d): reference=%v other=%v", ErrNonPositive, r, c, p, q)
			}
			divergence += p * math.Log2(p/q)
		}
	}

	return divergence, nil
}
