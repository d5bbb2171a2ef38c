package saliency

import (
	"gonum.org/v1/gonum/stat"
)

// CC computes Pearson's correlation coefficient between the pixels of two
// maps. For a fair comparison both maps should be regularized and carry
// information on similar frequency bands (smooth the sharper one first); CC
// does neither itself.
func CC(a, b Map) (float64, error) {
	if err := checkSameShape(a, b); err != nil {
		return 0, err
	}

	x := flatten(a)
	y := flatten(b)
	if err := checkFinite(x); err != nil {
		return 0, err
	}
	if err := checkFinite(y); err != nil {
		return 0, err
	}

	if stat.PopStdDev(x, nil) == 0 || stat.PopStdDev(y, nil) == 0 {
		return 0, ErrZeroVariance
	}

	return stat.Correlation(x, y, nil), nil
}
