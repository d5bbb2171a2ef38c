package saliency

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// NSS computes the Normalized Scanpath Saliency of a saliency map: the map is
// z-scored with its own mean and standard deviation and the normalized values
// are averaged over the fixation points. Positive values indicate
// correspondence, negative values anti-correspondence. The map does not have
// to be regularized.
func NSS(saliencyMap Map, fixations []Point) (float64, error) {
	if len(fixations) == 0 {
		return 0, ErrEmptyFixations
	}

	values := flatten(saliencyMap)
	if err := checkFinite(values); err != nil {
		return 0, err
	}

	mean, std := stat.PopMeanStdDev(values, nil)
	if std == 0 {
		return 0, ErrZeroVariance
	}

	var total float64
	for _, p := range fixations {
		if !p.in(saliencyMap) {
			return 0, fmt.Errorf("%w: %v", ErrOutOfBounds, p)
		}
		total += (saliencyMap.At(p.Row, p.Col) - mean) / std
	}

	return total / float64(len(fixations)), nil
}
