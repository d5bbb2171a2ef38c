package saliency

import (
	"fmt"
	"math"
)

// IG computes the Information Gain, in bits per fixation, of a saliency map
// over a baseline map. Both maps must be regularized probability
// distributions; a zero, negative or non-finite probability at a fixation is
// reported as ErrNonPositive instead of producing an infinite gain.
func IG(saliencyMap, baseline Map, fixations []Point) (float64, error) {
	if err := checkSameShape(saliencyMap, baseline); err != nil {
		return 0, err
	}
	if len(fixations) == 0 {
		return 0, ErrEmptyFixations
	}

	var total float64
	for _, p := range fixations {
		if !p.in(saliencyMap) {
			return 0, fmt.Errorf("%w: %v", ErrOutOfBounds, p)
		}
		s := saliencyMap.At(p.Row, p.Col)
		b := baseline.At(p.Row, p.Col)
		if !isProbability(s) || !isProbability(b) {
			return 0, fmt.Errorf("%w at %v: saliency=%v baseline=%v", ErrNonPositive, p, s, b)
		}
		total += math.Log2(s) - math.Log2(b)
	}

	return total / float64(len(fixations)), nil
}

func isProbability(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
