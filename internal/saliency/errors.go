package saliency

import (
	"errors"
	"fmt"
)

// ErrDomain is wrapped by every error caused by a metric input that violates a
// numeric precondition.
var ErrDomain = errors.New("saliency: domain error")

var (
	ErrEmptyFixations = fmt.Errorf("%w: empty fixation set", ErrDomain)
	ErrZeroVariance   = fmt.Errorf("%w: zero variance", ErrDomain)
	ErrNonPositive    = fmt.Errorf("%w: non-positive probability", ErrDomain)
	ErrNonFinite      = fmt.Errorf("%w: non-finite value", ErrDomain)
	ErrOutOfBounds    = fmt.Errorf("%w: fixation outside map", ErrDomain)
	ErrEmptyMap       = fmt.Errorf("%w: empty map", ErrDomain)
	ErrTooSmall       = fmt.Errorf("%w: image smaller than window", ErrDomain)
)

// ErrShapeMismatch is returned when two grids that must be compared cell by
// cell have different dimensions.
var ErrShapeMismatch = errors.New("saliency: shape mismatch")

func checkSameShape(a, b Map) error {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return fmt.Errorf("%w: %dx%d vs %dx%d", ErrShapeMismatch, ar, ac, br, bc)
	}
	return nil
}
