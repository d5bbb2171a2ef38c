package saliency

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// GaussianTruncate is the number of standard deviations after which the
// Gaussian kernel is cut off.
const GaussianTruncate = 4.0

// GaussianKernel returns the normalized 1D Gaussian weights for sigma,
// spanning int(GaussianTruncate*sigma+0.5) cells on each side of the center.
func GaussianKernel(sigma float64) []float64 {
	radius := int(GaussianTruncate*sigma + 0.5)
	kernel := make([]float64, 2*radius+1)
	for i := range kernel {
		x := float64(i - radius)
		kernel[i] = math.Exp(-0.5 * x * x / (sigma * sigma))
	}
	floats.Scale(1.0/floats.Sum(kernel), kernel)
	return kernel
}

// GaussianFilter smooths m with an isotropic Gaussian of standard deviation
// sigma. Borders are handled by mirroring the grid about its edge. A sigma of
// zero returns a copy of m.
func GaussianFilter(m Map, sigma float64) (*mat.Dense, error) {
	if sigma < 0 || math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		return nil, fmt.Errorf("%w: invalid gaussian sigma %v", ErrDomain, sigma)
	}
	if sigma == 0 {
		return mat.DenseCopyOf(m), nil
	}
	return separable(m, GaussianKernel(sigma)), nil
}

// UniformFilter replaces every cell of m by the mean of the size x size window
// centered on it, with mirrored borders.
func UniformFilter(m Map, size int) *mat.Dense {
	kernel := make([]float64, size)
	for i := range kernel {
		kernel[i] = 1.0 / float64(size)
	}
	return separable(m, kernel)
}

// reflect maps an out of range index onto [0, n) by mirroring about the edges,
// repeating the edge cell (d c b a | a b c d | d c b a).
func reflect(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}

// separable correlates m with kernel along columns and then along rows.
func separable(m Map, kernel []float64) *mat.Dense {
	rows, cols := m.Dims()
	src := flatten(m)
	tmp := make([]float64, rows*cols)
	dst := make([]float64, rows*cols)
	origin := len(kernel) / 2

	// mirrored source index of every tap for the current position
	idx := make([]int, len(kernel))

	for c := range cols {
		for k := range kernel {
			idx[k] = reflect(c+k-origin, cols)
		}
		for r := range rows {
			line := src[r*cols : (r+1)*cols]
			var sum float64
			for k, w := range kernel {
				sum += w * line[idx[k]]
			}
			tmp[r*cols+c] = sum
		}
	}

	for r := range rows {
		for k := range kernel {
			idx[k] = reflect(r+k-origin, rows)
		}
		for c := range cols {
			var sum float64
			for k, w := range kernel {
				sum += w * tmp[idx[k]*cols+c]
			}
			dst[r*cols+c] = sum
		}
	}

	return mat.NewDense(rows, cols, dst)
}
