// Package saliency implements the saliency evaluation metrics (NSS, IG, CC, KL,
// SSIM), the regularization of saliency maps into probability distributions,
// and fixation point extraction.
package saliency

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Map is a read-only 2D grid of values indexed as (row, column).
type Map = mat.Matrix

// Point is a fixation location in pixel coordinates.
type Point struct {
	Row int
	Col int
}

func (p Point) in(m Map) bool {
	r, c := m.Dims()
	return p.Row >= 0 && p.Row < r && p.Col >= 0 && p.Col < c
}

// flatten copies the cells of m in row-major order.
func flatten(m Map) []float64 {
	r, c := m.Dims()
	out := make([]float64, 0, r*c)
	for i := range r {
		for j := range c {
			out = append(out, m.At(i, j))
		}
	}
	return out
}

func checkFinite(values []float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNonFinite
		}
	}
	return nil
}
