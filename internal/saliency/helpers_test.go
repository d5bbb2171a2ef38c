package saliency

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

func randomMap(rng *rand.Rand, rows, cols int, lo, hi float64) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = lo + rng.Float64()*(hi-lo)
	}
	return mat.NewDense(rows, cols, data)
}

func constantMap(rows, cols int, v float64) *mat.Dense {
	m := mat.NewDense(rows, cols, nil)
	for r := range rows {
		for c := range cols {
			m.Set(r, c, v)
		}
	}
	return m
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(7, 11))
}
