package saliency

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestRegularize_ValidDistribution(t *testing.T) {
	rng := newRand()
	inputs := map[string]*mat.Dense{
		"positive":  randomMap(rng, 12, 17, 0, 10),
		"negative":  randomMap(rng, 9, 9, -5, 5),
		"log space": randomMap(rng, 20, 8, -30, -1),
		"zeros":     mat.NewDense(4, 6, nil),
		"single":    mat.NewDense(1, 1, []float64{3}),
	}

	for name, m := range inputs {
		t.Run(name, func(t *testing.T) {
			before := mat.DenseCopyOf(m)

			p, err := Regularize(m)
			require.NoError(t, err)

			rows, cols := p.Dims()
			mr, mc := m.Dims()
			assert.Equal(t, mr, rows)
			assert.Equal(t, mc, cols)
			assert.Greater(t, mat.Min(p), 0.0)
			assert.InDelta(t, 1.0, mat.Sum(p), 1e-6)
			assert.True(t, mat.Equal(before, m), "input must not be mutated")
		})
	}
}

func TestRegularize_Idempotent(t *testing.T) {
	rng := newRand()
	for range 10 {
		m := randomMap(rng, 15, 11, -2, 8)

		once, err := Regularize(m)
		require.NoError(t, err)
		twice, err := Regularize(once)
		require.NoError(t, err)

		assert.True(t, mat.EqualApprox(once, twice, 1e-6))
	}
}

func TestRegularize_ZerosBecomeUniform(t *testing.T) {
	p, err := Regularize(mat.NewDense(2, 2, nil))
	require.NoError(t, err)
	for r := range 2 {
		for c := range 2 {
			assert.InDelta(t, 0.25, p.At(r, c), 1e-12)
		}
	}
}

func TestRegularize_Errors(t *testing.T) {
	_, err := Regularize(&mat.Dense{})
	assert.ErrorIs(t, err, ErrEmptyMap)

	_, err = Regularize(mat.NewDense(1, 2, []float64{1, math.NaN()}))
	assert.ErrorIs(t, err, ErrNonFinite)
	assert.ErrorIs(t, err, ErrDomain)

	_, err = Regularize(mat.NewDense(1, 2, []float64{math.Inf(1), 0}))
	assert.ErrorIs(t, err, ErrNonFinite)
}

func TestMinMaxScale(t *testing.T) {
	m := MinMaxScale(mat.NewDense(1, 3, []float64{2, 4, 6}))
	assert.Equal(t, []float64{0, 0.5, 1}, m.RawRowView(0))

	flat := MinMaxScale(constantMap(2, 2, 3))
	assert.Equal(t, 0.0, mat.Max(flat))
	assert.True(t, IsFlat(flat))
	assert.False(t, IsFlat(m))
}
