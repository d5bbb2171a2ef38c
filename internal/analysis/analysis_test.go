package analysis

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/saliency-bench/internal/dataset"
	"github.com/tensorplex-labs/saliency-bench/internal/report"
)

func TestZScores(t *testing.T) {
	z := ZScores([]float64{1, 2, 3})
	require.Len(t, z, 3)
	assert.InDelta(t, -1.224744871, z[0], 1e-9)
	assert.InDelta(t, 0, z[1], 1e-12)
	assert.InDelta(t, 1.224744871, z[2], 1e-9)

	assert.Equal(t, []float64{0, 0, 0}, ZScores([]float64{4, 4, 4}))
	assert.Empty(t, ZScores(nil))
}

func TestFilterOutliers(t *testing.T) {
	x := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 100}
	y := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	fx, fy := FilterOutliers(x, y, DefaultOutlierThreshold)
	assert.Len(t, fx, 10)
	assert.Equal(t, y[:10], fy)

	x[10] = -98
	fx, _ = FilterOutliers(x, y, DefaultOutlierThreshold)
	assert.Len(t, fx, 11, "only large values are outliers")
}

func TestFit(t *testing.T) {
	t.Run("exact line", func(t *testing.T) {
		line, err := Fit([]float64{0, 1, 2, 3}, []float64{1, 3, 5, 7})
		require.NoError(t, err)
		assert.Equal(t, 4, line.N)
		assert.InDelta(t, 2.0, line.Slope, 1e-12)
		assert.InDelta(t, 1.0, line.Intercept, 1e-12)
		assert.InDelta(t, 1.0, line.CC, 1e-12)
		assert.InDelta(t, 9.0, line.At(4), 1e-12)
	})

	t.Run("anti-correlated", func(t *testing.T) {
		line, err := Fit([]float64{1, 2, 3, 4}, []float64{4, 3, 2, 1})
		require.NoError(t, err)
		assert.InDelta(t, -1.0, line.CC, 1e-12)
	})

	t.Run("insufficient data", func(t *testing.T) {
		_, err := Fit([]float64{1}, []float64{2})
		assert.ErrorIs(t, err, ErrInsufficientData)

		_, err = Fit([]float64{2, 2, 2}, []float64{1, 2, 3})
		assert.ErrorIs(t, err, ErrInsufficientData)

		_, err = Fit([]float64{1, 2, 3}, []float64{5, 5, 5})
		assert.ErrorIs(t, err, ErrInsufficientData)

		_, err = Fit([]float64{1, 2, 3}, []float64{1, 2})
		assert.ErrorIs(t, err, ErrInsufficientData)
	})
}

func TestQuadraticFit(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4, 5}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 3*v*v - 2*v + 0.5
	}

	coeffs, err := QuadraticFit(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, coeffs[0], 1e-9)
	assert.InDelta(t, -2.0, coeffs[1], 1e-9)
	assert.InDelta(t, 0.5, coeffs[2], 1e-9)

	_, err = QuadraticFit(x[:2], y[:2])
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func correlationRows(transformation string, n int, slope float64) []report.CorrelationRow {
	rows := make([]report.CorrelationRow, 0, n)
	for i := range n {
		v := float64(i)
		rows = append(rows, report.CorrelationRow{
			Transformation: transformation,
			Image:          i + 1,
			SSIM:           0.5 + v/100,
			CC:             v,
			KL:             5,
			ReferenceNSS:   v * v,
			ReferenceIG:    -v,
			TransformedNSS: slope * v,
			TransformedIG:  1 + v,
		})
	}
	return rows
}

func TestCorrelationTable(t *testing.T) {
	rows := append(correlationRows("Noise_1", 8, 2), correlationRows("Noise_2", 8, -1)...)
	pairs := CorrelationPairs()
	require.Len(t, pairs, 10)
	assert.Equal(t, "ssim,transformed_nss", pairs[0].String())
	assert.Equal(t, "reference_ig,transformed_ig", pairs[9].String())

	table, err := CorrelationTable(rows, pairs, DefaultOutlierThreshold)
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, "Noise_1", table[0].Transformation)
	require.Len(t, table[0].Fits, len(pairs))

	// cc vs transformed_nss
	assert.InDelta(t, 1.0, table[0].Fits[1].CC, 1e-12)
	assert.InDelta(t, 2.0, table[0].Fits[1].Slope, 1e-12)
	assert.InDelta(t, -1.0, table[1].Fits[1].CC, 1e-12)
	// kl is constant
	assert.True(t, math.IsNaN(table[0].Fits[2].CC))
	// reference_ig vs transformed_ig
	assert.InDelta(t, -1.0, table[0].Fits[9].CC, 1e-12)
}

func TestCorrelationTable_UnknownMetric(t *testing.T) {
	_, err := CorrelationTable(correlationRows("Noise_1", 3, 1), []Pair{{X: "psnr", Y: TransformedNSS}}, 3)
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestPairwiseCorrelations(t *testing.T) {
	tables := map[string][]report.CorrelationRow{
		"deepgaze": append(correlationRows("Noise_1", 6, 1), correlationRows("Rotation_1", 6, 1)...),
		"unisal":   correlationRows("Rotation_1", 6, -3),
	}

	fits, err := PairwiseCorrelations(tables, []string{"deepgaze", "unisal"}, Pair{X: CC, Y: TransformedNSS}, 3, true)
	require.NoError(t, err)
	require.Len(t, fits, 2)
	assert.Equal(t, "Noise_1", fits[0].Transformation)

	rotation := fits[1]
	require.Len(t, rotation.Fits, 2)
	assert.InDelta(t, 1.0, rotation.Fits[0].Line.CC, 1e-12)
	assert.InDelta(t, -1.0, rotation.Fits[1].Line.CC, 1e-12)
	require.NotNil(t, rotation.Fits[1].Curve)
	assert.InDelta(t, -3.0, rotation.Fits[1].Curve[1], 1e-9)

	// unisal has no Noise_1 rows
	assert.True(t, math.IsNaN(fits[0].Fits[1].Line.CC))
	assert.Nil(t, fits[0].Fits[1].Curve)
}

func TestBestResolution(t *testing.T) {
	rows := []report.FixationPointRow{
		{Transformation: "Reference", Model: "unisal_384_224", MeanNSS: 1.0, MeanIG: 0.2, StdNSS: 0.5},
		{Transformation: "Noise_1", Model: "unisal_384_224", MeanNSS: 2.0, MeanIG: 0.4, StdNSS: 0.7},
		{Transformation: "Reference", Model: "unisal_512_288", MeanNSS: 2.0, MeanIG: 0.1},
		{Transformation: "Noise_1", Model: "unisal_512_288", MeanNSS: 3.0, MeanIG: 0.3},
		{Transformation: "Reference", Model: "deepgaze_1024_576", MeanNSS: 9.0},
	}

	summaries := BestResolution(rows, "unisal")
	require.Len(t, summaries, 2)
	assert.Equal(t, "unisal_512_288", summaries[0].Model)
	assert.InDelta(t, 2.5, summaries[0].MeanNSS, 1e-12)
	assert.InDelta(t, 0.2, summaries[0].MeanIG, 1e-12)
	assert.Equal(t, 2, summaries[0].Transforms)
	assert.Equal(t, "unisal_384_224", summaries[1].Model)
	assert.InDelta(t, 0.6, summaries[1].StdNSS, 1e-12)

	assert.Empty(t, BestResolution(rows, "salicon"))
}

func fixationRows() []report.FixationPointRow {
	add := func(transformation, model string, nss, ig float64) report.FixationPointRow {
		return report.FixationPointRow{Transformation: transformation, Model: model, MeanNSS: nss, MeanIG: ig}
	}
	return []report.FixationPointRow{
		add(dataset.Reference, "deepgaze", 2.0, 1.0),
		add(dataset.Reference, dataset.RealModel, 3.0, 2.0),
		add(dataset.Reference, dataset.CenterbiasModel, 1.0, 0.0),
		add("Noise_1", "deepgaze", 1.8, 0.8),
		add("Noise_2", "deepgaze", 1.5, 0.5),
		add("Noise_2", dataset.RealModel, 3.0, 1.5),
		add("Noise_2", dataset.CenterbiasModel, 1.0, 0.0),
	}
}

func TestDegrade(t *testing.T) {
	chain := []string{dataset.Reference, "Noise_1", "Noise_2"}

	nss, err := Degrade(fixationRows(), []string{"deepgaze"}, MetricNSS, chain)
	require.NoError(t, err)
	require.Len(t, nss, 1)
	assert.Equal(t, []float64{2.0, 1.8, 1.5}, nss[0].Values)
	assert.InDelta(t, 0.5, nss[0].Initial, 1e-12)
	assert.InDelta(t, 0.25, nss[0].Final, 1e-12)
	assert.InDelta(t, 0.25, nss[0].Loss, 1e-12)

	ig, err := Degrade(fixationRows(), []string{"deepgaze"}, MetricIG, chain)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, ig[0].Initial, 1e-12)
	assert.InDelta(t, 1.0/3.0, ig[0].Final, 1e-12)
}

func TestDegrade_Errors(t *testing.T) {
	_, err := Degrade(fixationRows(), []string{"unisal"}, MetricNSS, []string{dataset.Reference, "Noise_2"})
	assert.ErrorIs(t, err, ErrMissingRow)

	_, err = Degrade(fixationRows(), []string{"deepgaze"}, "cc", []string{dataset.Reference})
	assert.ErrorIs(t, err, ErrUnknownMetric)

	_, err = Degrade(fixationRows(), []string{"deepgaze"}, MetricNSS, nil)
	assert.ErrorIs(t, err, ErrMissingRow)

	rows := append(fixationRows(), report.FixationPointRow{Transformation: "Flat", Model: "deepgaze"},
		report.FixationPointRow{Transformation: "Flat", Model: dataset.RealModel},
		report.FixationPointRow{Transformation: "Flat", Model: dataset.CenterbiasModel})
	_, err = Degrade(rows, []string{"deepgaze"}, MetricNSS, []string{dataset.Reference, "Flat"})
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestStandardChains(t *testing.T) {
	chains := StandardChains()
	require.Len(t, chains, 10)

	seen := map[string]bool{}
	for _, chain := range chains {
		require.GreaterOrEqual(t, len(chain), 2)
		assert.Equal(t, dataset.Reference, chain[0])
		for _, name := range chain {
			assert.Contains(t, dataset.StandardTransformations, name)
			seen[name] = true
		}
	}
	assert.Len(t, seen, len(dataset.StandardTransformations))
}

func TestPlotTerminal(t *testing.T) {
	var buf bytes.Buffer
	err := PlotTerminal(&buf, []Bar{
		{Label: "unisal", Value: 0.3},
		{Label: "deepgaze", Value: -0.1},
		{Label: "centerbias", Value: 0.0},
	}, "IG loss")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "IG loss (Terminal Plot - Ascending Order):")
	assert.NotContains(t, out, "\x1b[")
	assert.Less(t, strings.Index(out, "deepgaze"), strings.Index(out, "centerbias"))
	assert.Less(t, strings.Index(out, "centerbias"), strings.Index(out, "unisal"))
	assert.Contains(t, out, strings.Repeat("█", maxBarWidth))
	assert.Contains(t, out, "Scale: Min=-0.100000, Max=0.300000")
}

func TestPlotTerminal_Degenerate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PlotTerminal(&buf, nil, "empty"))
	assert.Contains(t, buf.String(), "empty: no data")

	buf.Reset()
	require.NoError(t, PlotTerminal(&buf, []Bar{{Label: "a", Value: 1}, {Label: "b", Value: 1}}, "flat"))
	assert.Contains(t, buf.String(), strings.Repeat("█", maxBarWidth/2)+"\n")
}

func TestPlotTerminal_NonFinite(t *testing.T) {
	var buf bytes.Buffer
	err := PlotTerminal(&buf, []Bar{
		{Label: "a", Value: 1},
		{Label: "b", Value: math.NaN()},
		{Label: "c", Value: 2},
		{Label: "d", Value: math.Inf(1)},
	}, "t")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "b     |        NaN |\n")
	assert.Contains(t, out, "d     |       +Inf |\n")
	assert.Less(t, strings.Index(out, "c     |"), strings.Index(out, "b     |"))
	assert.Contains(t, out, "Scale: Min=1.000000, Max=2.000000")

	buf.Reset()
	require.NoError(t, PlotTerminal(&buf, []Bar{{Label: "x", Value: math.NaN()}}, "only nan"))
	assert.Contains(t, buf.String(), "only nan: no data")
}
