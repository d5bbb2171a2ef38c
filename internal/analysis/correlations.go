package analysis

import (
	"math"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/saliency-bench/internal/report"
)

// DefaultOutlierThreshold is the z-score from which a sample is dropped
// before fitting.
const DefaultOutlierThreshold = 3.0

// Pair names the x and y metric of a scatter.
type Pair struct {
	X, Y string
}

func (p Pair) String() string {
	return p.X + "," + p.Y
}

// CorrelationPairs are the metric pairs tabulated for every transformation:
// each image and prediction statistic against the transformed NSS and IG.
func CorrelationPairs() []Pair {
	var pairs []Pair
	for _, y := range []string{TransformedNSS, TransformedIG} {
		for _, x := range []string{SSIM, CC, KL, ReferenceNSS, ReferenceIG} {
			pairs = append(pairs, Pair{X: x, Y: y})
		}
	}
	return pairs
}

// TableRow holds one fit per pair for a transformation. A fit that could not
// be computed has a NaN correlation.
type TableRow struct {
	Transformation string
	Fits           []Line
}

// CorrelationTable fits every pair on the outlier-filtered samples of each
// transformation.
func CorrelationTable(rows []report.CorrelationRow, pairs []Pair, threshold float64) ([]TableRow, error) {
	columns := make(map[string]map[string][]float64)
	var order []string
	for _, metric := range metricsOf(pairs) {
		values, transformations, err := Column(rows, metric)
		if err != nil {
			return nil, err
		}
		columns[metric] = values
		order = transformations
	}

	table := make([]TableRow, 0, len(order))
	for _, transformation := range order {
		row := TableRow{Transformation: transformation}
		for _, pair := range pairs {
			x, y := FilterOutliers(columns[pair.X][transformation], columns[pair.Y][transformation], threshold)
			line, err := Fit(x, y)
			if err != nil {
				log.Debug().Err(err).Str("transformation", transformation).Stringer("pair", pair).Msg("No fit")
				line.CC = math.NaN()
			}
			row.Fits = append(row.Fits, line)
		}
		table = append(table, row)
	}
	return table, nil
}

func metricsOf(pairs []Pair) []string {
	var metrics []string
	for _, p := range pairs {
		for _, m := range []string{p.X, p.Y} {
			if !slices.Contains(metrics, m) {
				metrics = append(metrics, m)
			}
		}
	}
	return metrics
}

// ModelFit is the fit of one model on one transformation in a pairwise
// comparison. Curve holds the quadratic coefficients when requested and
// computable.
type ModelFit struct {
	Model string
	Line  Line
	Curve *[3]float64
}

// PairwiseFits is the per-transformation comparison of several models on the
// same pair of metrics.
type PairwiseFits struct {
	Transformation string
	Fits           []ModelFit
}

// PairwiseCorrelations fits pair for every model table on every
// transformation, in the transformation order of the first table.
func PairwiseCorrelations(tables map[string][]report.CorrelationRow, models []string, pair Pair, threshold float64, curve bool) ([]PairwiseFits, error) {
	type columns struct{ x, y map[string][]float64 }
	data := make(map[string]columns, len(models))
	var order []string
	for _, model := range models {
		xs, transformations, err := Column(tables[model], pair.X)
		if err != nil {
			return nil, err
		}
		ys, _, err := Column(tables[model], pair.Y)
		if err != nil {
			return nil, err
		}
		data[model] = columns{x: xs, y: ys}
		for _, t := range transformations {
			if !slices.Contains(order, t) {
				order = append(order, t)
			}
		}
	}

	out := make([]PairwiseFits, 0, len(order))
	for _, transformation := range order {
		entry := PairwiseFits{Transformation: transformation}
		for _, model := range models {
			x, y := FilterOutliers(data[model].x[transformation], data[model].y[transformation], threshold)
			fit := ModelFit{Model: model}
			line, err := Fit(x, y)
			if err != nil {
				line.CC = math.NaN()
			}
			fit.Line = line
			if curve {
				if coeffs, err := QuadraticFit(x, y); err == nil {
					fit.Curve = &coeffs
				}
			}
			entry.Fits = append(entry.Fits, fit)
		}
		out = append(out, entry)
	}
	return out, nil
}
