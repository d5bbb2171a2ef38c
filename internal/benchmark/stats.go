package benchmark

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Summary holds the statistics reported for every metric series.
type Summary struct {
	Mean   float64
	Median float64
	Std    float64
}

// Summarize computes mean, median and population standard deviation of
// values. An empty series yields NaN everywhere.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		nan := math.NaN()
		return Summary{Mean: nan, Median: nan, Std: nan}
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	return Summary{Mean: mean, Median: median(values), Std: std}
}

// median averages the two middle values of an even-length series.
func median(values []float64) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// series accumulates the per-image NSS and IG values of one row.
type series struct {
	nss []float64
	ig  []float64
}

func (s *series) add(nss, ig float64) {
	s.nss = append(s.nss, nss)
	s.ig = append(s.ig, ig)
}

func (s *series) empty() bool {
	return len(s.nss) == 0
}
