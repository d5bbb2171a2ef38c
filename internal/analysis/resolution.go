package analysis

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/tensorplex-labs/saliency-bench/internal/report"
)

// ResolutionSummary averages the fixation point statistics of one model over
// all transformations.
type ResolutionSummary struct {
	Model      string
	Transforms int
	MeanNSS    float64
	MeanIG     float64
	MedianNSS  float64
	MedianIG   float64
	StdNSS     float64
	StdIG      float64
}

// BestResolution summarizes every model whose name starts with prefix,
// best mean NSS first. Model names encode the input resolution, so this ranks
// the resolutions a model family was run at.
func BestResolution(rows []report.FixationPointRow, prefix string) []ResolutionSummary {
	columns := make(map[string]*[6][]float64)
	var models []string
	for _, row := range rows {
		if !strings.HasPrefix(row.Model, prefix) {
			continue
		}
		c, ok := columns[row.Model]
		if !ok {
			c = new([6][]float64)
			columns[row.Model] = c
			models = append(models, row.Model)
		}
		for i, v := range []float64{row.MeanNSS, row.MeanIG, row.MedianNSS, row.MedianIG, row.StdNSS, row.StdIG} {
			c[i] = append(c[i], v)
		}
	}

	out := make([]ResolutionSummary, 0, len(models))
	for _, model := range models {
		c := columns[model]
		out = append(out, ResolutionSummary{
			Model:      model,
			Transforms: len(c[0]),
			MeanNSS:    stat.Mean(c[0], nil),
			MeanIG:     stat.Mean(c[1], nil),
			MedianNSS:  stat.Mean(c[2], nil),
			MedianIG:   stat.Mean(c[3], nil),
			StdNSS:     stat.Mean(c[4], nil),
			StdIG:      stat.Mean(c[5], nil),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MeanNSS > out[j].MeanNSS
	})
	return out
}
