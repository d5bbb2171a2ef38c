package benchmark

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/stat"

	"github.com/tensorplex-labs/saliency-bench/internal/report"
	"github.com/tensorplex-labs/saliency-bench/internal/saliency"
)

// CenterbiasComparison measures how much better the centerbias of width
// newSigma predicts the fixations than the one of width oldSigma: per image the
// NSS difference and the IG of the new centerbias over the old one.
func (r *Runner) CenterbiasComparison(newSigma, oldSigma float64) ([]report.CenterbiasComparisonRow, error) {
	r.begin("centerbias_comparison")
	return r.compareCenterbiases(newSigma, oldSigma), r.errs
}

func (r *Runner) compareCenterbiases(newSigma, oldSigma float64) []report.CenterbiasComparisonRow {
	var rows []report.CenterbiasComparisonRow
	for _, dir := range r.dataset.Directories() {
		newCB, err := r.centerbias(dir, newSigma)
		if err != nil {
			r.fail(dir.Name(), "", 0, err)
			continue
		}
		oldCB, err := r.centerbias(dir, oldSigma)
		if err != nil {
			r.fail(dir.Name(), "", 0, err)
			continue
		}

		fixations := r.fixations(dir)
		var s series
		for n := 1; n <= r.images(dir); n++ {
			points, ok := fixations[n]
			if !ok {
				continue
			}
			nss, ig, err := compareImage(newCB, oldCB, points)
			if err != nil {
				r.fail(dir.Name(), "", n, err)
				continue
			}
			s.add(nss, ig)
		}
		if s.empty() {
			r.fail(dir.Name(), "", 0, errNoImages)
			continue
		}

		nss, ig := Summarize(s.nss), Summarize(s.ig)
		rows = append(rows, report.CenterbiasComparisonRow{
			Transformation: dir.Name(),
			MeanNSS:        nss.Mean,
			MeanIG:         ig.Mean,
			MedianNSS:      nss.Median,
			MedianIG:       ig.Median,
			StdNSS:         nss.Std,
			StdIG:          ig.Std,
		})
	}
	return rows
}

func compareImage(newCB, oldCB saliency.Map, points []saliency.Point) (nss, ig float64, err error) {
	newNSS, err := saliency.NSS(newCB, points)
	if err != nil {
		return 0, 0, err
	}
	oldNSS, err := saliency.NSS(oldCB, points)
	if err != nil {
		return 0, 0, err
	}
	ig, err = saliency.IG(newCB, oldCB, points)
	if err != nil {
		return 0, 0, err
	}
	return newNSS - oldNSS, ig, nil
}

// CenterbiasRange searches the centerbias width: starting from 1, every width
// from 2 to maxSigma is compared against the best so far and adopted when the
// sum of its averaged NSS and IG improvements is positive. Each comparison table
// is written to outDir as "<sigma>_vs_<best>.csv". Returns the best width.
func (r *Runner) CenterbiasRange(maxSigma int, outDir string) (int, error) {
	r.begin("centerbias_range")

	best := 1
	for sigma := 2; sigma <= maxSigma; sigma++ {
		rows := r.compareCenterbiases(float64(sigma), float64(best))

		path := filepath.Join(outDir, fmt.Sprintf("%d_vs_%d.csv", sigma, best))
		if err := report.WriteCSVFile(path, rows); err != nil {
			r.errs = multierr.Append(r.errs, err)
		}

		aggregate := improvement(rows)
		log.Info().Int("sigma", sigma).Int("best", best).Float64("aggregate", aggregate).Msg("Compared centerbias widths")
		if aggregate > 0 {
			best = sigma
		}
	}
	return best, r.errs
}

// improvement is mean(mean_nss) + mean(mean_ig); NaN without rows.
func improvement(rows []report.CenterbiasComparisonRow) float64 {
	if len(rows) == 0 {
		return math.NaN()
	}
	nss := make([]float64, len(rows))
	ig := make([]float64, len(rows))
	for i, row := range rows {
		nss[i] = row.MeanNSS
		ig[i] = row.MeanIG
	}
	return stat.Mean(nss, nil) + stat.Mean(ig, nil)
}
