package benchmark

import (
	"errors"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/tensorplex-labs/saliency-bench/internal/report"
	"github.com/tensorplex-labs/saliency-bench/internal/saliency"
)

var errNoImages = errors.New("no image could be evaluated")

// FixationPoints scores every model on every transformation with NSS and with
// IG against the regularized centerbias of the directory.
func (r *Runner) FixationPoints() ([]report.FixationPointRow, error) {
	r.begin("fixation_points")
	models := r.Models()

	var rows []report.FixationPointRow
	for _, dir := range r.dataset.Directories() {
		cb, err := r.centerbias(dir, r.sigma)
		if err != nil {
			r.fail(dir.Name(), "", 0, err)
			continue
		}
		fixations := r.fixations(dir)

		for _, model := range models {
			var s series
			for n := 1; n <= r.images(dir); n++ {
				points, ok := fixations[n]
				if !ok {
					continue
				}
				nss, ig, err := scoreImage(dir.LoadPrediction, model, n, cb, points)
				if err != nil {
					r.fail(dir.Name(), model, n, err)
					continue
				}
				s.add(nss, ig)
			}
			if s.empty() {
				r.fail(dir.Name(), model, 0, errNoImages)
				continue
			}

			nss, ig := Summarize(s.nss), Summarize(s.ig)
			rows = append(rows, report.FixationPointRow{
				Transformation: dir.Name(),
				Model:          model,
				MeanNSS:        nss.Mean,
				MeanIG:         ig.Mean,
				MedianNSS:      nss.Median,
				MedianIG:       ig.Median,
				StdNSS:         nss.Std,
				StdIG:          ig.Std,
			})
			log.Debug().Str("transformation", dir.Name()).Str("model", model).
				Float64("mean_nss", nss.Mean).Float64("mean_ig", ig.Mean).Msg("Scored model")
		}
		log.Info().Str("transformation", dir.Name()).Msg("Fixation point benchmark done")
	}
	return rows, r.errs
}

type predictionLoader func(model string, n int, cb *mat.Dense) (*mat.Dense, error)

func scoreImage(load predictionLoader, model string, n int, cb *mat.Dense, points []saliency.Point) (nss, ig float64, err error) {
	prediction, err := load(model, n, cb)
	if err != nil {
		return 0, 0, err
	}
	if nss, err = saliency.NSS(prediction, points); err != nil {
		return 0, 0, err
	}
	if ig, err = saliency.IG(prediction, cb, points); err != nil {
		return 0, 0, err
	}
	return nss, ig, nil
}
