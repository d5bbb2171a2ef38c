package benchmark

import (
	"fmt"
	"image"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/tensorplex-labs/saliency-bench/internal/dataset"
	"github.com/tensorplex-labs/saliency-bench/internal/report"
	"github.com/tensorplex-labs/saliency-bench/internal/saliency"
)

// side is everything computed for one image of one directory.
type side struct {
	stimulus   func() (image.Image, error)
	prediction *mat.Dense
	nss        float64
	ig         float64
}

// CorrelationMetrics compares, image by image, every transformation against
// the Reference directory for model: SSIM of the stimuli, CC and KL of the
// predictions, and NSS and IG of each prediction on its own fixations with its
// own centerbias as IG baseline.
func (r *Runner) CorrelationMetrics(model string) ([]report.CorrelationRow, error) {
	r.begin("correlation_metrics")

	ref := r.dataset.Directory(dataset.Reference)
	refCB, err := r.centerbias(ref, r.sigma)
	if err != nil {
		r.fail(ref.Name(), model, 0, err)
		return nil, r.errs
	}
	refSides := make(map[int]*side)

	var rows []report.CorrelationRow
	for _, dir := range r.dataset.Omitting(dataset.Reference).Directories() {
		cb, err := r.centerbias(dir, r.sigma)
		if err != nil {
			r.fail(dir.Name(), model, 0, err)
			continue
		}

		for n := 1; n <= min(r.images(dir), r.images(ref)); n++ {
			refSide, ok := refSides[n]
			if !ok {
				if refSide, err = evaluate(ref, model, n, refCB); err != nil {
					r.fail(ref.Name(), model, n, err)
				}
				refSides[n] = refSide
			}
			if refSide == nil {
				r.fail(dir.Name(), model, n, fmt.Errorf("reference image %d unavailable", n))
				continue
			}

			row, err := compare(refSide, dir, model, n, cb)
			if err != nil {
				r.fail(dir.Name(), model, n, err)
				continue
			}
			rows = append(rows, row)
		}
		log.Info().Str("transformation", dir.Name()).Str("model", model).Msg("Correlation metrics done")
	}
	return rows, r.errs
}

func compare(ref *side, dir dataset.Directory, model string, n int, cb *mat.Dense) (report.CorrelationRow, error) {
	trans, err := evaluate(dir, model, n, cb)
	if err != nil {
		return report.CorrelationRow{}, err
	}

	refImage, err := ref.stimulus()
	if err != nil {
		return report.CorrelationRow{}, err
	}
	transImage, err := trans.stimulus()
	if err != nil {
		return report.CorrelationRow{}, err
	}
	ssim, err := saliency.SSIM(refImage, transImage)
	if err != nil {
		return report.CorrelationRow{}, fmt.Errorf("ssim: %w", err)
	}
	cc, err := saliency.CC(ref.prediction, trans.prediction)
	if err != nil {
		return report.CorrelationRow{}, fmt.Errorf("cc: %w", err)
	}
	kl, err := saliency.KL(ref.prediction, trans.prediction)
	if err != nil {
		return report.CorrelationRow{}, fmt.Errorf("kl: %w", err)
	}

	return report.CorrelationRow{
		Transformation: dir.Name(),
		Image:          n,
		SSIM:           ssim,
		CC:             cc,
		KL:             kl,
		ReferenceNSS:   ref.nss,
		ReferenceIG:    ref.ig,
		TransformedNSS: trans.nss,
		TransformedIG:  trans.ig,
	}, nil
}

func evaluate(dir dataset.Directory, model string, n int, cb *mat.Dense) (*side, error) {
	points, err := dir.LoadFixations(n)
	if err != nil {
		return nil, err
	}
	prediction, err := dir.LoadPrediction(model, n, cb)
	if err != nil {
		return nil, err
	}
	nss, err := saliency.NSS(prediction, points)
	if err != nil {
		return nil, fmt.Errorf("nss: %w", err)
	}
	ig, err := saliency.IG(prediction, cb, points)
	if err != nil {
		return nil, fmt.Errorf("ig: %w", err)
	}
	return &side{
		stimulus:   func() (image.Image, error) { return dir.LoadImage(n) },
		prediction: prediction,
		nss:        nss,
		ig:         ig,
	}, nil
}
