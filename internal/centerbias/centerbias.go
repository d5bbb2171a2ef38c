// Package centerbias estimates the population center bias prior of a dataset
// directory and caches it on disk per (directory, sigma).
package centerbias

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/tensorplex-labs/saliency-bench/internal/saliency"
)

// DefaultSigma is the Gaussian kernel width used by the benchmarks unless told
// otherwise.
const DefaultSigma = 57.0

// Source provides the fixation maps of one dataset directory, numbered from 1
// to ImageCount.
type Source interface {
	Path() string
	ImageCount() int
	LoadFixationMap(imageNumber int) (*mat.Dense, error)
}

// Estimate sums every fixation map of src, smooths the sum with a Gaussian of
// standard deviation sigma and min-max scales the result into [0, 1]. The
// result is a prior, not a probability distribution: regularize it before
// using it as one.
func Estimate(src Source, sigma float64) (*mat.Dense, error) {
	if src.ImageCount() < 1 {
		return nil, fmt.Errorf("%w: no fixation maps in %s", saliency.ErrDomain, src.Path())
	}

	var sum *mat.Dense
	for imageNumber := 1; imageNumber <= src.ImageCount(); imageNumber++ {
		fixations, err := src.LoadFixationMap(imageNumber)
		if err != nil {
			return nil, fmt.Errorf("centerbias of %s: %w", src.Path(), err)
		}

		if sum == nil {
			sum = mat.DenseCopyOf(fixations)
			continue
		}

		sr, sc := sum.Dims()
		fr, fc := fixations.Dims()
		if sr != fr || sc != fc {
			return nil, fmt.Errorf("centerbias of %s: image %d: %w: %dx%d vs %dx%d",
				src.Path(), imageNumber, saliency.ErrShapeMismatch, fr, fc, sr, sc)
		}
		sum.Add(sum, fixations)
	}

	smoothed, err := saliency.GaussianFilter(sum, sigma)
	if err != nil {
		return nil, err
	}
	if saliency.IsFlat(smoothed) {
		return nil, fmt.Errorf("%w: centerbias of %s has no fixations", saliency.ErrDomain, src.Path())
	}

	log.Debug().Str("directory", src.Path()).Float64("sigma", sigma).Int("images", src.ImageCount()).
		Msg("estimated centerbias")

	return saliency.MinMaxScale(smoothed), nil
}
