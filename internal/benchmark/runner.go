// Package benchmark runs the saliency evaluation benchmarks over a dataset and
// aggregates them into report rows.
package benchmark

import (
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"

	"github.com/tensorplex-labs/saliency-bench/internal/centerbias"
	"github.com/tensorplex-labs/saliency-bench/internal/dataset"
	"github.com/tensorplex-labs/saliency-bench/internal/report"
	"github.com/tensorplex-labs/saliency-bench/internal/saliency"
)

// Runner evaluates models over a dataset. Failures of single images or
// transformations are recorded and skipped; every run returns the rows it could
// compute together with the combined error of everything it skipped.
type Runner struct {
	dataset    dataset.Dataset
	cache      *centerbias.Cache
	imageCount int
	sigma      float64
	models     []string
	real       bool
	baseline   bool

	failures []report.Failure
	errs     error
}

type Option func(*Runner)

// WithImageCount limits every directory to its first n images.
func WithImageCount(n int) Option {
	return func(r *Runner) {
		r.imageCount = n
	}
}

// WithCenterbiasSigma sets the centerbias used as IG baseline.
func WithCenterbiasSigma(sigma float64) Option {
	return func(r *Runner) {
		r.sigma = sigma
	}
}

func WithModels(models ...string) Option {
	return func(r *Runner) {
		r.models = slices.Clone(models)
	}
}

// WithReal adds the empirical saliency maps as a pseudo-model.
func WithReal(include bool) Option {
	return func(r *Runner) {
		r.real = include
	}
}

// WithCenterbiasBaseline adds the centerbias itself as a pseudo-model.
func WithCenterbiasBaseline(include bool) Option {
	return func(r *Runner) {
		r.baseline = include
	}
}

func WithCache(cache *centerbias.Cache) Option {
	return func(r *Runner) {
		r.cache = cache
	}
}

func NewRunner(ds dataset.Dataset, opts ...Option) *Runner {
	r := &Runner{
		dataset:  ds,
		cache:    centerbias.NewCache(),
		sigma:    centerbias.DefaultSigma,
		real:     true,
		baseline: true,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Failures returns what the last run skipped.
func (r *Runner) Failures() []report.Failure {
	return slices.Clone(r.failures)
}

// Models returns the evaluated models including the enabled pseudo-models.
func (r *Runner) Models() []string {
	models := slices.Clone(r.models)
	if r.real {
		models = append(models, dataset.RealModel)
	}
	if r.baseline {
		models = append(models, dataset.CenterbiasModel)
	}
	return models
}

func (r *Runner) images(dir dataset.Directory) int {
	if r.imageCount > 0 && r.imageCount < dir.ImageCount() {
		return r.imageCount
	}
	return dir.ImageCount()
}

func (r *Runner) begin(run string) {
	r.failures = nil
	r.errs = nil
	log.Info().Str("run", run).Str("root", r.dataset.Root).Int("transformations", len(r.dataset.Transformations)).
		Msg("Starting benchmark")
}

func (r *Runner) fail(transformation, model string, image int, err error) {
	log.Warn().Err(err).Str("transformation", transformation).Str("model", model).Int("image", image).
		Msg("Skipping")
	r.failures = append(r.failures, report.Failure{
		Transformation: transformation,
		Model:          model,
		Image:          image,
		Error:          err.Error(),
	})

	scope := transformation
	if model != "" {
		scope += "/" + model
	}
	if image > 0 {
		scope = fmt.Sprintf("%s image %d", scope, image)
	}
	r.errs = multierr.Append(r.errs, fmt.Errorf("%s: %w", scope, err))
}

// centerbias makes sure the cached centerbias of dir exists and returns it
// regularized.
func (r *Runner) centerbias(dir dataset.Directory, sigma float64) (*mat.Dense, error) {
	if _, err := r.cache.GetOrCompute(dir, sigma); err != nil {
		return nil, fmt.Errorf("centerbias sigma %s: %w", centerbias.FormatSigma(sigma), err)
	}
	return dir.LoadCenterbias(sigma)
}

// fixations loads the fixation points of every image of dir. Images that
// fail to load are recorded and left out of the map.
func (r *Runner) fixations(dir dataset.Directory) map[int][]saliency.Point {
	out := make(map[int][]saliency.Point, r.images(dir))
	for n := 1; n <= r.images(dir); n++ {
		points, err := dir.LoadFixations(n)
		if err != nil {
			r.fail(dir.Name(), "", n, err)
			continue
		}
		out[n] = points
	}
	return out
}
