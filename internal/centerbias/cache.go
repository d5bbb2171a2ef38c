package centerbias

import (
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"

	"github.com/tensorplex-labs/saliency-bench/internal/utils/npy"
)

// Key identifies a cached centerbias.
type Key struct {
	Directory string
	Sigma     float64
}

// FormatSigma renders sigma the way it appears in cache file names: 57 for
// whole numbers, 2.5 otherwise.
func FormatSigma(sigma float64) string {
	return strconv.FormatFloat(sigma, 'f', -1, 64)
}

// ArrayPath is the file holding the centerbias grid.
func (k Key) ArrayPath() string {
	return filepath.Join(k.Directory, fmt.Sprintf("centerbias_%s.npy", FormatSigma(k.Sigma)))
}

// PreviewPath is the 8-bit grayscale rendering of the grid.
func (k Key) PreviewPath() string {
	return filepath.Join(k.Directory, fmt.Sprintf("centerbias_%s.png", FormatSigma(k.Sigma)))
}

// EstimateFunc computes a centerbias grid for a source.
type EstimateFunc func(src Source, sigma float64) (*mat.Dense, error)

// Cache persists estimated centerbiases next to the dataset directories. An
// entry is either absent or present; Invalidate brings it back to absent.
type Cache struct {
	estimate EstimateFunc
}

type CacheOption func(*Cache)

// WithEstimator replaces Estimate, mainly to observe recomputation in tests.
func WithEstimator(fn EstimateFunc) CacheOption {
	return func(c *Cache) {
		c.estimate = fn
	}
}

func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{estimate: Estimate}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Exists reports whether the grid for key is on disk.
func (c *Cache) Exists(key Key) bool {
	info, err := os.Stat(key.ArrayPath())
	return err == nil && info.Mode().IsRegular()
}

// Load reads the cached grid for key. A missing entry is reported with an
// error satisfying errors.Is(err, os.ErrNotExist).
func (c *Cache) Load(key Key) (*mat.Dense, error) {
	return npy.ReadFile(key.ArrayPath())
}

// Store writes grid and its preview image for key, replacing any previous
// entry.
func (c *Cache) Store(key Key, grid *mat.Dense) error {
	if err := npy.WriteFile(key.ArrayPath(), grid); err != nil {
		return err
	}
	if err := imaging.Save(preview(grid), key.PreviewPath()); err != nil {
		err = fmt.Errorf("centerbias preview %s: %w", key.PreviewPath(), err)
		if rmErr := os.Remove(key.ArrayPath()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = multierr.Append(err, rmErr)
		}
		return err
	}
	return nil
}

// Invalidate removes the cached grid and preview of key. Absent files are not
// an error.
func (c *Cache) Invalidate(key Key) error {
	var err error
	for _, path := range []string{key.ArrayPath(), key.PreviewPath()} {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = multierr.Append(err, rmErr)
		}
	}
	if err == nil {
		log.Debug().Str("directory", key.Directory).Float64("sigma", key.Sigma).Msg("invalidated centerbias")
	}
	return err
}

// GetOrCompute returns the cached grid for (src, sigma), estimating and
// storing it first when absent.
func (c *Cache) GetOrCompute(src Source, sigma float64) (*mat.Dense, error) {
	key := Key{Directory: src.Path(), Sigma: sigma}
	if c.Exists(key) {
		log.Debug().Str("path", key.ArrayPath()).Msg("centerbias cache hit")
		return c.Load(key)
	}

	grid, err := c.estimate(src, sigma)
	if err != nil {
		return nil, err
	}
	if err := c.Store(key, grid); err != nil {
		return nil, err
	}

	log.Info().Str("path", key.ArrayPath()).Msg("stored centerbias")
	return grid, nil
}

// EnsureAll makes sure every source has a cached centerbias for sigma. A
// failing source does not stop the others; all failures are returned
// combined.
func (c *Cache) EnsureAll(sigma float64, sources ...Source) error {
	var errs error
	for _, src := range sources {
		if _, err := c.GetOrCompute(src, sigma); err != nil {
			log.Warn().Err(err).Str("directory", src.Path()).Float64("sigma", sigma).
				Msg("failed to compute centerbias")
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// InvalidateAll drops the cached centerbias of every source for sigma.
func (c *Cache) InvalidateAll(sigma float64, sources ...Source) error {
	var errs error
	for _, src := range sources {
		errs = multierr.Append(errs, c.Invalidate(Key{Directory: src.Path(), Sigma: sigma}))
	}
	return errs
}

func preview(grid *mat.Dense) *image.Gray {
	rows, cols := grid.Dims()
	img := image.NewGray(image.Rect(0, 0, cols, rows))
	for r := range rows {
		for c := range cols {
			v := math.Max(0, math.Min(1, grid.At(r, c)))
			img.Pix[r*img.Stride+c] = uint8(v * 255)
		}
	}
	return img
}
