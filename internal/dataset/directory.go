package dataset

import (
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
	"gonum.org/v1/gonum/mat"

	"github.com/tensorplex-labs/saliency-bench/internal/centerbias"
	"github.com/tensorplex-labs/saliency-bench/internal/saliency"
	"github.com/tensorplex-labs/saliency-bench/internal/utils/npy"
)

// ErrMissingArtifact is returned when an expected dataset file does not exist.
var ErrMissingArtifact = errors.New("dataset: missing artifact")

// Subdirectories of a transformation directory.
const (
	ImagesDir    = "images"
	FixationsDir = "fixations"
	RealDir      = "real"
)

// Pseudo-model names for the empirical saliency maps and the centerbias
// baseline.
const (
	RealModel       = "real"
	CenterbiasModel = "centerbias"
)

// Directory is one transformation directory. Images are numbered from 1.
type Directory struct {
	path   string
	name   string
	images int
}

func (d Directory) Path() string    { return d.path }
func (d Directory) Name() string    { return d.name }
func (d Directory) ImageCount() int { return d.images }

// ImagePath returns the path of image n in subdirectory sub with extension ext.
func (d Directory) ImagePath(sub string, n int, ext string) string {
	return filepath.Join(d.path, sub, strconv.Itoa(n)+ext)
}

// LoadImage loads stimulus image n.
func (d Directory) LoadImage(n int) (image.Image, error) {
	return openImage(d.ImagePath(ImagesDir, n, ".png"))
}

// LoadFixationMap loads the fixation map of image n as grayscale in [0, 1].
func (d Directory) LoadFixationMap(n int) (*mat.Dense, error) {
	img, err := openImage(d.ImagePath(FixationsDir, n, ".png"))
	if err != nil {
		return nil, err
	}
	return grayscale(img), nil
}

// LoadFixations loads the fixation points of image n.
func (d Directory) LoadFixations(n int) ([]saliency.Point, error) {
	m, err := d.LoadFixationMap(n)
	if err != nil {
		return nil, err
	}
	return saliency.ToPoints(m), nil
}

// LoadSaliencyMap loads the prediction of model for image n. Predictions are
// stored as log densities; the result is exponentiated and regularized.
func (d Directory) LoadSaliencyMap(model string, n int) (*mat.Dense, error) {
	path := d.ImagePath(model, n, ".npy")
	if err := requireFile(path); err != nil {
		return nil, err
	}
	m, err := npy.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m.Apply(func(_, _ int, v float64) float64 { return math.Exp(v) }, m)
	return regularize(path, m)
}

// LoadRealSaliencyMap loads the empirical saliency map of image n, regularized.
func (d Directory) LoadRealSaliencyMap(n int) (*mat.Dense, error) {
	path := d.ImagePath(RealDir, n, ".png")
	img, err := openImage(path)
	if err != nil {
		return nil, err
	}
	return regularize(path, grayscale(img))
}

// CenterbiasKey returns the cache key of the centerbias of this directory.
func (d Directory) CenterbiasKey(sigma float64) centerbias.Key {
	return centerbias.Key{Directory: d.path, Sigma: sigma}
}

// LoadCenterbias loads the cached centerbias for sigma, regularized into a
// probability distribution.
func (d Directory) LoadCenterbias(sigma float64) (*mat.Dense, error) {
	path := d.CenterbiasKey(sigma).ArrayPath()
	if err := requireFile(path); err != nil {
		return nil, err
	}
	m, err := npy.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return regularize(path, m)
}

// LoadPrediction dispatches on the model name: the real and centerbias
// pseudo-models resolve to the empirical map and the given centerbias.
func (d Directory) LoadPrediction(model string, n int, cb *mat.Dense) (*mat.Dense, error) {
	switch model {
	case RealModel:
		return d.LoadRealSaliencyMap(n)
	case CenterbiasModel:
		if cb == nil {
			return nil, fmt.Errorf("%w: centerbias of %s", ErrMissingArtifact, d.path)
		}
		return cb, nil
	default:
		return d.LoadSaliencyMap(model, n)
	}
}

func requireFile(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrMissingArtifact, path)
	}
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrMissingArtifact, path)
	}
	return nil
}

func openImage(path string) (image.Image, error) {
	if err := requireFile(path); err != nil {
		return nil, err
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

// grayscale converts img with luma weights and scales it into [0, 1].
func grayscale(img image.Image) *mat.Dense {
	gray := imaging.Grayscale(img)
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	m := mat.NewDense(h, w, nil)
	for y := range h {
		row := gray.Pix[y*gray.Stride:]
		for x := range w {
			m.Set(y, x, float64(row[x*4])/255.0)
		}
	}
	return m
}

func regularize(path string, m *mat.Dense) (*mat.Dense, error) {
	p, err := saliency.Regularize(m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
