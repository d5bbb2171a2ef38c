// Package datasettest builds small synthetic datasets on disk for tests.
package datasettest

import (
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/mat"

	"github.com/tensorplex-labs/saliency-bench/internal/dataset"
	"github.com/tensorplex-labs/saliency-bench/internal/utils/npy"
)

// Fixture describes a synthetic dataset.
type Fixture struct {
	Transformations []string
	Models          []string
	ImageCount      int
	Rows, Cols      int
	// Sizes overrides the grid shape of individual transformations.
	Sizes           map[string][2]int
}

// Default is a dataset with a reference, two transformations and one model.
func Default() Fixture {
	return Fixture{
		Transformations: []string{dataset.Reference, "Mirroring", "Noise_1"},
		Models:          []string{"model_a"},
		ImageCount:      3,
		Rows:            24,
		Cols:            32,
	}
}

// Build writes the fixture under root and returns the matching dataset.
func (f Fixture) Build(root string) (dataset.Dataset, error) {
	ds := dataset.Dataset{
		Root:            root,
		Transformations: f.Transformations,
		ImageCount:      f.ImageCount,
	}
	for i, d := range ds.Directories() {
		rows, cols := f.Rows, f.Cols
		if size, ok := f.Sizes[d.Name()]; ok {
			rows, cols = size[0], size[1]
		}
		for n := 1; n <= f.ImageCount; n++ {
			if err := save(d.ImagePath(dataset.ImagesDir, n, ".png"), Stimulus(rows, cols, n+i)); err != nil {
				return ds, err
			}
			if err := save(d.ImagePath(dataset.FixationsDir, n, ".png"), FixationImage(rows, cols, n)); err != nil {
				return ds, err
			}
			if err := save(d.ImagePath(dataset.RealDir, n, ".png"), Blob(rows, cols, 3+float64(n))); err != nil {
				return ds, err
			}
			for j, model := range f.Models {
				path := d.ImagePath(model, n, ".npy")
				if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
					return ds, err
				}
				if err := npy.WriteFile(path, LogDensity(rows, cols, 2+float64(n+j+i))); err != nil {
					return ds, err
				}
			}
		}
	}
	return ds, nil
}

// Fixations returns the deterministic fixation points of image n.
func Fixations(rows, cols, n int) []image.Point {
	pts := make([]image.Point, 0, 5)
	for k := range 5 {
		pts = append(pts, image.Point{
			X: (cols/2 + (n*7+k*5)%(cols/2+1) - cols/4 + cols) % cols,
			Y: (rows/2 + (n*3+k*11)%(rows/2+1) - rows/4 + rows) % rows,
		})
	}
	return pts
}

// FixationImage is a black image with white pixels at Fixations(rows, cols, n).
func FixationImage(rows, cols, n int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, cols, rows))
	for _, p := range Fixations(rows, cols, n) {
		img.SetGray(p.X, p.Y, color.Gray{Y: 255})
	}
	return img
}

// Stimulus is a smooth color gradient that varies with seed.
func Stimulus(rows, cols, seed int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, cols, rows))
	for y := range rows {
		for x := range cols {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8((x*255/cols + seed*13) % 256),
				G: uint8((y*255/rows + seed*29) % 256),
				B: uint8(((x+y)*127/(rows+cols) + seed*7) % 256),
				A: 255,
			})
		}
	}
	return img
}

// Blob is an 8-bit centered Gaussian bump of width sigma, never zero.
func Blob(rows, cols int, sigma float64) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, cols, rows))
	for y := range rows {
		for x := range cols {
			v := bump(y, x, rows, cols, sigma)
			img.SetGray(x, y, color.Gray{Y: uint8(5 + math.Round(250*v))})
		}
	}
	return img
}

// LogDensity is the logarithm of a normalized centered Gaussian bump.
func LogDensity(rows, cols int, sigma float64) *mat.Dense {
	m := mat.NewDense(rows, cols, nil)
	sum := 0.0
	for y := range rows {
		for x := range cols {
			v := bump(y, x, rows, cols, sigma) + 1e-3
			m.Set(y, x, v)
			sum += v
		}
	}
	m.Apply(func(_, _ int, v float64) float64 { return math.Log(v / sum) }, m)
	return m
}

func bump(y, x, rows, cols int, sigma float64) float64 {
	dy := float64(y) - float64(rows-1)/2
	dx := float64(x) - float64(cols-1)/2
	return math.Exp(-(dx*dx + dy*dy) / (2 * sigma * sigma))
}

func save(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return imaging.Save(img, path)
}
