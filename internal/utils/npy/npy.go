// Package npy reads and writes 2D NumPy arrays as gonum matrices.
package npy

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

var ErrUnsupported = errors.New("npy: unsupported array")

// Read decodes a 2D float32 or float64 array. Singleton axes are squeezed, so
// (1, H, W) and (H, W, 1) arrays are accepted as H x W.
func Read(r io.Reader) (*mat.Dense, error) {
	nr, err := npyio.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("npy: read header: %w", err)
	}

	shape := squeeze(nr.Header.Descr.Shape)
	if len(shape) != 2 {
		return nil, fmt.Errorf("%w: shape %v", ErrUnsupported, nr.Header.Descr.Shape)
	}
	rows, cols := shape[0], shape[1]
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("%w: empty shape %v", ErrUnsupported, nr.Header.Descr.Shape)
	}

	var data []float64
	switch nr.Header.Descr.Type {
	case "<f8", "f8", "float64":
		if err := nr.Read(&data); err != nil {
			return nil, fmt.Errorf("npy: read float64 data: %w", err)
		}
	case "<f4", "f4", "float32":
		var raw []float32
		if err := nr.Read(&raw); err != nil {
			return nil, fmt.Errorf("npy: read float32 data: %w", err)
		}
		data = make([]float64, len(raw))
		for i, v := range raw {
			data[i] = float64(v)
		}
	default:
		return nil, fmt.Errorf("%w: dtype %q", ErrUnsupported, nr.Header.Descr.Type)
	}

	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %d values for shape %v", ErrUnsupported, len(data), shape)
	}

	if nr.Header.Descr.Fortran {
		return mat.DenseCopyOf(mat.NewDense(cols, rows, data).T()), nil
	}
	return mat.NewDense(rows, cols, data), nil
}

// ReadFile opens path and decodes it with Read.
func ReadFile(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// WriteFile stores m as a C-ordered float64 array.
func WriteFile(path string, m *mat.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := npyio.Write(f, m); err != nil {
		f.Close()
		return fmt.Errorf("npy: write %s: %w", path, err)
	}
	return f.Close()
}

// squeeze drops singleton axes. When fewer than two axes remain the result is
// padded back to 2D keeping the original orientation, so (H, 1) stays a
// column and (1, W) stays a row.
func squeeze(shape []int) []int {
	out := make([]int, 0, len(shape))
	last := -1
	for i, n := range shape {
		if n != 1 {
			out = append(out, n)
			last = i
		}
	}
	if len(out) >= 2 || len(shape) < 2 {
		return out
	}
	switch {
	case last < 0:
		return []int{1, 1}
	case last == len(shape)-1:
		return []int{1, out[0]}
	default:
		return []int{out[0], 1}
	}
}
