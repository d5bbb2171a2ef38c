package saliency

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SSIM window and stabilization constants.
const (
	SSIMWindow = 7
	SSIMK1     = 0.01
	SSIMK2     = 0.03
)

// SSIM computes the mean structural similarity between a reference image and
// a transformed version of it. The index is computed per color channel and
// averaged; the dynamic range is taken from the transformed image.
func SSIM(reference, transformed image.Image) (float64, error) {
	if reference.Bounds().Empty() || transformed.Bounds().Empty() {
		return 0, ErrEmptyMap
	}
	ref := Channels(reference)
	trans := Channels(transformed)
	if err := checkSameShape(ref[0], trans[0]); err != nil {
		return 0, err
	}

	lo, hi := trans[0].At(0, 0), trans[0].At(0, 0)
	for _, ch := range trans {
		lo = min(lo, mat.Min(ch))
		hi = max(hi, mat.Max(ch))
	}

	var total float64
	for i := range ref {
		s, err := StructuralSimilarity(ref[i], trans[i], hi-lo)
		if err != nil {
			return 0, err
		}
		total += s
	}
	return total / float64(len(ref)), nil
}

// Channels splits img into its red, green and blue planes with values in
// [0, 255]. An empty image yields nil.
func Channels(img image.Image) []*mat.Dense {
	nrgba := imaging.Clone(img)
	w, h := nrgba.Rect.Dx(), nrgba.Rect.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	planes := make([][]float64, 3)
	for i := range planes {
		planes[i] = make([]float64, w*h)
	}
	for y := range h {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := range w {
			for ch := range 3 {
				planes[ch][y*w+x] = float64(row[x*4+ch])
			}
		}
	}

	channels := make([]*mat.Dense, 3)
	for i, p := range planes {
		channels[i] = mat.NewDense(h, w, p)
	}
	return channels
}

// StructuralSimilarity computes the mean SSIM of two single channel grids over
// a SSIMWindow x SSIMWindow uniform window, using sample covariances and
// ignoring the half window border where the window leaves the grid.
func StructuralSimilarity(a, b Map, dataRange float64) (float64, error) {
	if err := checkSameShape(a, b); err != nil {
		return 0, err
	}
	rows, cols := a.Dims()
	if rows < SSIMWindow || cols < SSIMWindow {
		return 0, fmt.Errorf("%w: %dx%d", ErrTooSmall, rows, cols)
	}
	if dataRange <= 0 {
		return 0, fmt.Errorf("%w: data range %v", ErrZeroVariance, dataRange)
	}

	x := flatten(a)
	y := flatten(b)
	if err := checkFinite(x); err != nil {
		return 0, err
	}
	if err := checkFinite(y); err != nil {
		return 0, err
	}

	xx := make([]float64, len(x))
	yy := make([]float64, len(y))
	xy := make([]float64, len(x))
	floats.MulTo(xx, x, x)
	floats.MulTo(yy, y, y)
	floats.MulTo(xy, x, y)

	ux := UniformFilter(mat.NewDense(rows, cols, x), SSIMWindow)
	uy := UniformFilter(mat.NewDense(rows, cols, y), SSIMWindow)
	uxx := UniformFilter(mat.NewDense(rows, cols, xx), SSIMWindow)
	uyy := UniformFilter(mat.NewDense(rows, cols, yy), SSIMWindow)
	uxy := UniformFilter(mat.NewDense(rows, cols, xy), SSIMWindow)

	np := float64(SSIMWindow * SSIMWindow)
	covNorm := np / (np - 1)
	c1 := (SSIMK1 * dataRange) * (SSIMK1 * dataRange)
	c2 := (SSIMK2 * dataRange) * (SSIMK2 * dataRange)

	pad := (SSIMWindow - 1) / 2
	var total float64
	var n int
	for r := pad; r < rows-pad; r++ {
		for c := pad; c < cols-pad; c++ {
			mx, my := ux.At(r, c), uy.At(r, c)
			vx := covNorm * (uxx.At(r, c) - mx*mx)
			vy := covNorm * (uyy.At(r, c) - my*my)
			vxy := covNorm * (uxy.At(r, c) - mx*my)

			num := (2*mx*my + c1) * (2*vxy + c2)
			den := (mx*mx + my*my + c1) * (vx + vy + c2)
			total += num / den
			n++
		}
	}

	return total / float64(n), nil
}
