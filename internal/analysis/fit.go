package analysis

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientData is returned when a fit has fewer than the required
// points or a constant series.
var ErrInsufficientData = errors.New("analysis: insufficient data")

// ZScores standardizes values with their mean and population standard
// deviation. A constant series has no outliers and yields zeros.
func ZScores(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if std == 0 {
		return out
	}
	for i, v := range values {
		out[i] = stat.StdScore(v, mean, std)
	}
	return out
}

// FilterOutliers drops every pair whose z-score on either axis reaches
// threshold. Only large values count as outliers.
func FilterOutliers(x, y []float64, threshold float64) ([]float64, []float64) {
	zx, zy := ZScores(x), ZScores(y)
	fx := make([]float64, 0, len(x))
	fy := make([]float64, 0, len(y))
	for i := range min(len(x), len(y)) {
		if zx[i] < threshold && zy[i] < threshold {
			fx = append(fx, x[i])
			fy = append(fy, y[i])
		}
	}
	return fx, fy
}

// Line is the Pearson correlation and least squares line of y over x.
type Line struct {
	N         int
	CC        float64
	Slope     float64
	Intercept float64
}

// At evaluates the fitted line.
func (l Line) At(x float64) float64 {
	return l.Slope*x + l.Intercept
}

func checkSeries(x, y []float64, need int) error {
	if len(x) != len(y) {
		return fmt.Errorf("%w: %d x values, %d y values", ErrInsufficientData, len(x), len(y))
	}
	if len(x) < need {
		return fmt.Errorf("%w: %d points, need %d", ErrInsufficientData, len(x), need)
	}
	if stat.PopVariance(x, nil) == 0 {
		return fmt.Errorf("%w: constant x", ErrInsufficientData)
	}
	return nil
}

// Fit correlates x and y and fits y = slope*x + intercept.
func Fit(x, y []float64) (Line, error) {
	if err := checkSeries(x, y, 2); err != nil {
		return Line{}, err
	}
	intercept, slope := stat.LinearRegression(x, y, nil, false)
	line := Line{N: len(x), Slope: slope, Intercept: intercept}
	if stat.PopVariance(y, nil) == 0 {
		return line, fmt.Errorf("%w: constant y", ErrInsufficientData)
	}
	line.CC = stat.Correlation(x, y, nil)
	return line, nil
}

// QuadraticFit returns the least squares coefficients a, b, c of
// y = a*x^2 + b*x + c.
func QuadraticFit(x, y []float64) ([3]float64, error) {
	var coeffs [3]float64
	if err := checkSeries(x, y, 3); err != nil {
		return coeffs, err
	}

	vandermonde := mat.NewDense(len(x), 3, nil)
	for i, v := range x {
		vandermonde.SetRow(i, []float64{v * v, v, 1})
	}
	var solution mat.Dense
	if err := solution.Solve(vandermonde, mat.NewVecDense(len(y), y)); err != nil {
		return coeffs, fmt.Errorf("%w: %v", ErrInsufficientData, err)
	}
	for i := range coeffs {
		coeffs[i] = solution.At(i, 0)
	}
	return coeffs, nil
}
