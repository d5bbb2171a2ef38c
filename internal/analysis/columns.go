// Package analysis summarizes benchmark result tables: resolution selection,
// outlier-filtered correlations between metrics, degradation along
// transformation chains and terminal bar charts.
package analysis

import (
	"errors"
	"fmt"

	"github.com/tensorplex-labs/saliency-bench/internal/report"
)

// Metric columns of a correlation table.
const (
	SSIM           = "ssim"
	CC             = "cc"
	KL             = "kl"
	ReferenceNSS   = "reference_nss"
	ReferenceIG    = "reference_ig"
	TransformedNSS = "transformed_nss"
	TransformedIG  = "transformed_ig"
)

var ErrUnknownMetric = errors.New("analysis: unknown metric")

// Value returns the named metric column of row.
func Value(row report.CorrelationRow, metric string) (float64, error) {
	switch metric {
	case SSIM:
		return row.SSIM, nil
	case CC:
		return row.CC, nil
	case KL:
		return row.KL, nil
	case ReferenceNSS:
		return row.ReferenceNSS, nil
	case ReferenceIG:
		return row.ReferenceIG, nil
	case TransformedNSS:
		return row.TransformedNSS, nil
	case TransformedIG:
		return row.TransformedIG, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
}

// Column groups the named metric by transformation, keeping table order.
func Column(rows []report.CorrelationRow, metric string) (map[string][]float64, []string, error) {
	values := make(map[string][]float64)
	var order []string
	for _, row := range rows {
		v, err := Value(row, metric)
		if err != nil {
			return nil, nil, err
		}
		if _, ok := values[row.Transformation]; !ok {
			order = append(order, row.Transformation)
		}
		values[row.Transformation] = append(values[row.Transformation], v)
	}
	return values, order, nil
}
