package analysis

import (
	"errors"
	"fmt"

	"github.com/tensorplex-labs/saliency-bench/internal/dataset"
	"github.com/tensorplex-labs/saliency-bench/internal/report"
)

// Metrics of a fixation point table usable for degradation.
const (
	MetricNSS = "nss"
	MetricIG  = "ig"
)

var (
	ErrMissingRow = errors.New("analysis: missing row")
	ErrDegenerate = errors.New("analysis: real and centerbias performance coincide")
)

// StandardChains are the transformation chains from the reference to
// increasingly strong versions of each transformation.
func StandardChains() [][]string {
	return [][]string{
		{dataset.Reference, "Boundary"},
		{dataset.Reference, "Compression_1", "Compression_2"},
		{dataset.Reference, "ContrastChange_1", "ContrastChange_2"},
		{dataset.Reference, "Cropping_1", "Cropping_2"},
		{dataset.Reference, "Inversion"},
		{dataset.Reference, "Mirroring"},
		{dataset.Reference, "MotionBlur_1", "MotionBlur_2"},
		{dataset.Reference, "Noise_1", "Noise_2"},
		{dataset.Reference, "Rotation_1", "Rotation_2"},
		{dataset.Reference, "Shearing_1", "Shearing_2", "Shearing_3"},
	}
}

// Degradation is the performance of a model along a chain relative to the
// centerbias (0) and the empirical saliency maps (1).
type Degradation struct {
	Model string
	// Values holds the raw metric for every step of the chain.
	Values  []float64
	Initial float64
	Final   float64
	Loss    float64
}

// Degrade measures, for every model, how much of the gap between centerbias
// and real performance is lost from the first to the last step of chain.
// Relative performance is (v - centerbias) / (real - centerbias).
func Degrade(rows []report.FixationPointRow, models []string, metric string, chain []string) ([]Degradation, error) {
	if len(chain) == 0 {
		return nil, fmt.Errorf("%w: empty chain", ErrMissingRow)
	}
	first, last := chain[0], chain[len(chain)-1]

	relative := func(model, transformation string) (float64, error) {
		v, err := metricValue(rows, transformation, model, metric)
		if err != nil {
			return 0, err
		}
		cb, err := metricValue(rows, transformation, dataset.CenterbiasModel, metric)
		if err != nil {
			return 0, err
		}
		empirical, err := metricValue(rows, transformation, dataset.RealModel, metric)
		if err != nil {
			return 0, err
		}
		if empirical == cb {
			return 0, fmt.Errorf("%w on %s", ErrDegenerate, transformation)
		}
		return (v - cb) / (empirical - cb), nil
	}

	out := make([]Degradation, 0, len(models))
	for _, model := range models {
		d := Degradation{Model: model}
		for _, transformation := range chain {
			v, err := metricValue(rows, transformation, model, metric)
			if err != nil {
				return nil, err
			}
			d.Values = append(d.Values, v)
		}

		var err error
		if d.Initial, err = relative(model, first); err != nil {
			return nil, err
		}
		if d.Final, err = relative(model, last); err != nil {
			return nil, err
		}
		d.Loss = d.Initial - d.Final
		out = append(out, d)
	}
	return out, nil
}

func metricValue(rows []report.FixationPointRow, transformation, model, metric string) (float64, error) {
	row, ok := report.Lookup(rows, transformation, model)
	if !ok {
		return 0, fmt.Errorf("%w: %s on %s", ErrMissingRow, model, transformation)
	}
	switch metric {
	case MetricNSS:
		return row.MeanNSS, nil
	case MetricIG:
		return row.MeanIG, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
}
