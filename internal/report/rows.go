// Package report defines the result tables written by the benchmarks and the
// CSV and JSON codecs for them.
package report

// FixationPointRow aggregates NSS and IG of one model on one transformation.
type FixationPointRow struct {
	Transformation string  `csv:"transformation"`
	Model          string  `csv:"model"`
	MeanNSS        float64 `csv:"mean_nss"`
	MeanIG         float64 `csv:"mean_ig"`
	MedianNSS      float64 `csv:"median_nss"`
	MedianIG       float64 `csv:"median_ig"`
	StdNSS         float64 `csv:"std_nss"`
	StdIG          float64 `csv:"std_ig"`
}

// CenterbiasComparisonRow aggregates the NSS difference and the IG of a new
// centerbias against an old one on one transformation.
type CenterbiasComparisonRow struct {
	Transformation string  `csv:"transformation"`
	MeanNSS        float64 `csv:"mean_nss"`
	MeanIG         float64 `csv:"mean_ig"`
	MedianNSS      float64 `csv:"median_nss"`
	MedianIG       float64 `csv:"median_ig"`
	StdNSS         float64 `csv:"std_nss"`
	StdIG          float64 `csv:"std_ig"`
}

// CorrelationRow holds the per-image comparison of a transformed image and
// its prediction against the reference.
type CorrelationRow struct {
	Transformation string  `csv:"transformation"`
	Image          int     `csv:"image"`
	SSIM           float64 `csv:"ssim"`
	CC             float64 `csv:"cc"`
	KL             float64 `csv:"kl"`
	ReferenceNSS   float64 `csv:"reference_nss"`
	ReferenceIG    float64 `csv:"reference_ig"`
	TransformedNSS float64 `csv:"transformed_nss"`
	TransformedIG  float64 `csv:"transformed_ig"`
}

// Row is any of the result table records.
type Row interface {
	FixationPointRow | CenterbiasComparisonRow | CorrelationRow
}

// Models returns the distinct model names of rows in first-seen order.
func Models(rows []FixationPointRow) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range rows {
		if !seen[r.Model] {
			seen[r.Model] = true
			out = append(out, r.Model)
		}
	}
	return out
}

// Lookup returns the row of model on transformation.
func Lookup(rows []FixationPointRow, transformation, model string) (FixationPointRow, bool) {
	for _, r := range rows {
		if r.Transformation == transformation && r.Model == model {
			return r, true
		}
	}
	return FixationPointRow{}, false
}
