package report

import (
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
)

// Failure is one skipped unit of work of a benchmark run. Image is zero when
// the whole transformation was skipped.
type Failure struct {
	Transformation string `json:"transformation"`
	Model          string `json:"model,omitempty"`
	Image          int    `json:"image,omitempty"`
	Error          string `json:"error"`
}

// FailureSummary is the JSON document written next to the result tables.
type FailureSummary struct {
	Run      string    `json:"run"`
	Count    int       `json:"count"`
	Failures []Failure `json:"failures"`
}

// WriteFailures writes the failures of run as JSON to path.
func WriteFailures(path, run string, failures []Failure) error {
	if failures == nil {
		failures = []Failure{}
	}
	data, err := sonic.Marshal(FailureSummary{Run: run, Count: len(failures), Failures: failures})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFailures reads a summary written by WriteFailures.
func ReadFailures(path string) (FailureSummary, error) {
	var summary FailureSummary
	data, err := os.ReadFile(path)
	if err != nil {
		return summary, err
	}
	err = sonic.Unmarshal(data, &summary)
	return summary, err
}
