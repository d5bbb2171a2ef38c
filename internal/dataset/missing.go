package dataset

import (
	"errors"
	"path/filepath"
)

// MissingArtifact is one expected file that does not exist.
type MissingArtifact struct {
	Transformation string `json:"transformation"`
	Kind           string `json:"kind"`
	Image          int    `json:"image,omitempty"`
	Path           string `json:"path"`
}

// ReportMissing lists every artifact the benchmarks would need for models and
// the centerbias at sigma that is absent from the dataset.
func (ds Dataset) ReportMissing(models []string, sigma float64) []MissingArtifact {
	var missing []MissingArtifact
	for _, d := range ds.Directories() {
		check := func(kind string, n int, path string) {
			if err := requireFile(path); errors.Is(err, ErrMissingArtifact) {
				missing = append(missing, MissingArtifact{
					Transformation: d.name,
					Kind:           kind,
					Image:          n,
					Path:           path,
				})
			}
		}

		check(CenterbiasModel, 0, d.CenterbiasKey(sigma).ArrayPath())
		for n := 1; n <= d.images; n++ {
			check(ImagesDir, n, d.ImagePath(ImagesDir, n, ".png"))
			check(FixationsDir, n, d.ImagePath(FixationsDir, n, ".png"))
			check(RealDir, n, d.ImagePath(RealDir, n, ".png"))
			for _, model := range models {
				check(model, n, d.ImagePath(model, n, ".npy"))
			}
		}
	}
	return missing
}

// RelPath returns the artifact path relative to the dataset root.
func (m MissingArtifact) RelPath(root string) string {
	rel, err := filepath.Rel(root, m.Path)
	if err != nil {
		return m.Path
	}
	return rel
}
