package dataset_test

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/tensorplex-labs/saliency-bench/internal/centerbias"
	"github.com/tensorplex-labs/saliency-bench/internal/dataset"
	"github.com/tensorplex-labs/saliency-bench/internal/dataset/datasettest"
	"github.com/tensorplex-labs/saliency-bench/internal/saliency"
)

func buildFixture(t *testing.T) (dataset.Dataset, datasettest.Fixture) {
	t.Helper()
	fx := datasettest.Default()
	ds, err := fx.Build(t.TempDir())
	require.NoError(t, err)
	return ds, fx
}

func TestDefault(t *testing.T) {
	ds := dataset.Default("/data")

	assert.Len(t, ds.Transformations, 19)
	assert.Equal(t, dataset.DefaultImageCount, ds.ImageCount)
	assert.True(t, ds.HasReference())
	assert.NoError(t, ds.Validate())

	ds.Transformations[0] = "changed"
	assert.Equal(t, "Boundary", dataset.StandardTransformations[0])
}

func TestOmitting(t *testing.T) {
	ds := dataset.Default("/data")
	without := ds.Omitting(dataset.Reference, "Boundary")

	assert.Len(t, without.Transformations, 17)
	assert.False(t, without.HasReference())
	assert.NotContains(t, without.Transformations, "Boundary")
	assert.Len(t, ds.Transformations, 19)

	dirs := without.Directories()
	require.Len(t, dirs, 17)
	assert.Equal(t, "Compression_1", dirs[0].Name())
	assert.Equal(t, filepath.Join("/data", "Compression_1"), dirs[0].Path())
	assert.Equal(t, 100, dirs[0].ImageCount())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		ds   dataset.Dataset
	}{
		{"empty root", dataset.Dataset{Transformations: []string{"a"}, ImageCount: 1}},
		{"no images", dataset.Dataset{Root: "r", Transformations: []string{"a"}}},
		{"no transformations", dataset.Dataset{Root: "r", ImageCount: 1}},
		{"duplicate", dataset.Dataset{Root: "r", Transformations: []string{"a", "a"}, ImageCount: 1}},
		{"empty name", dataset.Dataset{Root: "r", Transformations: []string{""}, ImageCount: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.ds.Validate())
		})
	}
}

func TestTransformationName(t *testing.T) {
	assert.Equal(t, "Noise_1", dataset.TransformationName("/data/Noise_1/"))
	assert.Equal(t, "Reference", dataset.TransformationName("data/Reference"))
}

func TestDirectory_Loaders(t *testing.T) {
	ds, fx := buildFixture(t)
	dir := ds.Directory(dataset.Reference)

	t.Run("fixation map", func(t *testing.T) {
		m, err := dir.LoadFixationMap(1)
		require.NoError(t, err)
		r, c := m.Dims()
		assert.Equal(t, fx.Rows, r)
		assert.Equal(t, fx.Cols, c)
		assert.Equal(t, 1.0, mat.Max(m))
		assert.Equal(t, 0.0, mat.Min(m))
	})

	t.Run("fixations", func(t *testing.T) {
		points, err := dir.LoadFixations(2)
		require.NoError(t, err)

		want := map[saliency.Point]bool{}
		for _, p := range datasettest.Fixations(fx.Rows, fx.Cols, 2) {
			want[saliency.Point{Row: p.Y, Col: p.X}] = true
		}
		require.Len(t, points, len(want))
		for _, p := range points {
			assert.True(t, want[p], "unexpected fixation %v", p)
		}
	})

	t.Run("saliency map", func(t *testing.T) {
		m, err := dir.LoadSaliencyMap("model_a", 1)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, mat.Sum(m), 1e-9)
		assert.Greater(t, mat.Min(m), 0.0)

		data := mat.DenseCopyOf(m).RawMatrix().Data
		center := fx.Rows/2*fx.Cols + fx.Cols/2
		assert.Greater(t, data[center], data[0])
	})

	t.Run("real saliency map", func(t *testing.T) {
		m, err := dir.LoadRealSaliencyMap(3)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, mat.Sum(m), 1e-9)
	})

	t.Run("image", func(t *testing.T) {
		img, err := dir.LoadImage(1)
		require.NoError(t, err)
		assert.Equal(t, fx.Cols, img.Bounds().Dx())
		assert.Equal(t, fx.Rows, img.Bounds().Dy())
	})

	t.Run("prediction dispatch", func(t *testing.T) {
		empirical, err := dir.LoadPrediction(dataset.RealModel, 1, nil)
		require.NoError(t, err)
		want, err := dir.LoadRealSaliencyMap(1)
		require.NoError(t, err)
		assert.True(t, mat.Equal(want, empirical))

		cb := mat.NewDense(1, 1, []float64{1})
		got, err := dir.LoadPrediction(dataset.CenterbiasModel, 1, cb)
		require.NoError(t, err)
		assert.Same(t, cb, got)

		_, err = dir.LoadPrediction(dataset.CenterbiasModel, 1, nil)
		assert.ErrorIs(t, err, dataset.ErrMissingArtifact)
	})
}

func TestDirectory_MissingArtifacts(t *testing.T) {
	ds, _ := buildFixture(t)
	dir := ds.Directory("Mirroring")

	_, err := dir.LoadSaliencyMap("unknown_model", 1)
	assert.ErrorIs(t, err, dataset.ErrMissingArtifact)

	_, err = dir.LoadFixationMap(ds.ImageCount + 1)
	assert.ErrorIs(t, err, dataset.ErrMissingArtifact)

	_, err = dir.LoadImage(0)
	assert.ErrorIs(t, err, dataset.ErrMissingArtifact)

	_, err = dir.LoadCenterbias(centerbias.DefaultSigma)
	assert.ErrorIs(t, err, dataset.ErrMissingArtifact)
}

func TestDirectory_LoadCenterbias(t *testing.T) {
	ds, _ := buildFixture(t)
	dir := ds.Directory(dataset.Reference)

	cache := centerbias.NewCache()
	_, err := cache.GetOrCompute(dir, 3)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir.Path(), "centerbias_3.npy"))
	assert.FileExists(t, filepath.Join(dir.Path(), "centerbias_3.png"))

	cb, err := dir.LoadCenterbias(3)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, mat.Sum(cb), 1e-9)
	assert.Greater(t, mat.Min(cb), 0.0)
}

func TestReportMissing(t *testing.T) {
	ds, _ := buildFixture(t)

	missing := ds.ReportMissing([]string{"model_a"}, 3)
	require.Len(t, missing, len(ds.Transformations))
	for _, m := range missing {
		assert.Equal(t, dataset.CenterbiasModel, m.Kind)
	}

	require.NoError(t, centerbias.NewCache().EnsureAll(3, sources(ds)...))
	dir := ds.Directory("Noise_1")
	require.NoError(t, os.Remove(dir.ImagePath(dataset.FixationsDir, 2, ".png")))

	missing = ds.ReportMissing([]string{"model_a", "model_b"}, 3)
	var kinds []string
	for _, m := range missing {
		kinds = append(kinds, m.Kind)
		if m.Kind == dataset.FixationsDir {
			assert.Equal(t, "Noise_1", m.Transformation)
			assert.Equal(t, 2, m.Image)
			assert.Equal(t, filepath.Join("Noise_1", "fixations", "2.png"), m.RelPath(ds.Root))
		}
	}
	assert.Contains(t, kinds, dataset.FixationsDir)
	assert.Len(t, missing, 1+len(ds.Transformations)*ds.ImageCount)
}

func TestArchive(t *testing.T) {
	ds, _ := buildFixture(t)

	var buf bytes.Buffer
	n, err := ds.Archive(&buf)
	require.NoError(t, err)
	assert.Equal(t, len(ds.Transformations)*ds.ImageCount*2, n)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, n)

	names := make([]string, 0, n)
	for _, f := range zr.File {
		names = append(names, f.Name)
		assert.Equal(t, zip.Deflate, f.Method)
	}
	assert.Contains(t, names, "Reference/images/1.png")
	assert.Contains(t, names, "Noise_1/fixations/3.png")
	for _, name := range names {
		assert.NotContains(t, name, "model_a")
		assert.NotContains(t, name, "real/")
	}

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	defer rc.Close()
	var content bytes.Buffer
	_, err = content.ReadFrom(rc)
	require.NoError(t, err)
	onDisk, err := os.ReadFile(filepath.Join(ds.Root, filepath.FromSlash(zr.File[0].Name)))
	require.NoError(t, err)
	assert.Equal(t, onDisk, content.Bytes())
}

func TestArchive_SkipsMissingDirectories(t *testing.T) {
	ds, _ := buildFixture(t)
	require.NoError(t, os.RemoveAll(filepath.Join(ds.Root, "Mirroring", dataset.ImagesDir)))

	path := filepath.Join(t.TempDir(), "dataset.zip")
	n, err := ds.ArchiveFile(path)
	require.NoError(t, err)
	assert.Equal(t, (len(ds.Transformations)*2-1)*ds.ImageCount, n)
	assert.FileExists(t, path)
}

func sources(ds dataset.Dataset) []centerbias.Source {
	var out []centerbias.Source
	for _, d := range ds.Directories() {
		out = append(out, d)
	}
	return out
}

func TestFixture_LogDensityNormalized(t *testing.T) {
	m := datasettest.LogDensity(10, 12, 3)
	m.Apply(func(_, _ int, v float64) float64 { return math.Exp(v) }, m)
	assert.InDelta(t, 1.0, floats.Sum(m.RawMatrix().Data), 1e-9)
}
