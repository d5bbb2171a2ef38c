// Package dataset describes the on-disk benchmark dataset: one directory per
// image transformation, each holding the stimulus images, human fixation maps,
// empirical saliency maps, model predictions and cached centerbiases.
package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
)

// Reference is the untransformed directory every transformation is compared
// against.
const Reference = "Reference"

// DefaultImageCount is the number of images per transformation directory.
const DefaultImageCount = 100

// StandardTransformations lists the transformation directories of the
// benchmark dataset.
var StandardTransformations = []string{
	"Boundary",
	"Compression_1",
	"Compression_2",
	"ContrastChange_1",
	"ContrastChange_2",
	"Cropping_1",
	"Cropping_2",
	"Inversion",
	"Mirroring",
	"MotionBlur_1",
	"MotionBlur_2",
	"Noise_1",
	"Noise_2",
	Reference,
	"Rotation_1",
	"Rotation_2",
	"Shearing_1",
	"Shearing_2",
	"Shearing_3",
}

// Dataset is the explicit description of a dataset passed to every
// computation entrypoint.
type Dataset struct {
	Root            string
	Transformations []string
	ImageCount      int
}

// Default returns the standard dataset rooted at root.
func Default(root string) Dataset {
	return Dataset{
		Root:            root,
		Transformations: slices.Clone(StandardTransformations),
		ImageCount:      DefaultImageCount,
	}
}

// Validate checks that the dataset can be iterated.
func (ds Dataset) Validate() error {
	if ds.Root == "" {
		return errors.New("dataset: root is empty")
	}
	if ds.ImageCount < 1 {
		return fmt.Errorf("dataset: image count must be positive, got %d", ds.ImageCount)
	}
	if len(ds.Transformations) == 0 {
		return errors.New("dataset: no transformations")
	}
	seen := make(map[string]bool, len(ds.Transformations))
	for _, name := range ds.Transformations {
		if name == "" {
			return errors.New("dataset: empty transformation name")
		}
		if seen[name] {
			return fmt.Errorf("dataset: duplicate transformation %q", name)
		}
		seen[name] = true
	}
	return nil
}

// Directory returns the directory of the named transformation.
func (ds Dataset) Directory(name string) Directory {
	return Directory{
		path:   filepath.Join(ds.Root, name),
		name:   name,
		images: ds.ImageCount,
	}
}

// Directories returns every transformation directory in order.
func (ds Dataset) Directories() []Directory {
	dirs := make([]Directory, 0, len(ds.Transformations))
	for _, name := range ds.Transformations {
		dirs = append(dirs, ds.Directory(name))
	}
	return dirs
}

// Omitting returns a copy of the dataset without the named transformations.
func (ds Dataset) Omitting(names ...string) Dataset {
	out := ds
	out.Transformations = make([]string, 0, len(ds.Transformations))
	for _, name := range ds.Transformations {
		if !slices.Contains(names, name) {
			out.Transformations = append(out.Transformations, name)
		}
	}
	return out
}

// HasReference reports whether the Reference directory is part of the dataset.
func (ds Dataset) HasReference() bool {
	return slices.Contains(ds.Transformations, Reference)
}

// TransformationName returns the transformation a directory path belongs to.
func TransformationName(path string) string {
	return filepath.Base(filepath.Clean(path))
}
