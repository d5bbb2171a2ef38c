package dataset

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog/log"
)

// ArchiveLevel is the deflate level used for dataset archives.
const ArchiveLevel = 6

// ArchivedDirs are the subdirectories of every transformation that go into an
// archive.
var ArchivedDirs = []string{ImagesDir, FixationsDir}

// Archive writes a zip of the images and fixations of every transformation to
// w. Entry names are relative to the dataset root and use forward slashes.
// Transformations without the subdirectory are skipped.
func (ds Dataset) Archive(w io.Writer) (int, error) {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, ArchiveLevel)
	})

	count := 0
	for _, d := range ds.Directories() {
		for _, sub := range ArchivedDirs {
			dir := filepath.Join(d.path, sub)
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				log.Warn().Str("dir", dir).Msg("Skipping missing directory")
				continue
			}
			err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !entry.Type().IsRegular() {
					return nil
				}
				if err := ds.addFile(zw, path); err != nil {
					return err
				}
				count++
				return nil
			})
			if err != nil {
				zw.Close()
				return count, fmt.Errorf("failed to archive %s: %w", dir, err)
			}
		}
	}

	if err := zw.Close(); err != nil {
		return count, fmt.Errorf("failed to finish archive: %w", err)
	}
	log.Info().Int("files", count).Msg("Dataset archived")
	return count, nil
}

// ArchiveFile writes the archive to path.
func (ds Dataset) ArchiveFile(path string) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := ds.Archive(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

func (ds Dataset) addFile(zw *zip.Writer, path string) error {
	rel, err := filepath.Rel(ds.Root, path)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = filepath.ToSlash(rel)
	header.Method = zip.Deflate

	dst, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	_, err = io.Copy(dst, src)
	return err
}
