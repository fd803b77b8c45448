// Package collector builds conversion batches from directories, explicit
// file selections and manifest files.
package collector

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lehigh-university-libraries/jpg2pdf/internal/models"
)

// DefaultExtensions are the file extensions picked up by a directory scan
var DefaultExtensions = []string{".jpg", ".jpeg"}

// ErrNoMatchingFiles is returned when a directory scan finds no images
var ErrNoMatchingFiles = errors.New("no matching image files found")

// ScanDirectory returns the images in dir whose names end in one of
// extensions (case-insensitive), sorted by filename. Subdirectories are not
// descended into.
func ScanDirectory(dir string, extensions []string) ([]models.ImageReference, error) {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if HasExtension(entry.Name(), extensions) {
			names = append(names, entry.Name())
		}
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoMatchingFiles)
	}

	sort.Strings(names)

	refs := make([]models.ImageReference, 0, len(names))
	for _, name := range names {
		refs = append(refs, models.NewImageReference(filepath.Join(dir, name)))
	}

	slog.Debug("Scanned directory", "dir", dir, "matched", len(refs), "entries", len(entries))
	return refs, nil
}

// FromPaths turns an explicit selection into references, keeping the order given
func FromPaths(paths []string) []models.ImageReference {
	refs := make([]models.ImageReference, 0, len(paths))
	for _, p := range paths {
		refs = append(refs, models.NewImageReference(p))
	}
	return refs
}

// Collect resolves command-line arguments into a batch. Directories are
// scanned and sorted, files are taken verbatim, and arguments are processed
// in the order given. A directory without matches is logged and skipped,
// leaving the batch unchanged.
func Collect(batch *models.Batch, args []string, extensions []string) error {
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", arg, err)
		}

		if !info.IsDir() {
			batch.Add(models.NewImageReference(arg))
			continue
		}

		refs, err := ScanDirectory(arg, extensions)
		if errors.Is(err, ErrNoMatchingFiles) {
			slog.Warn("No image files found in directory", "dir", arg, "extensions", extensions)
			continue
		}
		if err != nil {
			return err
		}

		batch.Add(refs...)
		slog.Info("Imported images from directory", "dir", arg, "count", len(refs))
	}

	return nil
}

// HasExtension reports whether name ends in one of extensions, ignoring case
func HasExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}
