package collector

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lehigh-university-libraries/jpg2pdf/internal/models"
	"gopkg.in/yaml.v3"
)

// Manifest lists the files of a batch in page order
type Manifest struct {
	Files []string `yaml:"files"`
}

// LoadManifest reads a YAML manifest. Relative entries are resolved against
// the directory holding the manifest.
func LoadManifest(path string) ([]models.ImageReference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	if len(manifest.Files) == 0 {
		return nil, fmt.Errorf("manifest %s lists no files", path)
	}

	base := filepath.Dir(path)
	paths := make([]string, 0, len(manifest.Files))
	for _, f := range manifest.Files {
		if !filepath.IsAbs(f) {
			f = filepath.Join(base, f)
		}
		paths = append(paths, f)
	}

	return FromPaths(paths), nil
}
