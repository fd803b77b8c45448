package report

import (
	"fmt"
	"os"
	"time"

	"github.com/lehigh-university-libraries/jpg2pdf/internal/models"
	"gopkg.in/yaml.v3"
)

// ConversionConfig records the settings a conversion ran with
type ConversionConfig struct {
	DPI           int    `yaml:"dpi"`
	OnDecodeError string `yaml:"on_decode_error"`
	Timestamp     string `yaml:"timestamp"`
}

// PageEntry is one input image in page order
type PageEntry struct {
	Page     int    `yaml:"page"`
	Filename string `yaml:"filename"`
	Path     string `yaml:"path"`
}

// SkippedEntry is an input image left out of the PDF
type SkippedEntry struct {
	Filename string `yaml:"filename"`
	Path     string `yaml:"path"`
	Reason   string `yaml:"reason"`
}

// ConversionReport is the complete summary of one batch
type ConversionReport struct {
	Config  ConversionConfig `yaml:"config"`
	Output  string           `yaml:"output"`
	Pages   []PageEntry      `yaml:"pages"`
	Skipped []SkippedEntry   `yaml:"skipped,omitempty"`
}

// Build summarizes a finished conversion of batch into output
func Build(batch *models.Batch, result *models.Result, output string, dpi int, policy string) *ConversionReport {
	r := &ConversionReport{
		Config: ConversionConfig{
			DPI:           dpi,
			OnDecodeError: policy,
			Timestamp:     time.Now().Format("2006-01-02_15-04-05"),
		},
		Output: output,
	}

	skipped := make(map[string]bool)
	if result != nil {
		for _, s := range result.Skipped {
			skipped[s.Ref.Path] = true
			r.Skipped = append(r.Skipped, SkippedEntry{
				Filename: s.Ref.Filename,
				Path:     s.Ref.Path,
				Reason:   s.Reason,
			})
		}
	}

	for _, ref := range batch.Refs() {
		if skipped[ref.Path] {
			continue
		}
		r.Pages = append(r.Pages, PageEntry{
			Page:     len(r.Pages) + 1,
			Filename: ref.Filename,
			Path:     ref.Path,
		})
	}

	return r
}

// SaveToYAML writes the report to path
func SaveToYAML(path string, r *ConversionReport) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write YAML file: %w", err)
	}

	return nil
}
