package cmd

import (
	"github.com/lehigh-university-libraries/jpg2pdf/internal/collector"
	"github.com/lehigh-university-libraries/jpg2pdf/internal/models"
)

// buildBatch collects the manifest entries first, then the arguments in order
func buildBatch(args []string, manifest string, extensions []string) (*models.Batch, error) {
	batch := models.NewBatch()

	if manifest != "" {
		refs, err := collector.LoadManifest(manifest)
		if err != nil {
			return nil, err
		}
		batch.Add(refs...)
	}

	if err := collector.Collect(batch, args, extensions); err != nil {
		return nil, err
	}

	return batch, nil
}
