package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/lehigh-university-libraries/jpg2pdf/internal/config"
	"github.com/lehigh-university-libraries/jpg2pdf/internal/conversion"
	"github.com/lehigh-university-libraries/jpg2pdf/internal/report"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newConvertCmd(v *viper.Viper) *cobra.Command {
	var output string
	var manifest string
	var reportPath string

	cmd := &cobra.Command{
		Use:   "convert [images or directories...]",
		Short: "Combine images into a single PDF",
		Long: `Combines images into one PDF, one image per page.

Each argument may be an image file or a directory. Directories are scanned
for images with a configured extension (.jpg and .jpeg by default) and their
images are added sorted by filename. Files are added as given. The order of
the arguments is the page order of the PDF.

An existing file at the output path is replaced.`,
		Example: `  # Convert every JPEG in a directory
  jpg2pdf convert ./scans -o book.pdf

  # Put a cover in front of a scanned directory
  jpg2pdf convert cover.jpg ./scans -o book.pdf

  # Read the page list from a manifest and abort on unreadable images
  jpg2pdf convert --manifest pages.yaml --on-error fail -o book.pdf`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(v, cmd, map[string]string{
				"dpi":        "conversion.dpi",
				"on-error":   "conversion.on_decode_error",
				"background": "conversion.background",
				"ext":        "collector.extensions",
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}

			batch, err := buildBatch(args, manifest, cfg.Collector.Extensions)
			if err != nil {
				return err
			}
			if batch.Len() == 0 {
				return fmt.Errorf("%w: pass image files, directories or --manifest", conversion.ErrEmptyBatch)
			}

			svc, err := cfg.NewConversionService()
			if err != nil {
				return err
			}

			output = ensurePDFExtension(output)
			result, err := svc.ConvertFile(batch, output)
			if err != nil {
				return fmt.Errorf("conversion failed: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, s := range result.Skipped {
				fmt.Fprintf(out, "skipped: %s (%s)\n", s.Ref.Filename, s.Reason)
			}
			fmt.Fprintf(out, "PDF saved to: %s (%d pages)\n", output, result.Pages)

			if reportPath != "" {
				r := report.Build(batch, result, output, cfg.Conversion.DPI, string(cfg.Policy()))
				if err := report.SaveToYAML(reportPath, r); err != nil {
					return err
				}
				fmt.Fprintf(out, "Report saved to: %s\n", reportPath)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Path of the PDF to write (required)")
	cmd.Flags().StringVar(&manifest, "manifest", "", "YAML file listing images in page order")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write a YAML summary of the conversion to this path")
	cmd.Flags().Int("dpi", 100, "Resolution recorded for each page")
	cmd.Flags().String("on-error", "skip", "What to do with an unreadable image: skip or fail")
	cmd.Flags().String("background", "#ffffff", "Color transparent pixels are flattened onto")
	cmd.Flags().StringSlice("ext", []string{".jpg", ".jpeg"}, "Extensions picked up from directories")

	_ = cmd.MarkFlagRequired("output")
	return cmd
}

// ensurePDFExtension appends .pdf when the path has no extension
func ensurePDFExtension(path string) string {
	if filepath.Ext(path) == "" {
		return path + ".pdf"
	}
	return path
}
