package cmd

import (
	"fmt"

	"github.com/lehigh-university-libraries/jpg2pdf/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newListCmd(v *viper.Viper) *cobra.Command {
	var manifest string

	cmd := &cobra.Command{
		Use:   "list [images or directories...]",
		Short: "Show the pages a conversion would produce",
		Long: `Lists the images that convert would use for the same arguments, in
page order, without writing a PDF.`,
		Example: `  jpg2pdf list ./scans
  jpg2pdf list cover.jpg ./scans --ext .jpg,.png`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(v, cmd, map[string]string{
				"ext": "collector.extensions",
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

			out := cmd.OutOrStdout()
			for i, ref := range batch.Refs() {
				fmt.Fprintf(out, "%4d  %s\n", i+1, ref.Filename)
			}
			fmt.Fprintf(out, "%d files selected\n", batch.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&manifest, "manifest", "", "YAML file listing images in page order")
	cmd.Flags().StringSlice("ext", []string{".jpg", ".jpeg"}, "Extensions picked up from directories")

	return cmd
}
