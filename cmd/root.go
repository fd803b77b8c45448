package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/jpg2pdf/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewRootCmd() *cobra.Command {
	var cfgFile string
	var verbose bool

	v := config.NewViper()

	cmd := &cobra.Command{
		Use:   "jpg2pdf",
		Short: "Combine JPEG images into a single PDF",
		Long: `jpg2pdf collects images from directories or individual files and
combines them into one PDF, one image per page, in the order given.

It can be used from the command line or run as a small web service that
accepts image uploads and returns the PDF.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			setupLogging(verbose)
			return readConfig(v, cfgFile)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./jpg2pdf.yaml or ~/.config/jpg2pdf/jpg2pdf.yaml)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	// Add subcommands
	cmd.AddCommand(newConvertCmd(v))
	cmd.AddCommand(newListCmd(v))
	cmd.AddCommand(newServeCmd(v))

	return cmd
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func readConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("jpg2pdf")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "jpg2pdf"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	slog.Debug("Using config file", "path", v.ConfigFileUsed())
	return nil
}

// bindFlags maps command flags onto config keys. It runs from PreRunE so
// only the executing command's flags are bound.
func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", flag, err)
		}
	}
	return nil
}
