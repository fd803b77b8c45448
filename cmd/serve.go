package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/lehigh-university-libraries/jpg2pdf/internal/config"
	"github.com/lehigh-university-libraries/jpg2pdf/internal/handlers"
	"github.com/lehigh-university-libraries/jpg2pdf/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for image uploads",
		Long: `Starts the jpg2pdf web interface on the specified port.

The web interface lets you upload images in the browser and download them
combined into a single PDF. Uploads are kept in a private temporary
directory for the duration of the request only.`,
		Example: `  # Start server on default port 8000
  jpg2pdf serve

  # Start server on custom port
  jpg2pdf serve --port 3000`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(v, cmd, map[string]string{
				"port":     "server.port",
				"temp-dir": "server.temp_dir",
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}

			store, err := storage.New(cfg.Server.TempDir)
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					slog.Warn("Unable to remove temp directory", "dir", store.Root(), "err", err)
				}
			}()

			svc, err := cfg.NewConversionService()
			if err != nil {
				return err
			}

			handler := handlers.New(store, svc, cfg.Upload.AllowedTypes, cfg.Server.MaxUploadBytes)

			// Set up routes
			r := chi.NewRouter()
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: cfg.Server.AllowedOrigins,
				AllowedMethods: []string{"GET", "HEAD", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Accept", "Content-Type"},
			}))
			if cfg.Server.RateLimit > 0 {
				r.Use(httprate.LimitByIP(cfg.Server.RateLimit, time.Minute))
			}
			r.Mount("/", handler.Routes())

			addr := ":" + cfg.Server.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           r,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("jpg2pdf interface available", "addr", addr, "url", "http://localhost"+addr, "temp_dir", store.Root())
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringP("port", "p", "8000", "Port to listen on")
	cmd.Flags().String("temp-dir", "", "Directory for upload workspaces (default $TMPDIR/jpg2pdf)")

	return cmd
}
