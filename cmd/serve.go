package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/modaworks/curator/internal/classify"
	"github.com/modaworks/curator/internal/gemini"
	"github.com/modaworks/curator/internal/handlers"
	"github.com/modaworks/curator/internal/images"
	"github.com/modaworks/curator/internal/pipeline"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		port        string
		model       string
		concurrency int
		maxSide     int
		outputDir   string
		selectedDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the classification job API",
		Long: `Starts an HTTP API that accepts product directories as classification jobs
and tracks their lifecycle (queued, running, succeeded, failed). Job results
carry the full per-image classification and the selected slots.`,
		Example: `  # Start server on default port 8888
  curator serve

  # Start server on custom port
  curator serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := gemini.New()
			if err != nil {
				return err
			}
			if model == "" {
				model = gemini.DefaultModel()
			}

			p := pipeline.New(provider, pipeline.Options{
				Model:       model,
				Concurrency: concurrency,
				MaxSide:     maxSide,
				OutputDir:   outputDir,
				SelectedDir: selectedDir,
			})
			handler := handlers.New(p)

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/jobs", handler.HandleJobs)
			mux.HandleFunc("/api/jobs/", handler.HandleJobDetail)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Curator job API available", "addr", addr, "url", "http://localhost"+addr)
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

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().StringVar(&model, "model", "", "Vision model to use (default: GEMINI_MODEL or gemini-2.5-flash)")
	cmd.Flags().IntVar(&concurrency, "concurrency", classify.DefaultConcurrency, "Max classification requests in flight per product")
	cmd.Flags().IntVar(&maxSide, "max-side", images.DefaultMaxSide, "Downscale images to this longest edge before upload (0 disables)")
	cmd.Flags().StringVar(&outputDir, "output", "output/classifications", "Directory for classification JSON and audit logs")
	cmd.Flags().StringVar(&selectedDir, "selected-dir", "output/selected", "Directory selected images are copied to")

	return cmd
}
