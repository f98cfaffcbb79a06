package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/partstream/partstream/internal/config"
	"github.com/partstream/partstream/pkg/middleware"
	"github.com/partstream/partstream/pkg/upload"
)

func serveCmd() *cobra.Command {
	var (
		addr       string
		dir        string
		maxSize    int64
		field      string
		overwrite  bool
		configPath string
		logLevel   string
		logJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the upload server",
		Long: `Start the standalone upload server.

Configuration is read from partstream.json in the working directory (or the
file given with --config) and overridden by flags. The server exposes:

  POST /upload    multipart upload endpoint
  GET  /healthz   liveness probe
  GET  /metrics   Prometheus metrics (when enabled)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadServeConfig(configPath)
			if err != nil {
				return err
			}

			// Flags override the config file.
			flags := cmd.Flags()
			if flags.Changed("dir") {
				cfg.Upload.Directory = dir
			}
			if flags.Changed("max-size") {
				cfg.Upload.MaxFileSize = maxSize
			}
			if flags.Changed("field") {
				cfg.Upload.Field = field
			}
			if flags.Changed("overwrite") {
				cfg.Upload.Overwrite = overwrite
			}
			if flags.Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if flags.Changed("log-json") && logJSON {
				cfg.Log.Format = "json"
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			listenAddr := cfg.Addr()
			if flags.Changed("addr") {
				listenAddr = addr
			}

			return runServe(listenAddr, cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (host:port)")
	cmd.Flags().StringVar(&dir, "dir", "", "Upload destination directory")
	cmd.Flags().Int64Var(&maxSize, "max-size", 0, "Per-file size limit in bytes")
	cmd.Flags().StringVar(&field, "field", "", "Accept only this multipart field")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing files instead of renaming")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to partstream.json")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error)")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "Log in JSON format")

	return cmd
}

// loadServeConfig loads the config file if one is present; flags alone are
// enough to run, so a missing file is not an error unless --config named it.
func loadServeConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if config.Exists(wd) {
		return config.Load(wd)
	}
	return config.New(), nil
}

func runServe(addr string, cfg *config.Config) error {
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	handler := upload.NewDiskHandler(upload.DiskConfig{
		Directory:   upload.Fixed(cfg.Upload.Directory),
		Overwrite:   cfg.Upload.Overwrite,
		MaxFileSize: cfg.Upload.MaxFileSize,
	})
	handler = middleware.Prometheus()(middleware.OpenTelemetry()(handler))

	httpOpts := []upload.HTTPOption{upload.WithLogger(logger)}
	if cfg.Upload.Field != "" {
		httpOpts = append(httpOpts, upload.WithField(cfg.Upload.Field))
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Post("/upload", upload.HTTPHandler(handler, httpOpts...).ServeHTTP)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if cfg.Metrics.Enabled {
		r.Get(cfg.Metrics.Path, promhttp.Handler().ServeHTTP)
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("upload server listening",
			"addr", addr,
			"dir", cfg.Upload.Directory,
			"max_file_size", cfg.Upload.MaxFileSize,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
