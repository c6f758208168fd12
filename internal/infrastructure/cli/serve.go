package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tfaber/taskd/internal/application"
	"github.com/tfaber/taskd/internal/infrastructure/config"
	"github.com/tfaber/taskd/internal/infrastructure/httpapi"
	"github.com/tfaber/taskd/internal/infrastructure/live"
	"github.com/tfaber/taskd/internal/infrastructure/watch"
	"github.com/tfaber/taskd/pkg/storage"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Flag variables for serve command
var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the task tracking API server",
	Long: `Run the task tracking API server.

The server loads the registry from .taskd/registry.json in the current
directory, serves the HTTP API on the configured address, and persists
every mutation before acknowledging it. A live event feed is available
over a websocket at /events/ws.

Flags override the values in .taskd/config.yaml:
  --addr    Listen address
  --watch   Reload the registry when the file changes on disk`,
	RunE: runServeCmd,
}

func runServeCmd(cmd *cobra.Command, args []string) error {
	cwd, _ := os.Getwd()

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("addr") {
		cfg.Addr = serveAddr
	}
	if cmd.Flags().Changed("watch") {
		cfg.Watch = serveWatch
	}

	repo := storage.NewFilesystemRepository(cwd)
	if err := repo.Initialize(); err != nil {
		return err
	}

	logger := newLogger(repo, cfg)

	audit, err := storage.NewFileEventStore(repo.DataPath())
	if err != nil {
		return fmt.Errorf("failed to open event store: %w", err)
	}
	publisher := storage.NewInMemoryEventPublisher()

	store, err := application.Open(repo,
		application.WithAudit(audit),
		application.WithPublisher(publisher),
		application.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	feed := live.NewHandler(publisher, logger)
	server := httpapi.NewServer(cfg.Addr, store,
		httpapi.WithLogger(logger),
		httpapi.WithHandler("GET /events/ws", feed),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Watch {
		watcher, err := watch.NewRegistryWatcher(repo.DataPath(), cfg.WatchDebounce, store, logger)
		if err != nil {
			return fmt.Errorf("failed to start registry watcher: %w", err)
		}
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Error("registry watcher stopped", "error", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()
	logger.Info("server listening", "addr", cfg.Addr, "data", repo.DataPath())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// newLogger builds the process logger. Logs always go to stderr; when a
// log file is configured they are duplicated there with rotation.
func newLogger(repo *storage.FilesystemRepository, cfg *config.Config) *slog.Logger {
	var out io.Writer = os.Stderr
	if cfg.LogFile != "" {
		path := cfg.LogFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(repo.DataPath(), path)
		}
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}
	return slog.New(slog.NewJSONHandler(out, nil))
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", config.DefaultAddr,
		"Listen address for the API server")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false,
		"Reload the registry when the file changes on disk")

	RootCmd.AddCommand(serveCmd)
}
