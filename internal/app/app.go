package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sophialabs/xraydash/internal/infrastructure/outbound/clock"
	"github.com/sophialabs/xraydash/internal/infrastructure/outbound/filesystem"
	"github.com/sophialabs/xraydash/internal/infrastructure/outbound/logging"
	"github.com/sophialabs/xraydash/internal/infrastructure/wiring"
)

// App is the thin lifecycle manager that delegates dependency construction to wiring.Container.
type App struct {
	cfg        Config
	container  *wiring.Container
	httpServer *http.Server
}

// New constructs the application by creating a logger, wiring infrastructure
// components via the container, and setting up the HTTP server.
func New(cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger := logging.NewText(os.Stdout, cfg.LogLevel)

	loc, err := clock.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone %q: %w", cfg.TimeZone, err)
	}

	params := wiring.Params{
		APIBaseURL:     cfg.APIBaseURL,
		StorageDir:     cfg.StorageDir,
		TemplatesDir:   cfg.TemplatesDir,
		Locale:         cfg.Locale,
		Location:       loc,
		GatewayTimeout: cfg.GatewayTimeout,
		ListLimit:      cfg.ListLimit,
		GatewayLogSize: cfg.GatewayLogSize,
		SessionTTL:     cfg.SessionTTL,
		DemoRate:       cfg.DemoRate,
		DemoBurst:      cfg.DemoBurst,
		Logger:         logger,
	}
	container, err := wiring.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to wire infrastructure: %w", err)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      container.Server(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		container:  container,
		httpServer: httpServer,
	}, nil
}

// Run executes the full application lifecycle: start the template watcher,
// serve HTTP, and handle graceful shutdown on SIGINT/SIGTERM or context cancellation.
func (a *App) Run(ctx context.Context) error {
	defer a.container.Close()

	logger := a.container.Logger()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher := a.setupWatcher()
	if watcher != nil {
		defer watcher.Stop()
	}

	source := a.cfg.APIBaseURL
	if a.cfg.StorageDir != "" {
		source = a.cfg.StorageDir
	}
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting X-Ray dashboard", "addr", a.httpServer.Addr, "source", source)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func (a *App) setupWatcher() *filesystem.Watcher {
	if a.cfg.TemplatesDir == "" {
		return nil
	}
	logger := a.container.Logger()
	renderer := a.container.Renderer()

	watcher, err := filesystem.NewWatcher(a.cfg.TemplatesDir, a.cfg.WatcherDebounce, filesystem.TemplateExtensions, logger, func() {
		renderer.Reload()
		if err := renderer.Preload(); err != nil {
			logger.Error("template reload failed", "error", err)
			return
		}
		logger.Info("template reload complete")
	})
	if err != nil {
		logger.Warn("file watcher not available", "error", err)
		return nil
	}

	watcher.Start()
	logger.Info("template watcher started", "dir", a.cfg.TemplatesDir)
	return watcher
}
