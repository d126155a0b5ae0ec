// Package app provides the application lifecycle management for the content
// bot service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tdlm/content-bot/internal/api"
	"github.com/tdlm/content-bot/internal/config"
	"github.com/tdlm/content-bot/internal/generator"
	"github.com/tdlm/content-bot/internal/logger"
	"github.com/tdlm/content-bot/internal/metrics"
	"github.com/tdlm/content-bot/internal/orchestrator"
	"github.com/tdlm/content-bot/internal/sheets"
	"github.com/tdlm/content-bot/internal/wordpress"
)

const (
	// DefaultShutdownTimeout is the timeout for graceful shutdown.
	DefaultShutdownTimeout = 30 * time.Second

	readTimeout = 10 * time.Second
	// A run holds the request open through generation and publishing, so the
	// write timeout is sized for the slowest realistic run, not a web page.
	writeTimeout = 10 * time.Minute
	idleTimeout  = 120 * time.Second
)

// App represents the content bot application with all its dependencies.
type App struct {
	config       *config.Config
	logger       logger.Logger
	orchestrator *orchestrator.Orchestrator
	httpServer   *http.Server
	version      string
}

// Options contains configuration for creating a new App.
type Options struct {
	Version string
}

// New creates an App with all dependencies initialized. Clients whose
// configuration is absent are left nil; the orchestrator fails every run
// with a config error before it can reach them, so the service still starts
// and serves health checks on a half-configured deployment.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	appLogger, err := logger.NewLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	appLogger = appLogger.With(
		logger.String("service", "content-bot"),
		logger.String("version", opts.Version),
	)

	var store orchestrator.Store
	if cfg.HasGoogleCredentials() {
		sheetsClient, clientErr := sheets.NewClient(ctx, cfg.GoogleCredentials, appLogger)
		if clientErr != nil {
			_ = appLogger.Sync()
			return nil, fmt.Errorf("create sheets client: %w", clientErr)
		}
		store = sheetsClient
	} else {
		appLogger.Warn("no Google credentials configured, runs will fail until provided")
	}

	var publisher orchestrator.Publisher
	if cfg.HasWordPress() {
		wpClient, clientErr := wordpress.NewClient(cfg.WPBaseURL, cfg.WPUser, cfg.WPAppPassword, appLogger)
		if clientErr != nil {
			_ = appLogger.Sync()
			return nil, fmt.Errorf("create wordpress client: %w", clientErr)
		}
		publisher = wpClient
	} else {
		appLogger.Warn("WordPress connection not configured, runs will fail until provided")
	}

	gen := generator.New(cfg, appLogger)
	orch := orchestrator.New(cfg, store, gen, publisher, appLogger)

	m := metrics.New()
	router := api.NewRouter(cfg, orch, m, appLogger)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.Engine(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return &App{
		config:       cfg,
		logger:       appLogger,
		orchestrator: orch,
		httpServer:   httpServer,
		version:      opts.Version,
	}, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			logger.String("addr", a.httpServer.Addr),
			logger.Bool("debug", a.config.Debug),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	return a.waitForShutdown(ctx, serverErr)
}

// waitForShutdown handles graceful shutdown on signal, context cancellation
// or server failure.
func (a *App) waitForShutdown(ctx context.Context, serverErr chan error) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutting down gracefully", logger.String("signal", sig.String()))
		a.shutdownHTTPServer()
		return nil

	case <-ctx.Done():
		a.logger.Info("context cancelled, shutting down")
		a.shutdownHTTPServer()
		return nil

	case err := <-serverErr:
		if err != nil {
			a.logger.Error("HTTP server error", logger.Error(err))
		}
		return err
	}
}

func (a *App) shutdownHTTPServer() {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("server shutdown error", logger.Error(err))
	} else {
		a.logger.Info("HTTP server stopped")
	}
}

// Close cleans up resources.
func (a *App) Close() error {
	return a.logger.Sync()
}

// Logger returns the application logger.
func (a *App) Logger() logger.Logger {
	return a.logger
}
