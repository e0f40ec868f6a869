package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/confcascade/internal/api"
	"github.com/eugenenazirov/confcascade/internal/config"
	"github.com/eugenenazirov/confcascade/internal/dotenv"
	"github.com/eugenenazirov/confcascade/internal/envstore"
	"github.com/eugenenazirov/confcascade/internal/provider"
	"github.com/eugenenazirov/confcascade/internal/yamlsource"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	env      envstore.Store
	provider provider.Provider
	report   dotenv.Report
	handler  *api.Handler
	router   http.Handler
	logger   *zap.Logger
	server   *http.Server
}

// Option configures New.
type Option func(*options)

type options struct {
	env envstore.Store
}

// WithEnvStore replaces the process environment, primarily for tests.
func WithEnvStore(store envstore.Store) Option {
	return func(o *options) {
		o.env = store
	}
}

// New initializes the application with all dependencies from the provided configuration.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	o := options{env: envstore.NewOSStore()}
	for _, opt := range opts {
		opt(&o)
	}

	cfgProvider, report, err := LoadProvider(ctx, cfg, o.env, logger)
	if err != nil {
		return nil, err
	}

	handler := api.NewHandler(cfgProvider)
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	return &App{
		env:      o.env,
		provider: cfgProvider,
		report:   report,
		handler:  handler,
		router:   apiRouter,
		logger:   logger,
		server:   NewServer(cfg, apiRouter),
	}, nil
}

// LoadProvider merges the configured .env files into env and returns a
// provider over the result, with the YAML defaults file as fallback.
func LoadProvider(ctx context.Context, cfg config.Config, env envstore.Store, logger *zap.Logger) (provider.Provider, dotenv.Report, error) {
	var defaults provider.Source
	if cfg.DefaultsFile != "" {
		values, err := yamlsource.Load(cfg.DefaultsFile)
		if err != nil {
			return nil, dotenv.Report{}, fmt.Errorf("failed to load defaults file: %w", err)
		}
		defaults = values
	}

	loader := dotenv.New(env, logger,
		dotenv.WithPaths(cfg.EnvFiles...),
		dotenv.WithEncoding(cfg.Encoding),
		dotenv.WithDebug(cfg.Debug),
	)
	rec, report, err := loader.Load(ctx, defaults)
	if err != nil {
		return nil, report, fmt.Errorf("failed to load env files: %w", err)
	}

	logger.Info("configuration loaded",
		zap.Strings("env_files", loader.Paths()),
		zap.Int("applied", len(report.Applied)),
		zap.Int("preserved", len(report.Preserved)),
		zap.Strings("failed", report.Failed),
	)
	return rec, report, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Addr
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Provider returns the configuration provider served by the application.
func (a *App) Provider() provider.Provider {
	return a.provider
}

// Report returns what the .env loader did at startup.
func (a *App) Report() dotenv.Report {
	return a.report
}
