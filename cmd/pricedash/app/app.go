// Package app provides the application context and dependency management
// for the pricedash CLI. It centralizes configuration, logging, and the
// dashboard instance behind a single injection point.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	pricedash "github.com/jumpingbeanltd/price-dashboard"
	"github.com/jumpingbeanltd/price-dashboard/internal/rewriter/gemini"
	"github.com/jumpingbeanltd/price-dashboard/internal/sinks/storefront"
	"github.com/jumpingbeanltd/price-dashboard/internal/sources/sheets"
	"github.com/jumpingbeanltd/price-dashboard/pkg/errors"
	"github.com/jumpingbeanltd/price-dashboard/pkg/store"
)

// App represents the pricedash application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Dashboard instance (lazy-initialized, singleton)
	mu        sync.Mutex
	dashboard *pricedash.Dashboard
}

// New creates a new App instance with the given version information.
func New(version, commit, date string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.NewConfigError("app", "loading configuration", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version string.
func (a *App) Version() string {
	return a.version
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Dashboard returns the dashboard instance, creating it lazily on first
// use. Thread-safe; only one instance is ever created.
func (a *App) Dashboard(ctx context.Context) (*pricedash.Dashboard, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.dashboard != nil {
		return a.dashboard, nil
	}

	opts, err := a.buildDashboardOptions(ctx)
	if err != nil {
		return nil, err
	}

	d, err := pricedash.New(opts...)
	if err != nil {
		return nil, err
	}

	a.dashboard = d
	return d, nil
}

// buildDashboardOptions constructs dashboard options from the app
// configuration. Sinks and sources are only wired when configured;
// commands that need an unconfigured collaborator fail at call time.
func (a *App) buildDashboardOptions(ctx context.Context) ([]pricedash.Option, error) {
	cfg := a.config

	if cfg.SpreadsheetID == "" {
		return nil, errors.NewConfigError("app", "spreadsheet_id is required", nil)
	}

	opts := []pricedash.Option{
		pricedash.WithGridSource(sheets.New(cfg.SpreadsheetID, cfg.SheetsAPIKey)),
		pricedash.WithRanges(cfg.PrimaryRange, cfg.SecondaryRange),
		pricedash.WithRatePair(cfg.RateFrom, cfg.RateTo),
		pricedash.WithRoundingIncrement(cfg.RoundingIncrement),
	}

	if cfg.FXBaseURL != "" {
		opts = append(opts, pricedash.WithRateSource(pricedash.NewRateSource(cfg.FXBaseURL, cfg.FXAPIKey)))
	}

	if cfg.InventoryBaseURL != "" {
		opts = append(opts, pricedash.WithInventorySink(
			pricedash.NewInventorySink(cfg.InventoryBaseURL, cfg.InventoryClientID, cfg.InventoryClientSecret)))
	}

	if cfg.StorefrontBaseURL != "" {
		opts = append(opts, pricedash.WithStorefrontSink(storefront.New(cfg.StorefrontBaseURL, cfg.StorefrontAPIKey)))
	}

	if cfg.GeminiAPIKey != "" {
		gen, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pricedash.WithGenerator(gen))
	}

	if cfg.StorePath != "" {
		fileStore, err := store.OpenFile(cfg.StorePath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pricedash.WithStore(fileStore))
	}

	return opts, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithDashboard sets a custom dashboard instance (useful for testing).
func WithDashboard(d *pricedash.Dashboard) Option {
	return func(a *App) error {
		a.dashboard = d
		return nil
	}
}
