// Package app provides the application context and dependency management
// for the eventmap CLI. It centralizes configuration, logging and the
// clock shared by every command.
package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/culturalmap/eventmap/internal/cmd/output"
	"github.com/culturalmap/eventmap/internal/config"
	"github.com/culturalmap/eventmap/pkg/errors"
)

// App represents the eventmap application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *config.Config

	// Logger
	logger *zerolog.Logger
}

// New creates a new App instance with the given version information.
// The app is initialized with configuration loaded from the environment
// and config file, which can be customized using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	// Load configuration
	cfg, err := LoadConfig("")
	if err != nil {
		return nil, err
	}
	app.config = cfg

	// Initialize logger
	logger := NewLogger(cfg)
	app.logger = &logger

	// Apply any custom options
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *config.Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format, or the detected one
// (table on a terminal, JSON otherwise) when none is set.
func (a *App) OutputFormat() string {
	return string(output.DetectFormat(a.config.Format))
}

// Clock returns the time source for the run.
func (a *App) Clock() (func() time.Time, error) {
	return a.config.Clock()
}

// Shutdown performs graceful shutdown of the application. Runs are
// synchronous, so there is nothing in flight beyond flushing the logger.
func (a *App) Shutdown(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.NewConfigError("shutdown", "context done before shutdown", err)
	}
	a.logger.Debug().Msg("Shutdown complete")
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(cfg *config.Config) Option {
	return func(a *App) error {
		if cfg == nil {
			return &errors.ValidationError{Field: "config", Message: "cannot be nil"}
		}
		a.config = cfg
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
