// Package application provides the application interface for eventmap commands.
//
// The Application interface defines the contract between the application layer and
// command implementations, enabling dependency injection and testability.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            cfg := app.Config()
//	            now, err := app.Clock()
//	            if err != nil {
//	                return err
//	            }
//	            // ... load inputs from cfg and run the pipeline
//	            return nil
//	        },
//	    }
//	}
//
// Testing with Mocks:
//
//	mock := &application.Mock{
//	    ConfigFunc: func() *config.Config {
//	        return &config.Config{AssetsFile: "testdata/data.json"}
//	    },
//	}
//	cmd := NewCommand(mock)
//	// ... test command behavior
package application

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/culturalmap/eventmap/internal/config"
)

// Application provides the application interface that commands need.
// The App struct from cmd/eventmap/app implements this interface.
//
// Commands should accept this interface rather than the concrete App type,
// allowing for easier testing with mock implementations.
type Application interface {
	// Config returns the resolved configuration. Commands may apply their
	// own flag overrides to it before running.
	Config() *config.Config

	// Clock returns the time source for the run, pinned by --now or
	// SOURCE_DATE_EPOCH when either is set.
	Clock() (func() time.Time, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, etc).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
