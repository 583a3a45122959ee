// Package application re-exports the command application interface and
// provides a configurable mock for command tests.
package application

import (
	"time"

	"github.com/rs/zerolog"

	cmdapp "github.com/culturalmap/eventmap/cmd/application"
	"github.com/culturalmap/eventmap/internal/config"
)

// Application is the interface commands accept.
type Application = cmdapp.Application

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
//
// Example Usage:
//
//	mock := &application.Mock{
//	    ConfigFunc: func() *config.Config {
//	        return cfg
//	    },
//	    ClockFunc: func() (func() time.Time, error) {
//	        return func() time.Time { return fixed }, nil
//	    },
//	}
//	cmd := build.NewCommand(mock)
//	// ... test command
type Mock struct {
	ConfigFunc       func() *config.Config
	ClockFunc        func() (func() time.Time, error)
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// Config returns a configuration using the mock function or an empty one.
func (m *Mock) Config() *config.Config {
	if m.ConfigFunc != nil {
		return m.ConfigFunc()
	}
	return &config.Config{}
}

// Clock returns a clock using the mock function or time.Now.
func (m *Mock) Clock() (func() time.Time, error) {
	if m.ClockFunc != nil {
		return m.ClockFunc()
	}
	return time.Now, nil
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

// Ensure Mock implements Application at compile time.
var _ Application = (*Mock)(nil)
