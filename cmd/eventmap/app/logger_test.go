package app

import (
	"testing"

	"github.com/culturalmap/eventmap/internal/config"
)

// TestDetermineLogLevel tests the log level precedence logic.
func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		config   *config.Config
		expected string
	}{
		{
			name:     "default level when no flags set",
			config:   &config.Config{},
			expected: "info",
		},
		{
			name:     "verbose flag sets debug",
			config:   &config.Config{Verbose: true},
			expected: "debug",
		},
		{
			name:     "quiet flag sets warn",
			config:   &config.Config{Quiet: true},
			expected: "warn",
		},
		{
			name:     "explicit log-level overrides verbose",
			config:   &config.Config{LogLevel: "error", Verbose: true},
			expected: "error",
		},
		{
			name:     "explicit log-level overrides quiet",
			config:   &config.Config{LogLevel: "trace", Quiet: true},
			expected: "trace",
		},
		{
			name:     "verbose and quiet resolves to quiet",
			config:   &config.Config{Verbose: true, Quiet: true},
			expected: "warn",
		},
		{
			name:     "invalid level falls back to info",
			config:   &config.Config{LogLevel: "loud"},
			expected: "info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := determineLogLevel(tt.config)
			if result != tt.expected {
				t.Errorf("determineLogLevel() = %v, want %v", result, tt.expected)
			}
		})
	}
}

// TestValidateLogLevel tests log level validation.
func TestValidateLogLevel(t *testing.T) {
	for _, level := range []string{"trace", "debug", "info", "warn", "error"} {
		if got := validateLogLevel(level); got != level {
			t.Errorf("validateLogLevel(%q) = %q, want %q", level, got, level)
		}
	}
	if got := validateLogLevel("fatal"); got != "info" {
		t.Errorf("validateLogLevel(fatal) = %q, want info", got)
	}
}
