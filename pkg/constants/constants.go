// Package constants provides shared constants used throughout the eventmap
// codebase: pipeline defaults, thresholds, file permissions and the
// conventional artifact names.
package constants

import "time"

// Pipeline defaults
const (
	// DefaultTitleThreshold is the minimum token-sort title similarity (0-100)
	// for two same-day events to be considered the same occurrence.
	DefaultTitleThreshold = 85.0

	// DefaultVenueThreshold is the minimum token-set venue similarity (0-100)
	// for two same-day events with known venues.
	DefaultVenueThreshold = 70.0

	// DefaultWindowDays is the length of the "upcoming" window in days.
	DefaultWindowDays = 14

	// DefaultCandidateCount is how many ranked candidates the diagnostics
	// report keeps per unmatched venue.
	DefaultCandidateCount = 3

	// DefaultFallbackCategory is assigned when no rule yields a category.
	DefaultFallbackCategory = "Cultural Resources"

	// DefaultMaxUnmatchedRatio caps unmatched/total in the validation gate.
	DefaultMaxUnmatchedRatio = 0.75

	// DefaultMaxUpcomingUnmatchedRatio caps unmatched/upcoming in the gate.
	DefaultMaxUpcomingUnmatchedRatio = 0.85

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Artifact file names used when no explicit path is configured.
const (
	EventIndexFile   = "events.index.json"
	MatchReportFile  = "events-match-report.json"
	MergedFile       = "events.merged.json"
	FlatFile         = "events.json"
	ValidationFile   = "events-validation-report.json"
	AuditFile        = "events-coverage-audit.json"
	MetricsFile      = "eventmap.prom"
	MarkdownFile     = "events-match-report.md"
	ConfigFileName   = "eventmap"
	EnvPrefix        = "EVENTMAP"
	UnknownSourceTag = "unknown"
)
