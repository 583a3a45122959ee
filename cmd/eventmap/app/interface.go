package app

import "github.com/culturalmap/eventmap/cmd/application"

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)
