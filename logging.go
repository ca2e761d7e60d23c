package finbook

import "github.com/rs/zerolog"

// logger is the package logger. It is a no-op by default so the core stays
// silent in library use; applications install their own with SetLogger.
var logger = zerolog.Nop()

// SetLogger installs the logger used for degraded-mode warnings, such as
// the identity-rate fallback on a missing price series.
func SetLogger(l zerolog.Logger) { logger = l }
