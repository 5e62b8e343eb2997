// Package logger provides structured logging for xwatch built on zerolog.
//
// The package exposes a Logger interface so components can be tested with
// the capturing TestLogger instead of writing to stderr. A global instance
// is initialized once from the logging configuration and shared through
// GetLogger.
package logger
