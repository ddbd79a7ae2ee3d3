// Package logging provides structured logging utilities for the collector.
//
// # Overview
//
// This package builds log/slog loggers with collector defaults. Loggers are
// constructed once in the CLI and handed to each component explicitly through
// a Logger field; nothing here mutates the process-wide slog default.
//
// # Formats
//
//   - json: one JSON object per record on stderr (default)
//   - text: human-readable records via tint, colored only on terminals
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: per-command detail with source location
//   - INFO: collection progress (default)
//   - WARN/WARNING: soft failures such as timeouts or unknown commands
//   - ERROR: fatal conditions
//
// The LOG_LEVEL environment variable overrides the configured level:
//
//	LOG_LEVEL=debug ceph-collect
//
// # Usage
//
//	logger := logging.New(logging.Options{
//	    Name:    "ceph-collect",
//	    Version: version,
//	    Level:   "info",
//	    Format:  logging.FormatText,
//	})
//	c := &collector.Collector{Logger: logger}
//
// Components that receive a nil logger use logging.Discard().
package logging
