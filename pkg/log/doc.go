// Package log provides a structured event trace for visibility monitors.
//
// This package defines the Logger interface and Event types for capturing
// every sample a monitor takes and every lifecycle change it goes through.
// It is separate from operational logging (slog): the trace is a complete
// machine-readable record for debugging and analysis.
//
// # Basic Usage
//
// Applications configure tracing by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.Trace = log.NewSlogAdapter(slog.Default())
//
//	// For later analysis: write to binary file
//	cfg.Trace, _ = log.NewFileLogger("/tmp/monitor.vlog")
//
//	// Both: use MultiLogger
//	cfg.Trace = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
//   - Sample: one visibility sample, tagged with the topic it produced
//   - StateChange: monitor start/stop and strategy start/stop/swap
//
// # File Format
//
// Trace files use CBOR encoding with integer keys and the .vlog extension.
// The vissense-log CLI tool provides viewing, filtering, and export.
package log
