// Package log provides structured bridge event logging for caseta-listener.
//
// This package defines the Logger interface and Event types for capturing
// events at every layer of the bridge (hub protocol, gesture recognition,
// connection lifecycle, lighting dispatch). It is separate from operational
// logging (slog) - event capture provides a complete machine-readable trace
// for debugging a misbehaving remote or hub.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	var logger log.Logger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to a binary file
//	fileLogger, err := log.NewFileLogger("/var/log/caseta-listener/bridge.clog")
//
//	// Both: use MultiLogger
//	logger = log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fileLogger)
//
// # Event Types
//
// Events are captured at three layers:
//   - Protocol: parsed hub frames (FrameEvent)
//   - Gesture: recognized gestures (GestureEvent)
//   - Dispatch: lighting API calls (DispatchEvent)
//
// Connection lifecycle transitions and errors have dedicated event types.
//
// # File Format
//
// Log files use CBOR encoding. The bridge's "logs" subcommand prints the
// events of such a file, optionally filtered by remote, room, or category.
package log
