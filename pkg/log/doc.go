// Package log captures structured transport and lane-pool events.
//
// The engine, pool, and transports accept an optional Logger; pass nil
// (or NoopLogger) to disable logging entirely. Events are plain values
// so they can be encoded to CBOR for compact on-disk capture
// (FileLogger) or bridged into log/slog for console output
// (SlogAdapter).
package log
