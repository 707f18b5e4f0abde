// Package trace is the structured diagnostic side channel of the topology
// resolution layer.
//
// The resolver reports each device-stack exchange, location parse, port
// snapshot, and resolution outcome as an Event. Events are not a contract
// surface: consumers that don't care pass a nil logger (or NoopLogger) and
// pay nothing.
//
// Events can be persisted as a stream of CBOR records (FileLogger) and read
// back with Reader, optionally filtered. For interactive use, SlogAdapter
// bridges events into a log/slog logger. MultiLogger fans one event stream
// out to several sinks.
package trace
