// Package log captures the protocol activity of a RouterOS API
// connection as a structured event stream.
//
// The engine emits one Event per observable step. Transport events
// record raw reads and writes on the TCP stream. Wire events record
// sentences as they are encoded and decoded. Service events record
// connection and login state transitions. Together the events of one
// connection form a complete session record, precise enough to replay
// a protocol exchange or to explain a teardown after the fact.
//
// Event capture is separate from operational logging. An application
// that wants human-oriented output bridges events into slog with
// SlogAdapter; one that wants a replayable record writes them to a
// trace file with FileLogger. NewMultiLogger combines sinks, and a nil
// Logger disables capture entirely.
//
// # Trace Files
//
// FileLogger appends events to a file as a plain concatenation of CBOR
// maps with integer keys, conventionally named *.rlog. Reader streams
// such a file back, optionally restricted by a Filter. The mk-client
// trace subcommand is a thin presentation layer over Reader.
package log
