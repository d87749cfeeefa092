// Package exchange implements the tag multiplexer at the heart of the
// client: the mapping from correlation tag to pending exchange, and the
// routing of every inbound sentence to the exchange that owns it.
//
// # Exchange Kinds
//
// An exchange is registered as one of three kinds:
//
//   - OneShot: exactly one reply followed by done. A second reply, or
//     done without any reply, fails the exchange.
//   - Array: zero or more replies accumulated in arrival order,
//     completed in one batch by done.
//   - Stream: replies forwarded to a delivery queue as they arrive,
//     indefinitely. Done only arrives after a cancellation was
//     requested and signals a clean end of the stream.
//
// # Routing Rules
//
// A fatal sentence is connection-scoped: it terminates every registered
// exchange whether or not it carries a tag. Any other sentence without
// a tag is a framing failure, because every exchange this engine issues
// is tagged. A tagged sentence whose tag maps to no registered exchange
// is dropped: after a cancellation, a final buffered reply and the
// acknowledgment can legitimately cross on the wire.
//
// # Queues
//
// Stream delivery queues are unbounded. Dispatch must never block on a
// slow consumer, because that would stall every other exchange
// multiplexed on the same connection; the cost is unbounded memory
// growth under a stalled consumer, so callers are expected to drain
// their streams promptly.
package exchange
