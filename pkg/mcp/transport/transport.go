// Package transport defines the bidirectional message stream contract the
// session engine consumes. Concrete bindings (stdio, HTTP+SSE, reactive
// HTTP streaming) are collaborators that satisfy this contract; only a
// stdio reference binding and an in-memory test double live in this
// module (see the stdio and inmem subpackages).
package transport

import "context"

////////////////////////////////////////////////////////////////////////////
// TYPES

// Sink receives whole decoded messages in arrival order. The engine
// supplies a Sink to Connect; the transport calls it once per inbound
// message, strictly sequentially, and never concurrently with itself.
type Sink func(message []byte)

// Transport is any bidirectional framed message pipe. Implementations
// must guarantee: inbound delivery to the Sink is strictly sequential;
// outbound Send calls preserve caller order when called sequentially by
// a single writer (the engine itself serializes its Send calls, so
// Transport implementations are not required to be safe for concurrent
// Send from multiple goroutines unless they document otherwise).
type Transport interface {
	// Connect starts the transport and begins delivering inbound
	// messages to sink. It returns once the transport is ready to
	// Send, not once it has permanently stopped.
	Connect(ctx context.Context, sink Sink) error

	// Send hands one whole message to the wire. A returned error is
	// terminal for the owning session.
	Send(ctx context.Context, message []byte) error

	// Close stops the transport and releases its resources. It must be
	// safe to call more than once; calls after the first are no-ops.
	Close() error
}
