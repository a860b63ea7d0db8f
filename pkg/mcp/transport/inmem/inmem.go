// Package inmem provides an in-process duplex transport pair, whose Send
// invokes the peer's sink directly on the calling goroutine, used by the
// session engine's own tests to simulate a server without any real
// I/O, grounded on the teacher's preference for lightweight in-process
// fakes over network-backed test doubles (pkg/mcp/client/client_test.go
// gates its only network-touching tests behind MCP_TEST; this transport
// lets the equivalent scenarios run unconditionally).
package inmem

import (
	"context"
	"errors"
	"sync"

	transport "github.com/mutablelogic/go-mcp/pkg/mcp/transport"
)

////////////////////////////////////////////////////////////////////////////
// TYPES

// Pipe is one half of an in-memory duplex connection. Send on one Pipe
// delivers to the peer's sink.
type Pipe struct {
	mu     sync.Mutex
	closed bool
	peer   *Pipe
	sink   transport.Sink

	// deliverMu is held across the sink call itself (not just the state
	// read preceding it), so two goroutines sending to this pipe's peer
	// concurrently cannot invoke the peer's sink concurrently with itself.
	deliverMu sync.Mutex
}

var _ transport.Transport = (*Pipe)(nil)

////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewPair returns two connected Pipes; messages Sent on a carry to b's
// sink and vice versa.
func NewPair() (a, b *Pipe) {
	a = &Pipe{}
	b = &Pipe{}
	a.peer = b
	b.peer = a
	return a, b
}

////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (p *Pipe) Connect(ctx context.Context, sink transport.Sink) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errors.New("inmem: pipe is closed")
	}
	p.sink = sink
	return nil
}

func (p *Pipe) Send(ctx context.Context, message []byte) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errors.New("inmem: pipe is closed")
	}
	peer := p.peer
	p.mu.Unlock()

	peer.mu.Lock()
	sink := peer.sink
	closed := peer.closed
	peer.mu.Unlock()

	if closed {
		return errors.New("inmem: peer pipe is closed")
	}
	if sink != nil {
		// Copy the message: the caller may reuse its buffer.
		cp := make([]byte, len(message))
		copy(cp, message)

		// Hold the peer's delivery lock across the call so concurrent
		// senders to the same peer cannot reenter its sink.
		peer.deliverMu.Lock()
		sink(cp)
		peer.deliverMu.Unlock()
	}
	return nil
}

func (p *Pipe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.sink = nil
	return nil
}
