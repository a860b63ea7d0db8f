// Package correlator implements the request/response correlation layer
// that multiplexes JSON-RPC calls over one transport: it mints request
// ids, parks a future per outstanding request, matches inbound replies to
// their awaiter, and expires or fails them as the session requires.
package correlator

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	// Packages
	schema "github.com/mutablelogic/go-mcp/pkg/mcp/schema"
)

////////////////////////////////////////////////////////////////////////////
// TYPES

// CancelNotifier is called when an awaiter expires or is cancelled, so the
// owner can emit a notifications/cancelled message for that id. It is
// never called for awaiters resolved by a normal response or by shutdown.
type CancelNotifier func(id schema.ID, reason string)

// Awaiter is the parked continuation for one outstanding request. The
// issuer of a request waits on Done and then reads Result exactly once.
type Awaiter struct {
	ID       schema.ID
	deadline time.Time
	done     chan struct{}
	once     sync.Once
	result   json.RawMessage
	err      error
}

// Done returns a channel closed exactly once, when this awaiter is
// resolved by Complete, Expire, Cancel or Shutdown.
func (a *Awaiter) Done() <-chan struct{} {
	return a.done
}

// Result returns the terminal outcome. Only valid after Done has closed.
func (a *Awaiter) Result() (json.RawMessage, error) {
	return a.result, a.err
}

func (a *Awaiter) resolve(result json.RawMessage, err error) {
	a.once.Do(func() {
		a.result = result
		a.err = err
		close(a.done)
	})
}

// Correlator owns request-id generation and the awaiter table. All of its
// exported methods are safe for concurrent use; callers from arbitrary
// goroutines issue requests while the dispatcher's single inbound task
// completes them.
type Correlator struct {
	seq      atomic.Int64
	mu       sync.Mutex
	awaiters map[string]*Awaiter
	closed   bool
	shutErr  error
	onCancel CancelNotifier
}

////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns a Correlator. onCancel, if non-nil, is invoked whenever
// Expire or Cancel removes a still-parked awaiter, so the caller can emit
// the corresponding notifications/cancelled message.
func New(onCancel CancelNotifier) *Correlator {
	return &Correlator{
		awaiters: make(map[string]*Awaiter),
		onCancel: onCancel,
	}
}

////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// NextID allocates the next monotonically increasing integer request id.
// IDs are never reused within a Correlator's lifetime.
func (c *Correlator) NextID() schema.ID {
	return schema.NewID(c.seq.Add(1))
}

// Issue parks an awaiter for id with the given deadline. It fails
// immediately, without parking anything, once the Correlator has been
// shut down.
func (c *Correlator) Issue(id schema.ID, deadline time.Time) (*Awaiter, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, c.shutErr
	}

	a := &Awaiter{ID: id, deadline: deadline, done: make(chan struct{})}
	c.awaiters[id.String()] = a
	return a, nil
}

// Complete matches an inbound response or error response to its awaiter
// and resolves it exactly once. If the id is unknown (e.g. a late
// response after expiry or cancellation), it returns false and the caller
// should log and drop the message rather than treat it as fatal.
func (c *Correlator) Complete(id schema.ID, result json.RawMessage, rpcErr error) bool {
	a := c.remove(id)
	if a == nil {
		return false
	}
	a.resolve(result, rpcErr)
	return true
}

// Expire resolves every awaiter whose deadline is at or before now with
// timeoutErr, and invokes onCancel for each so the caller can notify the
// server.
func (c *Correlator) Expire(now time.Time, timeoutErr error) {
	c.mu.Lock()
	var due []*Awaiter
	for key, a := range c.awaiters {
		if !now.Before(a.deadline) {
			due = append(due, a)
			delete(c.awaiters, key)
		}
	}
	c.mu.Unlock()

	for _, a := range due {
		a.resolve(nil, timeoutErr)
		if c.onCancel != nil {
			c.onCancel(a.ID, "timeout")
		}
	}
}

// Shutdown resolves every remaining awaiter with cause and marks the
// Correlator closed: subsequent Issue calls fail immediately with cause.
// Calling Shutdown more than once is a no-op after the first call.
func (c *Correlator) Shutdown(cause error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.shutErr = cause
	remaining := c.awaiters
	c.awaiters = make(map[string]*Awaiter)
	c.mu.Unlock()

	for _, a := range remaining {
		a.resolve(nil, cause)
	}
}

// Cancel removes and resolves the awaiter for id with a cancellation
// error, if it is still parked. It reports whether an awaiter was found.
func (c *Correlator) Cancel(id schema.ID, cause error) bool {
	a := c.remove(id)
	if a == nil {
		return false
	}
	a.resolve(nil, cause)
	if c.onCancel != nil {
		c.onCancel(id, "cancelled")
	}
	return true
}

// Pending returns the number of currently parked awaiters, for tests and
// diagnostics.
func (c *Correlator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.awaiters)
}

////////////////////////////////////////////////////////////////////////////
// PRIVATE HELPERS

// remove pops the awaiter for id out of the live table, if present.
func (c *Correlator) remove(id schema.ID) *Awaiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.awaiters[id.String()]
	if !ok {
		return nil
	}
	delete(c.awaiters, id.String())
	return a
}
