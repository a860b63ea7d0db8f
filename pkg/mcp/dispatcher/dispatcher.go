// Package dispatcher classifies inbound JSON-RPC envelopes and routes
// them to the correlator (for responses) or to handler tables (for
// server-initiated requests and notifications), serializing every
// outbound write through the owning transport.
package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	// Packages
	schema "github.com/mutablelogic/go-mcp/pkg/mcp/schema"
	transport "github.com/mutablelogic/go-mcp/pkg/mcp/transport"
)

////////////////////////////////////////////////////////////////////////////
// TYPES

// RequestHandler answers a server-initiated request. Returning a
// *schema.Error causes the dispatcher to write it unchanged as the
// ErrorResponse; any other error is written with code -32603 (Internal
// error) carrying the error's message.
type RequestHandler func(ctx context.Context, params json.RawMessage) (result any, err error)

// NotificationHandler reacts to a server-initiated notification. A panic
// in it is recovered and logged and never interrupts the inbound loop.
type NotificationHandler func(ctx context.Context, params json.RawMessage)

// ResponseSink receives every decoded Response/ErrorResponse so the owner
// (the correlator) can resolve the matching awaiter.
type ResponseSink func(id schema.ID, result json.RawMessage, rpcErr error)

// Dispatcher owns the two method-keyed handler tables and the single
// inbound processing loop. It does not itself know about the correlator's
// internals; it only calls the ResponseSink for response-shaped envelopes.
type Dispatcher struct {
	transport transport.Transport
	onRespond ResponseSink
	onFatal   func(error)
	logger    *log.Logger

	mu            sync.Mutex
	requests      map[string]RequestHandler
	notifications map[string]NotificationHandler

	sendMu sync.Mutex // serializes outbound writes through the transport
}

////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns a Dispatcher bound to t. onRespond is called for every
// inbound Response/ErrorResponse envelope. onFatal is called when an
// outbound write fails: a partially-written stream cannot be trusted, so
// the session is torn down rather than retried.
func New(t transport.Transport, onRespond ResponseSink, onFatal func(error), logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{
		transport:     t,
		onRespond:     onRespond,
		onFatal:       onFatal,
		logger:        logger,
		requests:      make(map[string]RequestHandler),
		notifications: make(map[string]NotificationHandler),
	}
}

////////////////////////////////////////////////////////////////////////////
// REGISTRATION

// HandleRequest registers the handler invoked for server-initiated
// requests named method. Re-registering a method overwrites the previous
// handler.
func (d *Dispatcher) HandleRequest(method string, h RequestHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests[method] = h
}

// HandleNotification registers the handler invoked for notifications
// named method.
func (d *Dispatcher) HandleNotification(method string, h NotificationHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notifications[method] = h
}

////////////////////////////////////////////////////////////////////////////
// OUTBOUND

// Send serializes one envelope write through the transport. Concurrent
// callers are serialized by sendMu so outbound ordering matches issue
// order even when multiple goroutines call Send.
func (d *Dispatcher) Send(ctx context.Context, v any) error {
	data, err := schema.Encode(v)
	if err != nil {
		return fmt.Errorf("mcp: dispatcher: encode: %w", err)
	}

	d.sendMu.Lock()
	defer d.sendMu.Unlock()

	if err := d.transport.Send(ctx, data); err != nil {
		if d.onFatal != nil {
			d.onFatal(fmt.Errorf("mcp: transport send failed: %w", err))
		}
		return err
	}
	return nil
}

////////////////////////////////////////////////////////////////////////////
// INBOUND

// Start connects the transport and begins routing inbound messages. It
// returns once the transport reports it is ready.
func (d *Dispatcher) Start(ctx context.Context) error {
	return d.transport.Connect(ctx, func(message []byte) {
		d.handle(ctx, message)
	})
}

// handle classifies and routes exactly one inbound message. It never
// panics: a request-handler panic is recovered and answered as a handler
// error, and a notification-handler panic is recovered and logged, so one
// bad handler cannot take down the inbound loop.
func (d *Dispatcher) handle(ctx context.Context, message []byte) {
	env, err := schema.DecodeEnvelope(message)
	if err != nil {
		d.logger.Printf("mcp: dispatcher: dropping malformed message: %v", err)
		return
	}

	switch env.Kind {
	case schema.KindResponse:
		d.onRespond(env.Response.ID, env.Response.Result, nil)

	case schema.KindErrorResponse:
		d.onRespond(env.ErrorResp.ID, nil, env.ErrorResp.Error)

	case schema.KindRequest:
		d.handleRequest(ctx, env.Request)

	case schema.KindNotification:
		d.handleNotification(ctx, env.Notification)

	default:
		d.logger.Printf("mcp: dispatcher: dropping envelope of unrecognized shape")
	}
}

// requestIDKey is the context key carrying the inbound request's id, so a
// handler (or its owner) can correlate a later notifications/cancelled
// without widening the RequestHandler signature.
type requestIDKey struct{}

// RequestID extracts the id of the server-initiated request being served
// from ctx, if any.
func RequestID(ctx context.Context) (schema.ID, bool) {
	id, ok := ctx.Value(requestIDKey{}).(schema.ID)
	return id, ok
}

func (d *Dispatcher) handleRequest(ctx context.Context, req *schema.Request) {
	d.mu.Lock()
	h, ok := d.requests[req.Method]
	d.mu.Unlock()

	if !ok {
		d.writeError(ctx, req.ID, schema.NewError(schema.ErrorCodeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method)))
		return
	}

	ctx = context.WithValue(ctx, requestIDKey{}, req.ID)
	result, err := d.runRequestHandler(ctx, h, req.Params)
	if err != nil {
		var rpcErr *schema.Error
		if e, ok := err.(*schema.Error); ok {
			rpcErr = e
		} else {
			rpcErr = schema.NewError(schema.ErrorCodeInternalError, err.Error())
		}
		d.writeError(ctx, req.ID, rpcErr)
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		d.writeError(ctx, req.ID, schema.NewError(schema.ErrorCodeInternalError, err.Error()))
		return
	}
	if err := d.Send(ctx, schema.NewResponse(req.ID, data)); err != nil {
		d.logger.Printf("mcp: dispatcher: failed writing response for %s: %v", req.Method, err)
	}
}

func (d *Dispatcher) runRequestHandler(ctx context.Context, h RequestHandler, params json.RawMessage) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mcp: handler panic: %v", r)
		}
	}()
	return h(ctx, params)
}

func (d *Dispatcher) writeError(ctx context.Context, id schema.ID, rpcErr *schema.Error) {
	if err := d.Send(ctx, schema.NewErrorResponse(id, rpcErr)); err != nil {
		d.logger.Printf("mcp: dispatcher: failed writing error response: %v", err)
	}
}

func (d *Dispatcher) handleNotification(ctx context.Context, n *schema.Notification) {
	d.mu.Lock()
	h, ok := d.notifications[n.Method]
	d.mu.Unlock()

	if !ok {
		// Unregistered notifications are not an error: a server may push
		// kinds this client chose not to subscribe to, and they are simply
		// ignored.
		return
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Printf("mcp: dispatcher: notification handler for %s panicked: %v", n.Method, r)
		}
	}()
	h(ctx, n.Params)
}
