package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	// Packages
	schema "github.com/mutablelogic/go-mcp/pkg/mcp/schema"
	attribute "go.opentelemetry.io/otel/attribute"
	trace "go.opentelemetry.io/otel/trace"
)

////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// call issues one correlated client->server request and blocks until it is
// answered, the context is cancelled, or the per-request deadline elapses.
// On ctx cancellation it cancels the awaiter locally and sends
// notifications/cancelled so the server can stop work it would otherwise
// keep running for a reply nobody is waiting for.
func (s *Session) call(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, error) {
	id := s.correlator.NextID()
	ctx, span := s.tracer.Start(ctx, "mcp.request", trace.WithAttributes(
		attribute.String("mcp.method", method),
		attribute.String("mcp.request_id", id.String()),
	))
	defer span.End()

	deadline := time.Now().Add(s.requestTimeout)

	awaiter, err := s.correlator.Issue(id, deadline)
	if err != nil {
		return nil, fmt.Errorf("mcp: session: %w", err)
	}

	if err := s.dispatcher.Send(ctx, schema.NewRequest(id, method, params)); err != nil {
		s.correlator.Cancel(id, err)
		return nil, fmt.Errorf("mcp: session: sending %s: %w", method, err)
	}

	select {
	case <-awaiter.Done():
		return awaiter.Result()
	case <-ctx.Done():
		s.correlator.Cancel(id, ctx.Err())
		<-awaiter.Done()
		return nil, ctx.Err()
	}
}
