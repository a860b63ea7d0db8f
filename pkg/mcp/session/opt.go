package session

import (
	"context"
	"log"
	"time"

	// Packages
	schema "github.com/mutablelogic/go-mcp/pkg/mcp/schema"
	transport "github.com/mutablelogic/go-mcp/pkg/mcp/transport"
	trace "go.opentelemetry.io/otel/trace"
)

////////////////////////////////////////////////////////////////////////////
// TYPES

// SamplingHandler answers a server-initiated sampling/createMessage
// request. Its presence enables the "sampling" client capability.
type SamplingHandler func(ctx context.Context, req schema.CreateMessageParams) (schema.CreateMessageResult, error)

// ToolsChangeConsumer receives the full, freshly re-fetched tool list
// every time the server reports notifications/tools/list_changed.
type ToolsChangeConsumer func(tools []schema.Tool)

// ResourcesChangeConsumer is the resources/list_changed analogue.
type ResourcesChangeConsumer func(resources []schema.Resource)

// PromptsChangeConsumer is the prompts/list_changed analogue.
type PromptsChangeConsumer func(prompts []schema.Prompt)

// ResourceUpdatedConsumer is invoked when a subscribed resource changes.
type ResourceUpdatedConsumer func(uri string)

// LoggingConsumer receives every notifications/message (logging) sent by
// the server.
type LoggingConsumer func(msg schema.LoggingMessageParams)

// ProgressConsumer receives every notifications/progress sent by the
// server, keyed by the progress token it carries.
type ProgressConsumer func(p schema.ProgressParams)

// Opt configures a Session at build time, following the teacher's
// functional-options idiom (pkg/mcp/opt.go: type Opt func(*Server) error).
type Opt func(*Session) error

////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithTransport is required: it supplies the bidirectional pipe the
// session drives the protocol over.
func WithTransport(t transport.Transport) Opt {
	return func(s *Session) error {
		s.transport = t
		return nil
	}
}

// WithRequestTimeout overrides the default 20s per-request deadline.
func WithRequestTimeout(d time.Duration) Opt {
	return func(s *Session) error {
		s.requestTimeout = d
		return nil
	}
}

// WithClientInfo overrides the default {name, version} advertised to the
// server during initialize.
func WithClientInfo(info schema.ClientInfo) Opt {
	return func(s *Session) error {
		s.clientInfo = info
		return nil
	}
}

// WithCapabilities overrides the derived client capabilities outright.
// Without this option, capabilities are derived from configuration: roots
// is present iff any Root was registered, sampling iff a sampling handler
// was registered.
func WithCapabilities(caps schema.ClientCapabilities) Opt {
	return func(s *Session) error {
		s.explicitCapabilities = &caps
		return nil
	}
}

// WithRoot registers an initial root. Roots are keyed by uri; a later
// WithRoot for the same uri overwrites the earlier one (last write wins —
// see DESIGN.md for the Open Question this resolves).
func WithRoot(root schema.Root) Opt {
	return func(s *Session) error {
		s.initialRoots = append(s.initialRoots, root)
		return nil
	}
}

// WithSamplingHandler registers the handler invoked for server-initiated
// sampling/createMessage requests. Its presence enables the "sampling"
// capability.
func WithSamplingHandler(h SamplingHandler) Opt {
	return func(s *Session) error {
		s.samplingHandler = h
		return nil
	}
}

// WithToolsChangeConsumer registers a consumer invoked with the refreshed
// tool list every time the server reports tools/list_changed. Multiple
// consumers may be registered; all are invoked on each event.
func WithToolsChangeConsumer(c ToolsChangeConsumer) Opt {
	return func(s *Session) error {
		s.toolsConsumers = append(s.toolsConsumers, c)
		return nil
	}
}

// WithResourcesChangeConsumer is the resources/list_changed analogue.
func WithResourcesChangeConsumer(c ResourcesChangeConsumer) Opt {
	return func(s *Session) error {
		s.resourcesConsumers = append(s.resourcesConsumers, c)
		return nil
	}
}

// WithPromptsChangeConsumer is the prompts/list_changed analogue.
func WithPromptsChangeConsumer(c PromptsChangeConsumer) Opt {
	return func(s *Session) error {
		s.promptsConsumers = append(s.promptsConsumers, c)
		return nil
	}
}

// WithResourceUpdatedConsumer registers the consumer notified when a
// subscribed resource at uri changes.
func WithResourceUpdatedConsumer(uri string, c ResourceUpdatedConsumer) Opt {
	return func(s *Session) error {
		s.resourceSubs[uri] = c
		return nil
	}
}

// WithLoggingConsumer registers the consumer for server logging
// notifications.
func WithLoggingConsumer(c LoggingConsumer) Opt {
	return func(s *Session) error {
		s.loggingConsumer = c
		return nil
	}
}

// WithProgressConsumer registers the consumer for server progress
// notifications.
func WithProgressConsumer(c ProgressConsumer) Opt {
	return func(s *Session) error {
		s.progressConsumer = c
		return nil
	}
}

// WithLogger overrides the default log.Default() diagnostic logger.
func WithLogger(l *log.Logger) Opt {
	return func(s *Session) error {
		s.logger = l
		return nil
	}
}

// WithTracer overrides the default no-op OpenTelemetry tracer used to
// wrap each correlated request in an "mcp.request" span.
func WithTracer(tr trace.Tracer) Opt {
	return func(s *Session) error {
		s.tracer = tr
		return nil
	}
}
