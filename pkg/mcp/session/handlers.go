package session

import (
	"context"
	"encoding/json"
	"sync"

	// Packages
	dispatcher "github.com/mutablelogic/go-mcp/pkg/mcp/dispatcher"
	schema "github.com/mutablelogic/go-mcp/pkg/mcp/schema"
)

////////////////////////////////////////////////////////////////////////////
// TYPES

// inFlight tracks the cancel funcs for server-initiated requests this
// session is currently answering, so an inbound notifications/cancelled
// can unblock the matching handler goroutine.
type inFlight struct {
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func newInFlight() *inFlight {
	return &inFlight{cancels: make(map[string]context.CancelFunc)}
}

func (f *inFlight) track(id schema.ID, cancel context.CancelFunc) {
	f.mu.Lock()
	f.cancels[id.String()] = cancel
	f.mu.Unlock()
}

func (f *inFlight) untrack(id schema.ID) {
	f.mu.Lock()
	delete(f.cancels, id.String())
	f.mu.Unlock()
}

func (f *inFlight) cancel(id schema.ID) bool {
	f.mu.Lock()
	cancel, ok := f.cancels[id.String()]
	f.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

////////////////////////////////////////////////////////////////////////////
// REGISTRATION

// registerBuiltins wires the server-initiated request handlers (ping,
// roots/list, sampling/createMessage) and the notification handlers
// (list_changed fan-out, resources/updated, logging, progress, cancelled)
// onto the dispatcher.
func (s *Session) registerBuiltins() {
	s.dispatcher.HandleRequest(schema.MethodPing, s.cancellable(s.handlePing))
	s.dispatcher.HandleRequest(schema.MethodRootsList, s.cancellable(s.handleRootsList))
	s.dispatcher.HandleRequest(schema.MethodSamplingCreateMessage, s.cancellable(s.handleCreateMessage))

	s.dispatcher.HandleNotification(schema.NotificationToolsListChanged, s.handleToolsListChanged)
	s.dispatcher.HandleNotification(schema.NotificationResourcesListChanged, s.handleResourcesListChanged)
	s.dispatcher.HandleNotification(schema.NotificationPromptsListChanged, s.handlePromptsListChanged)
	s.dispatcher.HandleNotification(schema.NotificationResourcesUpdated, s.handleResourceUpdated)
	s.dispatcher.HandleNotification(schema.NotificationMessage, s.handleLoggingMessage)
	s.dispatcher.HandleNotification(schema.NotificationProgress, s.handleProgress)
	s.dispatcher.HandleNotification(schema.NotificationCancelled, s.handleCancelled)
}

// cancellable derives a cancellable child context keyed by the inbound
// request's id (carried via dispatcher.RequestID), so a subsequent
// notifications/cancelled for that id can unblock the handler early.
func (s *Session) cancellable(h dispatcher.RequestHandler) dispatcher.RequestHandler {
	return func(ctx context.Context, params json.RawMessage) (any, error) {
		id, ok := dispatcher.RequestID(ctx)
		if !ok {
			return h(ctx, params)
		}

		child, cancel := context.WithCancel(ctx)
		defer cancel()
		s.inFlight.track(id, cancel)
		defer s.inFlight.untrack(id)

		return h(child, params)
	}
}

////////////////////////////////////////////////////////////////////////////
// BUILT-IN REQUEST HANDLERS

func (s *Session) handlePing(ctx context.Context, params json.RawMessage) (any, error) {
	return struct{}{}, nil
}

func (s *Session) handleRootsList(ctx context.Context, params json.RawMessage) (any, error) {
	return schema.ListRootsResult{Roots: s.rootRegistry.List()}, nil
}

func (s *Session) handleCreateMessage(ctx context.Context, params json.RawMessage) (any, error) {
	if s.samplingHandler == nil {
		return nil, schema.NewError(schema.ErrorCodeCapabilityUnsupported, "sampling is not supported by this client")
	}

	var req schema.CreateMessageParams
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, schema.NewError(schema.ErrorCodeInvalidParams, err.Error())
	}

	return s.samplingHandler(ctx, req)
}

////////////////////////////////////////////////////////////////////////////
// BUILT-IN NOTIFICATION HANDLERS

// handleToolsListChanged re-fetches the full tool list and fans it out to
// every registered consumer. list_changed carries no diff, so the only
// correct response to it is a full refetch.
func (s *Session) handleToolsListChanged(ctx context.Context, params json.RawMessage) {
	s.fanout.submitKind(fanoutTools, func() {
		tools, err := s.ListTools(ctx)
		if err != nil {
			s.logger.Printf("mcp: session %s: re-fetching tools after list_changed: %v", s.ID(), err)
			return
		}
		for _, c := range s.toolsConsumers {
			c(tools)
		}
	})
}

func (s *Session) handleResourcesListChanged(ctx context.Context, params json.RawMessage) {
	s.fanout.submitKind(fanoutResources, func() {
		resources, err := s.ListResources(ctx)
		if err != nil {
			s.logger.Printf("mcp: session %s: re-fetching resources after list_changed: %v", s.ID(), err)
			return
		}
		for _, c := range s.resourcesConsumers {
			c(resources)
		}
	})
}

func (s *Session) handlePromptsListChanged(ctx context.Context, params json.RawMessage) {
	s.fanout.submitKind(fanoutPrompts, func() {
		prompts, err := s.ListPrompts(ctx)
		if err != nil {
			s.logger.Printf("mcp: session %s: re-fetching prompts after list_changed: %v", s.ID(), err)
			return
		}
		for _, c := range s.promptsConsumers {
			c(prompts)
		}
	})
}

func (s *Session) handleResourceUpdated(ctx context.Context, params json.RawMessage) {
	var p schema.ResourceUpdatedParams
	if err := json.Unmarshal(params, &p); err != nil {
		s.logger.Printf("mcp: session %s: malformed resources/updated: %v", s.ID(), err)
		return
	}

	s.subsMu.Lock()
	consumer, ok := s.resourceSubs[p.URI]
	s.subsMu.Unlock()
	if !ok {
		return
	}

	s.fanout.submitKind(fanoutResourceUpdated, func() { consumer(p.URI) })
}

func (s *Session) handleLoggingMessage(ctx context.Context, params json.RawMessage) {
	if s.loggingConsumer == nil {
		return
	}
	var p schema.LoggingMessageParams
	if err := json.Unmarshal(params, &p); err != nil {
		s.logger.Printf("mcp: session %s: malformed notifications/message: %v", s.ID(), err)
		return
	}
	s.fanout.submitKind(fanoutLogging, func() { s.loggingConsumer(p) })
}

func (s *Session) handleProgress(ctx context.Context, params json.RawMessage) {
	if s.progressConsumer == nil {
		return
	}
	var p schema.ProgressParams
	if err := json.Unmarshal(params, &p); err != nil {
		s.logger.Printf("mcp: session %s: malformed notifications/progress: %v", s.ID(), err)
		return
	}
	s.fanout.submitKind(fanoutProgress, func() { s.progressConsumer(p) })
}

// handleCancelled applies notifications/cancelled to requests the *server*
// sent us: it unblocks whichever in-flight built-in handler (roots/list or
// sampling/createMessage) is still running for that id.
func (s *Session) handleCancelled(ctx context.Context, params json.RawMessage) {
	var p schema.CancelledParams
	if err := json.Unmarshal(params, &p); err != nil {
		s.logger.Printf("mcp: session %s: malformed notifications/cancelled: %v", s.ID(), err)
		return
	}
	s.inFlight.cancel(p.RequestID)
}
