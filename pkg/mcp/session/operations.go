package session

import (
	"context"
	"encoding/json"
	"fmt"

	// Packages
	schema "github.com/mutablelogic/go-mcp/pkg/mcp/schema"
	jsonschema "github.com/google/jsonschema-go/jsonschema"
)

////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Ping issues a liveness check and blocks until the server answers or the
// request times out.
func (s *Session) Ping(ctx context.Context) error {
	_, err := s.call(ctx, schema.MethodPing, nil)
	return err
}

// ListTools returns every tool the server advertises, paging internally
// until the server stops returning a NextCursor. Cursors are an
// implementation detail of the wire protocol, not something callers should
// have to juggle themselves.
func (s *Session) ListTools(ctx context.Context) ([]schema.Tool, error) {
	if !s.ServerCapabilities().HasTools() {
		return nil, ErrCapabilityUnsupported.With("tools")
	}

	var out []schema.Tool
	cursor := ""
	for {
		params, _ := json.Marshal(schema.ListParams{Cursor: cursor})
		raw, err := s.call(ctx, schema.MethodToolsList, params)
		if err != nil {
			return nil, err
		}
		var page schema.ListToolsResult
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("mcp: session: decode tools/list: %w", err)
		}
		out = append(out, page.Tools...)
		if page.NextCursor == "" {
			return out, nil
		}
		cursor = page.NextCursor
	}
}

// CallTool validates args against the tool's advertised input schema (when
// known locally) before issuing tools/call, catching malformed arguments
// locally instead of burning a round trip to find out from the server.
func (s *Session) CallTool(ctx context.Context, name string, args map[string]any, schemas map[string]json.RawMessage) (*schema.CallToolResult, error) {
	if !s.ServerCapabilities().HasTools() {
		return nil, ErrCapabilityUnsupported.With("tools")
	}

	if raw, ok := schemas[name]; ok && len(raw) > 0 {
		if err := validateAgainstSchema(raw, args); err != nil {
			return nil, ErrInvalidArguments.Withf("%s: %v", name, err)
		}
	}

	argsJSON, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("mcp: session: encode tool arguments: %w", err)
	}

	params, err := json.Marshal(schema.CallToolParams{Name: name, Arguments: argsJSON})
	if err != nil {
		return nil, fmt.Errorf("mcp: session: encode tools/call params: %w", err)
	}

	raw, err := s.call(ctx, schema.MethodToolsCall, params)
	if err != nil {
		return nil, err
	}

	var result schema.CallToolResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("mcp: session: decode tools/call result: %w", err)
	}
	return &result, nil
}

// ListResources returns every resource the server advertises, draining
// pagination internally.
func (s *Session) ListResources(ctx context.Context) ([]schema.Resource, error) {
	if !s.ServerCapabilities().HasResources() {
		return nil, ErrCapabilityUnsupported.With("resources")
	}

	var out []schema.Resource
	cursor := ""
	for {
		params, _ := json.Marshal(schema.ListParams{Cursor: cursor})
		raw, err := s.call(ctx, schema.MethodResourcesList, params)
		if err != nil {
			return nil, err
		}
		var page schema.ListResourcesResult
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("mcp: session: decode resources/list: %w", err)
		}
		out = append(out, page.Resources...)
		if page.NextCursor == "" {
			return out, nil
		}
		cursor = page.NextCursor
	}
}

// ListResourceTemplates returns every resource template, draining
// pagination internally.
func (s *Session) ListResourceTemplates(ctx context.Context) ([]schema.ResourceTemplate, error) {
	if !s.ServerCapabilities().HasResources() {
		return nil, ErrCapabilityUnsupported.With("resources")
	}

	var out []schema.ResourceTemplate
	cursor := ""
	for {
		params, _ := json.Marshal(schema.ListParams{Cursor: cursor})
		raw, err := s.call(ctx, schema.MethodResourcesTemplatesList, params)
		if err != nil {
			return nil, err
		}
		var page schema.ListResourceTemplatesResult
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("mcp: session: decode resources/templates/list: %w", err)
		}
		out = append(out, page.ResourceTemplates...)
		if page.NextCursor == "" {
			return out, nil
		}
		cursor = page.NextCursor
	}
}

// ReadResource fetches the contents at uri.
func (s *Session) ReadResource(ctx context.Context, uri string) (*schema.ReadResourceResult, error) {
	if !s.ServerCapabilities().HasResources() {
		return nil, ErrCapabilityUnsupported.With("resources")
	}

	params, err := json.Marshal(schema.ReadResourceParams{URI: uri})
	if err != nil {
		return nil, fmt.Errorf("mcp: session: encode resources/read params: %w", err)
	}

	raw, err := s.call(ctx, schema.MethodResourcesRead, params)
	if err != nil {
		return nil, err
	}

	var result schema.ReadResourceResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("mcp: session: decode resources/read result: %w", err)
	}
	return &result, nil
}

// SubscribeResource asks the server to emit resources/updated for uri and
// registers the local consumer invoked on each update. The server must
// advertise resources.subscribe.
func (s *Session) SubscribeResource(ctx context.Context, uri string, consumer ResourceUpdatedConsumer) error {
	if !s.ServerCapabilities().HasResourceSubscribe() {
		return ErrCapabilityUnsupported.With("resources.subscribe")
	}

	params, err := json.Marshal(schema.SubscribeResourceParams{URI: uri})
	if err != nil {
		return fmt.Errorf("mcp: session: encode resources/subscribe params: %w", err)
	}

	if _, err := s.call(ctx, schema.MethodResourcesSubscribe, params); err != nil {
		return err
	}

	s.subsMu.Lock()
	s.resourceSubs[uri] = consumer
	s.subsMu.Unlock()
	return nil
}

// UnsubscribeResource reverses SubscribeResource.
func (s *Session) UnsubscribeResource(ctx context.Context, uri string) error {
	if !s.ServerCapabilities().HasResourceSubscribe() {
		return ErrCapabilityUnsupported.With("resources.subscribe")
	}

	params, err := json.Marshal(schema.SubscribeResourceParams{URI: uri})
	if err != nil {
		return fmt.Errorf("mcp: session: encode resources/unsubscribe params: %w", err)
	}

	if _, err := s.call(ctx, schema.MethodResourcesUnsubscribe, params); err != nil {
		return err
	}

	s.subsMu.Lock()
	delete(s.resourceSubs, uri)
	s.subsMu.Unlock()
	return nil
}

// ListPrompts returns every prompt the server advertises, draining
// pagination internally.
func (s *Session) ListPrompts(ctx context.Context) ([]schema.Prompt, error) {
	if !s.ServerCapabilities().HasPrompts() {
		return nil, ErrCapabilityUnsupported.With("prompts")
	}

	var out []schema.Prompt
	cursor := ""
	for {
		params, _ := json.Marshal(schema.ListParams{Cursor: cursor})
		raw, err := s.call(ctx, schema.MethodPromptsList, params)
		if err != nil {
			return nil, err
		}
		var page schema.ListPromptsResult
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("mcp: session: decode prompts/list: %w", err)
		}
		out = append(out, page.Prompts...)
		if page.NextCursor == "" {
			return out, nil
		}
		cursor = page.NextCursor
	}
}

// GetPrompt resolves a named prompt template with the given arguments.
func (s *Session) GetPrompt(ctx context.Context, name string, args map[string]string) (*schema.GetPromptResult, error) {
	if !s.ServerCapabilities().HasPrompts() {
		return nil, ErrCapabilityUnsupported.With("prompts")
	}

	params, err := json.Marshal(schema.GetPromptParams{Name: name, Arguments: args})
	if err != nil {
		return nil, fmt.Errorf("mcp: session: encode prompts/get params: %w", err)
	}

	raw, err := s.call(ctx, schema.MethodPromptsGet, params)
	if err != nil {
		return nil, err
	}

	var result schema.GetPromptResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("mcp: session: decode prompts/get result: %w", err)
	}
	return &result, nil
}

// SetLoggingLevel asks the server to only emit notifications/message at or
// above level. The server must advertise the logging capability.
func (s *Session) SetLoggingLevel(ctx context.Context, level schema.LoggingLevel) error {
	if !s.ServerCapabilities().HasLogging() {
		return ErrCapabilityUnsupported.With("logging")
	}

	params, err := json.Marshal(schema.SetLevelParams{Level: level})
	if err != nil {
		return fmt.Errorf("mcp: session: encode logging/setLevel params: %w", err)
	}

	_, err = s.call(ctx, schema.MethodLoggingSetLevel, params)
	return err
}

////////////////////////////////////////////////////////////////////////////
// PRIVATE HELPERS

// validateAgainstSchema follows the teacher's pattern of unmarshalling a
// raw JSON Schema document into google/jsonschema-go, resolving it, and
// validating a native Go value (not raw JSON bytes) against it.
func validateAgainstSchema(raw json.RawMessage, args map[string]any) error {
	var s jsonschema.Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return fmt.Errorf("invalid input schema: %w", err)
	}

	resolved, err := s.Resolve(nil)
	if err != nil {
		return fmt.Errorf("invalid input schema: %w", err)
	}

	var instance any = args
	if args == nil {
		instance = map[string]any{}
	}
	if err := resolved.Validate(instance); err != nil {
		return fmt.Errorf("argument validation: %w", err)
	}
	return nil
}
