// Package syncclient wraps pkg/mcp/session behind the lazy-init, cached,
// blocking façade the teacher's pkg/mcp/client.Client presents over HTTP:
// the first call starts the session, subsequent calls reuse it, and Close
// tears it down. Every method here simply blocks on the matching
// session.Session call; the façade's only state of its own is the lazy-start
// guard and the tool cache CallTool validates against.
package syncclient

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	// Packages
	schema "github.com/mutablelogic/go-mcp/pkg/mcp/schema"
	session "github.com/mutablelogic/go-mcp/pkg/mcp/session"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Client is a blocking MCP client: it starts its underlying session on first
// use and caches the tool list for local CallTool argument validation,
// mirroring the teacher's Client.init/Client.tools pattern.
type Client struct {
	mu          sync.Mutex
	opts        []session.Opt
	session     *session.Session
	initialized bool
	tools       map[string]schema.Tool // cached by name, refreshed by ListTools
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New constructs a Client from session options. The underlying session is
// not started until the first call that needs it.
func New(opts ...session.Opt) *Client {
	return &Client{opts: opts}
}

// Close shuts down the underlying session. It is a no-op if the client was
// never initialized.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return nil
	}

	err := c.session.Close()
	c.initialized = false
	c.session = nil
	c.tools = nil
	return err
}

// ServerInfo returns the server information from the MCP handshake, or nil
// if the client has not yet been initialized.
func (c *Client) ServerInfo() *schema.ServerInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return nil
	}
	info := c.session.ServerInfo()
	return &info
}

// Capabilities returns the server's negotiated capabilities, or the zero
// value if the client has not yet been initialized.
func (c *Client) Capabilities() schema.ServerCapabilities {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return schema.ServerCapabilities{}
	}
	return c.session.ServerCapabilities()
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// init performs the handshake if not already done, following the teacher's
// "every public method calls c.init(ctx) first" shape.
func (c *Client) init(ctx context.Context) (*session.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return c.session, nil
	}

	s, err := session.New(c.opts...)
	if err != nil {
		return nil, fmt.Errorf("mcp: syncclient: %w", err)
	}
	if err := s.Start(ctx); err != nil {
		return nil, fmt.Errorf("mcp: syncclient: %w", err)
	}

	c.session = s
	c.initialized = true
	return s, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Ping issues a liveness check and blocks until the server answers.
func (c *Client) Ping(ctx context.Context) error {
	s, err := c.init(ctx)
	if err != nil {
		return err
	}
	return s.Ping(ctx)
}

// ListTools returns every tool the server advertises and refreshes the
// local cache CallTool validates arguments against.
func (c *Client) ListTools(ctx context.Context) ([]schema.Tool, error) {
	s, err := c.init(ctx)
	if err != nil {
		return nil, err
	}

	tools, err := s.ListTools(ctx)
	if err != nil {
		return nil, err
	}

	cache := make(map[string]schema.Tool, len(tools))
	for _, t := range tools {
		cache[t.Name] = t
	}
	c.mu.Lock()
	c.tools = cache
	c.mu.Unlock()

	return tools, nil
}

// CallTool executes a tool by name, validating args against the cached
// input schema (fetching the tool list first if it has never been listed),
// per the teacher's validateToolCall-before-dispatch shape.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (*schema.CallToolResult, error) {
	s, err := c.init(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	cached := c.tools
	c.mu.Unlock()
	if cached == nil {
		if _, err := c.ListTools(ctx); err != nil {
			return nil, fmt.Errorf("mcp: syncclient: fetching tools before call: %w", err)
		}
		c.mu.Lock()
		cached = c.tools
		c.mu.Unlock()
	}

	tool, ok := cached[name]
	if !ok {
		return nil, schema.NewError(schema.ErrorCodeMethodNotFound, fmt.Sprintf("tool not found: %q", name))
	}

	schemas := map[string]json.RawMessage{}
	if len(tool.InputSchema) > 0 {
		schemas[name] = tool.InputSchema
	}
	return s.CallTool(ctx, name, args, schemas)
}

// ListResources returns every resource the server advertises.
func (c *Client) ListResources(ctx context.Context) ([]schema.Resource, error) {
	s, err := c.init(ctx)
	if err != nil {
		return nil, err
	}
	return s.ListResources(ctx)
}

// ListResourceTemplates returns every resource template the server advertises.
func (c *Client) ListResourceTemplates(ctx context.Context) ([]schema.ResourceTemplate, error) {
	s, err := c.init(ctx)
	if err != nil {
		return nil, err
	}
	return s.ListResourceTemplates(ctx)
}

// ReadResource fetches the contents at uri.
func (c *Client) ReadResource(ctx context.Context, uri string) (*schema.ReadResourceResult, error) {
	s, err := c.init(ctx)
	if err != nil {
		return nil, err
	}
	return s.ReadResource(ctx, uri)
}

// SubscribeResource asks the server to emit updates for uri.
func (c *Client) SubscribeResource(ctx context.Context, uri string, consumer session.ResourceUpdatedConsumer) error {
	s, err := c.init(ctx)
	if err != nil {
		return err
	}
	return s.SubscribeResource(ctx, uri, consumer)
}

// UnsubscribeResource reverses SubscribeResource.
func (c *Client) UnsubscribeResource(ctx context.Context, uri string) error {
	s, err := c.init(ctx)
	if err != nil {
		return err
	}
	return s.UnsubscribeResource(ctx, uri)
}

// ListPrompts returns every prompt the server advertises.
func (c *Client) ListPrompts(ctx context.Context) ([]schema.Prompt, error) {
	s, err := c.init(ctx)
	if err != nil {
		return nil, err
	}
	return s.ListPrompts(ctx)
}

// GetPrompt resolves a named prompt template with the given arguments.
func (c *Client) GetPrompt(ctx context.Context, name string, args map[string]string) (*schema.GetPromptResult, error) {
	s, err := c.init(ctx)
	if err != nil {
		return nil, err
	}
	return s.GetPrompt(ctx, name, args)
}

// SetLoggingLevel asks the server to only emit log notifications at or
// above level.
func (c *Client) SetLoggingLevel(ctx context.Context, level schema.LoggingLevel) error {
	s, err := c.init(ctx)
	if err != nil {
		return err
	}
	return s.SetLoggingLevel(ctx, level)
}

// Roots returns the client's own root set.
func (c *Client) Roots() ([]schema.Root, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return nil, session.ErrNotInitialized
	}
	return c.session.Roots(), nil
}

// AddRoot adds a root and notifies the server of the change, if connected.
func (c *Client) AddRoot(ctx context.Context, root schema.Root) error {
	s, err := c.init(ctx)
	if err != nil {
		return err
	}
	s.AddRoot(root)
	return nil
}

// RemoveRoot removes a root by uri and notifies the server of the change.
func (c *Client) RemoveRoot(ctx context.Context, uri string) (bool, error) {
	s, err := c.init(ctx)
	if err != nil {
		return false, err
	}
	return s.RemoveRoot(uri), nil
}
