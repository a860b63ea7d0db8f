package schema

////////////////////////////////////////////////////////////////////////////
// TYPES

// ClientInfo identifies this runtime to the server during initialize.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ServerInfo is captured from the initialize response.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// RootsCapability advertises that this client maintains a set of roots
// and will notify the server when that set changes.
type RootsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ClientCapabilities is derived from configuration: Roots is present iff
// any Root was registered; Sampling is present iff a sampling handler was
// registered.
type ClientCapabilities struct {
	Roots        *RootsCapability `json:"roots,omitempty"`
	Sampling     map[string]any  `json:"sampling,omitempty"`
	Experimental map[string]any  `json:"experimental,omitempty"`
}

// ToolsCapability advertises server-side tool list-changed notifications.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ResourcesCapability advertises server-side resource subscription and
// list-changed notifications.
type ResourcesCapability struct {
	Subscribe   bool `json:"subscribe,omitempty"`
	ListChanged bool `json:"listChanged,omitempty"`
}

// PromptsCapability advertises server-side prompt list-changed notifications.
type PromptsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ServerCapabilities is captured from the initialize response and is
// immutable for the session's lifetime thereafter.
type ServerCapabilities struct {
	Tools        *ToolsCapability     `json:"tools,omitempty"`
	Resources    *ResourcesCapability `json:"resources,omitempty"`
	Prompts      *PromptsCapability   `json:"prompts,omitempty"`
	Logging      map[string]any       `json:"logging,omitempty"`
	Experimental map[string]any       `json:"experimental,omitempty"`
}

////////////////////////////////////////////////////////////////////////////
// INITIALIZE PAYLOADS

// InitializeParams is sent as the params of the initialize request.
type InitializeParams struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ClientCapabilities `json:"capabilities"`
	ClientInfo      ClientInfo         `json:"clientInfo"`
}

// InitializeResult is the result of a successful initialize request.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      ServerInfo         `json:"serverInfo"`
	Instructions    string             `json:"instructions,omitempty"`
}

////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// HasTools reports whether the server advertised the tools capability.
func (c ServerCapabilities) HasTools() bool { return c.Tools != nil }

// HasResources reports whether the server advertised the resources capability.
func (c ServerCapabilities) HasResources() bool { return c.Resources != nil }

// HasResourceSubscribe reports whether the server supports resources/subscribe.
func (c ServerCapabilities) HasResourceSubscribe() bool {
	return c.Resources != nil && c.Resources.Subscribe
}

// HasPrompts reports whether the server advertised the prompts capability.
func (c ServerCapabilities) HasPrompts() bool { return c.Prompts != nil }

// HasLogging reports whether the server advertised the logging capability.
func (c ServerCapabilities) HasLogging() bool { return c.Logging != nil }
