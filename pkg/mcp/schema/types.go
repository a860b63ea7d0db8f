package schema

import "encoding/json"

////////////////////////////////////////////////////////////////////////////
// PAGINATION

// ListParams carries the opaque pagination cursor used by every list
// operation. An empty Cursor requests the first page.
type ListParams struct {
	Cursor string `json:"cursor,omitempty"`
}

////////////////////////////////////////////////////////////////////////////
// ROOTS

// Root is a file-or-namespace anchor the client authorizes the server to
// address. Keyed by URI, which must be unique within a session.
type Root struct {
	URI  string `json:"uri"`
	Name string `json:"name,omitempty"`
}

type ListRootsResult struct {
	Roots []Root `json:"roots"`
}

////////////////////////////////////////////////////////////////////////////
// TOOLS

// Tool is an opaque content descriptor; the core only cares about its
// list identity (Name) and its InputSchema for client-side pre-flight
// argument validation.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

type ListToolsResult struct {
	Tools      []Tool `json:"tools"`
	NextCursor string `json:"nextCursor,omitempty"`
}

type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Content is a single piece of tool-call or prompt-message content.
type Content struct {
	Type     string          `json:"type"` // "text", "image", "audio", "resource_link", "resource"
	Text     string          `json:"text,omitempty"`
	Data     string          `json:"data,omitempty"`
	MimeType string          `json:"mimeType,omitempty"`
	URI      string          `json:"uri,omitempty"`
	Name     string          `json:"name,omitempty"`
	Resource json.RawMessage `json:"resource,omitempty"`
}

type CallToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

////////////////////////////////////////////////////////////////////////////
// RESOURCES

// Resource is an opaque content descriptor; the core only cares about its
// list identity (URI/Name).
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

type ResourceTemplate struct {
	URITemplate string `json:"uriTemplate"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

type ListResourcesResult struct {
	Resources  []Resource `json:"resources"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

type ListResourceTemplatesResult struct {
	ResourceTemplates []ResourceTemplate `json:"resourceTemplates"`
	NextCursor        string             `json:"nextCursor,omitempty"`
}

type ReadResourceParams struct {
	URI string `json:"uri"`
}

type ResourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"`
}

type ReadResourceResult struct {
	Contents []ResourceContents `json:"contents"`
}

type SubscribeResourceParams struct {
	URI string `json:"uri"`
}

type ResourceUpdatedParams struct {
	URI string `json:"uri"`
}

////////////////////////////////////////////////////////////////////////////
// PROMPTS

// Prompt is an opaque content descriptor; the core only cares about its
// list identity (Name).
type Prompt struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Arguments   []PromptArgument `json:"arguments,omitempty"`
}

type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

type ListPromptsResult struct {
	Prompts    []Prompt `json:"prompts"`
	NextCursor string   `json:"nextCursor,omitempty"`
}

type GetPromptParams struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

type PromptMessage struct {
	Role    string  `json:"role"`
	Content Content `json:"content"`
}

type GetPromptResult struct {
	Description string          `json:"description,omitempty"`
	Messages    []PromptMessage `json:"messages"`
}

////////////////////////////////////////////////////////////////////////////
// LOGGING

// LoggingLevel is one of the eight RFC-5424-derived severities MCP uses.
type LoggingLevel string

const (
	LogLevelDebug     LoggingLevel = "debug"
	LogLevelInfo      LoggingLevel = "info"
	LogLevelNotice    LoggingLevel = "notice"
	LogLevelWarning   LoggingLevel = "warning"
	LogLevelError     LoggingLevel = "error"
	LogLevelCritical  LoggingLevel = "critical"
	LogLevelAlert     LoggingLevel = "alert"
	LogLevelEmergency LoggingLevel = "emergency"
)

// severityOrder ranks levels from least to most severe, for any future
// level-gating; debug is 0, emergency is 7.
var severityOrder = map[LoggingLevel]int{
	LogLevelDebug: 0, LogLevelInfo: 1, LogLevelNotice: 2, LogLevelWarning: 3,
	LogLevelError: 4, LogLevelCritical: 5, LogLevelAlert: 6, LogLevelEmergency: 7,
}

// Severity returns the ordinal rank of the level, or -1 if unrecognized.
func (l LoggingLevel) Severity() int {
	if v, ok := severityOrder[l]; ok {
		return v
	}
	return -1
}

type SetLevelParams struct {
	Level LoggingLevel `json:"level"`
}

type LoggingMessageParams struct {
	Level  LoggingLevel    `json:"level"`
	Logger string          `json:"logger,omitempty"`
	Data   json.RawMessage `json:"data"`
}

////////////////////////////////////////////////////////////////////////////
// PROGRESS & CANCELLATION

type ProgressParams struct {
	ProgressToken json.RawMessage `json:"progressToken"`
	Progress      float64         `json:"progress"`
	Total         float64         `json:"total,omitempty"`
	Message       string          `json:"message,omitempty"`
}

type CancelledParams struct {
	RequestID ID     `json:"requestId"`
	Reason    string `json:"reason,omitempty"`
}

////////////////////////////////////////////////////////////////////////////
// SAMPLING

type SamplingMessage struct {
	Role    string  `json:"role"`
	Content Content `json:"content"`
}

type ModelPreferences struct {
	Hints                []map[string]string `json:"hints,omitempty"`
	CostPriority         float64              `json:"costPriority,omitempty"`
	SpeedPriority        float64              `json:"speedPriority,omitempty"`
	IntelligencePriority float64              `json:"intelligencePriority,omitempty"`
}

// CreateMessageParams is the params of a server-initiated
// sampling/createMessage request; its contents are opaque to the core
// except for routing to the user-supplied sampling handler.
type CreateMessageParams struct {
	Messages         []SamplingMessage `json:"messages"`
	ModelPreferences *ModelPreferences `json:"modelPreferences,omitempty"`
	SystemPrompt     string            `json:"systemPrompt,omitempty"`
	MaxTokens        int               `json:"maxTokens,omitempty"`
}

// CreateMessageResult is the client's reply to a sampling request.
type CreateMessageResult struct {
	Role       string  `json:"role"`
	Content    Content `json:"content"`
	Model      string  `json:"model"`
	StopReason string  `json:"stopReason,omitempty"`
}
