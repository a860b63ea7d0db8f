// Package schema defines the wire types for the Model Context Protocol:
// JSON-RPC 2.0 envelopes, method name constants, capability structures and
// the typed payloads exchanged by client operations.
package schema

////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	// RPCVersion is the literal value of the JSON-RPC "jsonrpc" field.
	RPCVersion = "2.0"

	// LatestProtocolVersion is the protocol version this runtime prefers
	// to negotiate during initialize.
	LatestProtocolVersion = "2025-06-18"
)

// SupportedProtocolVersions lists every protocol version string this
// runtime will accept from a server, latest first.
var SupportedProtocolVersions = []string{
	LatestProtocolVersion,
	"2025-03-26",
	"2024-11-05",
}

// IsSupportedProtocolVersion reports whether v is one this runtime
// negotiated and understands.
func IsSupportedProtocolVersion(v string) bool {
	for _, s := range SupportedProtocolVersions {
		if s == v {
			return true
		}
	}
	return false
}

////////////////////////////////////////////////////////////////////////////
// METHOD NAMES

const (
	// Client -> Server
	MethodInitialize             = "initialize"
	MethodPing                   = "ping"
	MethodToolsList              = "tools/list"
	MethodToolsCall              = "tools/call"
	MethodResourcesList          = "resources/list"
	MethodResourcesRead          = "resources/read"
	MethodResourcesTemplatesList = "resources/templates/list"
	MethodResourcesSubscribe     = "resources/subscribe"
	MethodResourcesUnsubscribe   = "resources/unsubscribe"
	MethodPromptsList            = "prompts/list"
	MethodPromptsGet             = "prompts/get"
	MethodLoggingSetLevel        = "logging/setLevel"
	MethodCompletionComplete     = "completion/complete"

	// Server -> Client
	MethodRootsList             = "roots/list"
	MethodSamplingCreateMessage = "sampling/createMessage"

	// Notifications (either direction)
	NotificationInitialized          = "notifications/initialized"
	NotificationCancelled            = "notifications/cancelled"
	NotificationProgress             = "notifications/progress"
	NotificationMessage              = "notifications/message"
	NotificationResourcesListChanged = "notifications/resources/list_changed"
	NotificationResourcesUpdated     = "notifications/resources/updated"
	NotificationToolsListChanged     = "notifications/tools/list_changed"
	NotificationPromptsListChanged   = "notifications/prompts/list_changed"
	NotificationRootsListChanged     = "notifications/roots/list_changed"
)

////////////////////////////////////////////////////////////////////////////
// JSON-RPC ERROR CODES

const (
	ErrorCodeParseError     = -32700
	ErrorCodeInvalidRequest = -32600
	ErrorCodeMethodNotFound = -32601
	ErrorCodeInvalidParams  = -32602
	ErrorCodeInternalError  = -32603

	// ErrorCodeCapabilityUnsupported is an MCP-specific error, in the
	// implementation-defined range (<= -32000).
	ErrorCodeCapabilityUnsupported = -32000
)
