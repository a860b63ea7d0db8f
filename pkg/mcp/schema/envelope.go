package schema

import (
	"encoding/json"
	"fmt"
)

////////////////////////////////////////////////////////////////////////////
// TYPES

// Kind classifies a decoded envelope.
type Kind int

const (
	KindUnknown Kind = iota
	KindRequest
	KindResponse
	KindErrorResponse
	KindNotification
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindResponse:
		return "response"
	case KindErrorResponse:
		return "error_response"
	case KindNotification:
		return "notification"
	default:
		return "unknown"
	}
}

// Request is an outbound or inbound JSON-RPC request carrying an id that
// expects a matching Response or ErrorResponse.
type Request struct {
	Version string          `json:"jsonrpc"`
	ID      ID              `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a successful JSON-RPC reply.
type Response struct {
	Version string          `json:"jsonrpc"`
	ID      ID              `json:"id"`
	Result  json.RawMessage `json:"result"`
}

// ErrorResponse is a failed JSON-RPC reply.
type ErrorResponse struct {
	Version string `json:"jsonrpc"`
	ID      ID     `json:"id"`
	Error   *Error `json:"error"`
}

// Notification is a JSON-RPC message with no id; no reply is expected.
type Notification struct {
	Version string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Envelope is the decoded, tagged union of every message shape that can
// arrive on the wire. Exactly one of the typed fields is non-nil, selected
// by Kind.
type Envelope struct {
	Kind         Kind
	Request      *Request
	Response     *Response
	ErrorResp    *ErrorResponse
	Notification *Notification
}

// probe is the shape used to classify a raw envelope before refining it
// into a concrete variant: whether it carries an id, and which of
// method/result/error it carries.
type probe struct {
	Version string          `json:"jsonrpc"`
	ID      *ID             `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewRequest builds an outbound Request envelope.
func NewRequest(id ID, method string, params json.RawMessage) *Request {
	return &Request{Version: RPCVersion, ID: id, Method: method, Params: params}
}

// NewNotification builds an outbound Notification envelope.
func NewNotification(method string, params json.RawMessage) *Notification {
	return &Notification{Version: RPCVersion, Method: method, Params: params}
}

// NewResponse builds a successful reply to id.
func NewResponse(id ID, result json.RawMessage) *Response {
	return &Response{Version: RPCVersion, ID: id, Result: result}
}

// NewErrorResponse builds a failed reply to id.
func NewErrorResponse(id ID, err *Error) *ErrorResponse {
	return &ErrorResponse{Version: RPCVersion, ID: id, Error: err}
}

////////////////////////////////////////////////////////////////////////////
// DECODE

// DecodeEnvelope classifies and fully decodes a raw wire message. It
// returns a nil Envelope only together with a non-nil error, for input that
// is not JSON or matches none of the four shapes; the dispatcher logs and
// drops such messages.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var p probe
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("mcp: malformed envelope: %w", err)
	}

	hasID := p.ID != nil && !p.ID.IsZero()

	switch {
	case hasID && p.Error != nil:
		return &Envelope{
			Kind: KindErrorResponse,
			ErrorResp: &ErrorResponse{
				Version: p.Version,
				ID:      *p.ID,
				Error:   p.Error,
			},
		}, nil

	case hasID && p.Method == "":
		// Has id, no method: a result-bearing response. Result may
		// legitimately be absent (e.g. null/empty-object results), so we
		// don't require p.Result to be non-empty.
		return &Envelope{
			Kind: KindResponse,
			Response: &Response{
				Version: p.Version,
				ID:      *p.ID,
				Result:  p.Result,
			},
		}, nil

	case hasID && p.Method != "":
		return &Envelope{
			Kind: KindRequest,
			Request: &Request{
				Version: p.Version,
				ID:      *p.ID,
				Method:  p.Method,
				Params:  p.Params,
			},
		}, nil

	case !hasID && p.Method != "":
		return &Envelope{
			Kind: KindNotification,
			Notification: &Notification{
				Version: p.Version,
				Method:  p.Method,
				Params:  p.Params,
			},
		}, nil

	default:
		return nil, fmt.Errorf("mcp: envelope has neither a recognizable request, response, nor notification shape")
	}
}

// Encode marshals any of the four envelope variants (or an *Envelope
// itself) to wire JSON.
func Encode(v any) ([]byte, error) {
	switch e := v.(type) {
	case *Envelope:
		switch e.Kind {
		case KindRequest:
			return json.Marshal(e.Request)
		case KindResponse:
			return json.Marshal(e.Response)
		case KindErrorResponse:
			return json.Marshal(e.ErrorResp)
		case KindNotification:
			return json.Marshal(e.Notification)
		default:
			return nil, fmt.Errorf("mcp: cannot encode envelope of unknown kind")
		}
	default:
		return json.Marshal(v)
	}
}
