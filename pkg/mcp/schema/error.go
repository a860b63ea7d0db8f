package schema

import (
	"encoding/json"
	"fmt"
)

////////////////////////////////////////////////////////////////////////////
// TYPES

// Error is a JSON-RPC 2.0 error object. It implements the error interface
// so it can be returned directly from client operations and matched with
// errors.As by callers who want the code and data.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewError constructs a JSON-RPC error with optional data.
func NewError(code int, message string, data ...any) *Error {
	e := &Error{Code: code, Message: message}
	if len(data) == 0 {
		return e
	}
	var v any
	if len(data) == 1 {
		v = data[0]
	} else {
		v = data
	}
	if b, err := json.Marshal(v); err == nil {
		e.Data = b
	}
	return e
}

////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if len(e.Data) > 0 {
		return fmt.Sprintf("mcp: %d: %s (%s)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("mcp: %d: %s", e.Code, e.Message)
}
