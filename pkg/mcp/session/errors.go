package session

import "fmt"

////////////////////////////////////////////////////////////////////////////
// TYPES

// Err is a sentinel error kind, following the teacher module's Err-int
// idiom (see the upstream go-llm module's root error.go): each kind
// implements error directly and gains context via With/Withf, so callers
// can still errors.Is against the bare sentinel.
type Err int

const (
	ErrNotInitialized Err = iota
	ErrCapabilityUnsupported
	ErrTimeout
	ErrCancelled
	ErrSessionClosed
	ErrProtocolVersion
	ErrDuplicateRoot
	ErrInvalidArguments
)

////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (e Err) Error() string {
	switch e {
	case ErrNotInitialized:
		return "session is not initialized"
	case ErrCapabilityUnsupported:
		return "server does not support this capability"
	case ErrTimeout:
		return "request timed out"
	case ErrCancelled:
		return "request cancelled"
	case ErrSessionClosed:
		return "session closed"
	case ErrProtocolVersion:
		return "incompatible protocol version"
	case ErrDuplicateRoot:
		return "duplicate root uri"
	case ErrInvalidArguments:
		return "invalid arguments"
	default:
		return fmt.Sprintf("mcp: error code %d", int(e))
	}
}

// With appends context to the sentinel's message, keeping it matchable
// via errors.Is against the bare Err value.
func (e Err) With(args ...any) error {
	return fmt.Errorf("%w: %s", e, fmt.Sprint(args...))
}

// Withf is the Printf-style variant of With.
func (e Err) Withf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", e, fmt.Sprintf(format, args...))
}
