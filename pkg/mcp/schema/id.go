package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
)

////////////////////////////////////////////////////////////////////////////
// TYPES

// ID is a JSON-RPC request identifier: either a string or a 64-bit
// integer. The Go zero value ID{} is the integer ID 0. An ID decoded from
// a JSON null reports IsZero, and DecodeEnvelope treats it like an absent
// id.
type ID struct {
	str    string
	num    int64
	isStr  bool
	isZero bool
}

////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewID returns an integer-valued request ID.
func NewID(n int64) ID {
	return ID{num: n}
}

// NewStringID returns a string-valued request ID.
func NewStringID(s string) ID {
	return ID{str: s, isStr: true}
}

////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// IsZero reports whether this ID was decoded from a JSON null. It is false
// for the Go zero value ID{}, which is the integer 0.
func (id ID) IsZero() bool {
	return id.isZero
}

// IsString reports whether the ID holds a string value.
func (id ID) IsString() bool {
	return id.isStr
}

// Int returns the integer value (zero if the ID is a string).
func (id ID) Int() int64 {
	return id.num
}

// String renders the ID for logging, regardless of its underlying kind.
func (id ID) String() string {
	if id.isStr {
		return id.str
	}
	return strconv.FormatInt(id.num, 10)
}

// Equal reports whether two IDs denote the same request.
func (id ID) Equal(other ID) bool {
	if id.isStr != other.isStr {
		return false
	}
	if id.isStr {
		return id.str == other.str
	}
	return id.num == other.num
}

////////////////////////////////////////////////////////////////////////////
// JSON

func zeroID() ID {
	return ID{isZero: true}
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id.isZero {
		return []byte("null"), nil
	}
	if id.isStr {
		return json.Marshal(id.str)
	}
	return json.Marshal(id.num)
}

func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = zeroID()
		return nil
	}
	var asNum int64
	if err := json.Unmarshal(data, &asNum); err == nil {
		*id = ID{num: asNum}
		return nil
	}
	var asStr string
	if err := json.Unmarshal(data, &asStr); err == nil {
		*id = ID{str: asStr, isStr: true}
		return nil
	}
	return fmt.Errorf("mcp: request id must be a string or number, got %s", data)
}
