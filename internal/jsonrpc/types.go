package jsonrpc

import (
	"encoding/json"
	"strings"
)

// Version is the JSON-RPC version
const Version = "2.0"

// Standard JSON-RPC error codes
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// ID represents a JSON-RPC request/response ID
// It can be a string, number, or null
type ID struct {
	value interface{}
}

// NewIDInt creates an ID from an integer
func NewIDInt(n int64) ID {
	return ID{value: n}
}

// NewIDString creates an ID from a string
func NewIDString(s string) ID {
	return ID{value: s}
}

// IsNull returns true if the ID is null
func (id ID) IsNull() bool {
	return id.value == nil
}

// String returns the ID in its wire form, usable as a correlation key
func (id ID) String() string {
	b, err := json.Marshal(id.value)
	if err != nil {
		return "null"
	}
	return string(b)
}

// MarshalJSON implements json.Marshaler
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

// UnmarshalJSON implements json.Unmarshaler
func (id *ID) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &id.value)
}

// Error represents a JSON-RPC error returned by the endpoint
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// executionMessages are error fragments that indicate the request itself
// was bad (reverted call, bad nonce, not enough balance) rather than a
// failing endpoint.
var executionMessages = []string{
	"execution reverted",
	"insufficient funds",
	"nonce too low",
	"nonce too high",
	"already known",
	"replacement transaction underpriced",
	"gas required exceeds allowance",
}

// IsExecutionError reports whether the error describes a problem with
// the submitted call or transaction, as opposed to endpoint trouble.
func (e *Error) IsExecutionError() bool {
	if e == nil {
		return false
	}
	switch e.Code {
	case CodeParseError, CodeInvalidRequest, CodeInvalidParams:
		return true
	}
	msg := strings.ToLower(e.Message)
	for _, frag := range executionMessages {
		if strings.Contains(msg, frag) {
			return true
		}
	}
	return false
}
