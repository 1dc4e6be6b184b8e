package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Response represents a JSON-RPC response
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      ID              `json:"id"`
}

// HasError returns true if the response contains an error
func (r *Response) HasError() bool {
	return r.Error != nil
}

// ResultIsNull returns true if the response result is JSON null
func (r *Response) ResultIsNull() bool {
	if r == nil {
		return true
	}
	if len(r.Result) == 0 {
		return true
	}
	return bytes.Equal(r.Result, []byte("null"))
}

// Err returns the response error as a Go error, or nil on success
func (r *Response) Err() error {
	if r.Error != nil {
		return r.Error
	}
	return nil
}

// UnmarshalResult unmarshals the result into the provided value
func (r *Response) UnmarshalResult(v interface{}) error {
	if r.HasError() {
		return r.Error
	}
	if r.ResultIsNull() {
		return fmt.Errorf("result is null")
	}
	return json.Unmarshal(r.Result, v)
}

// ParseResponse parses a JSON-RPC response from bytes
func ParseResponse(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &resp, nil
}

// ParseBatchResponse parses a batch of JSON-RPC responses
// A single object is accepted and returned as a one-element slice, which
// is how endpoints report batch-level errors.
func ParseBatchResponse(data []byte) ([]*Response, error) {
	data = trimWhitespace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty response body")
	}

	if data[0] == '[' {
		var responses []*Response
		if err := json.Unmarshal(data, &responses); err != nil {
			return nil, fmt.Errorf("failed to parse batch response: %w", err)
		}
		return responses, nil
	}

	resp, err := ParseResponse(data)
	if err != nil {
		return nil, err
	}
	return []*Response{resp}, nil
}

// trimWhitespace removes leading whitespace from byte slice
func trimWhitespace(data []byte) []byte {
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return data[i:]
		}
	}
	return data
}
