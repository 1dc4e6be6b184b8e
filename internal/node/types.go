// Package node implements the workflow node itself: credential
// resolution, the operation catalog, dispatch, and the poll trigger
// hand-off. The host talks to it through the HTTP contract in
// internal/server.
package node

import "encoding/json"

// ExecuteRequest is one host call. Items run sequentially against the
// endpoints the credentials resolve to.
type ExecuteRequest struct {
	Credentials    Credentials   `json:"credentials"`
	Items          []ExecuteItem `json:"items"`
	ContinueOnFail bool          `json:"continueOnFail,omitempty"`
}

// ExecuteItem selects one operation with its parameters
type ExecuteItem struct {
	Resource  string                 `json:"resource"`
	Operation string                 `json:"operation"`
	Params    map[string]interface{} `json:"params,omitempty"`
}

// ExecuteResponse carries one result per processed item. When an item
// fails and continueOnFail is off, later items are not processed and
// have no result.
type ExecuteResponse struct {
	Results []ItemResult `json:"results"`
}

// ItemResult is the outcome of one item
type ItemResult struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error *OpError        `json:"error,omitempty"`
	Notes []string        `json:"notes,omitempty"`
}

// Error kinds, from the caller's point of view: fix the request, fix
// the credentials, the thing does not exist, or the upstream misbehaved.
const (
	KindValidation = "validation_error"
	KindAuth       = "auth_error"
	KindNotFound   = "not_found"
	KindUpstream   = "upstream_error"
	KindInternal   = "internal_error"
)

// OpError is a structured operation failure
type OpError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// Error implements the error interface
func (e *OpError) Error() string {
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

// result is the internal shape ops return before JSON encoding
type result struct {
	data  interface{}
	notes []string
}

func okResult(data interface{}, notes ...string) (*result, error) {
	return &result{data: data, notes: notes}, nil
}
