package node

import (
	"context"
	"errors"
	"fmt"

	"fanlink/internal/chain"
	"fanlink/internal/explorer"
	"fanlink/internal/fanapi"
	"fanlink/internal/jsonrpc"
)

func validationErr(format string, args ...interface{}) error {
	return &OpError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func notFoundErr(format string, args ...interface{}) error {
	return &OpError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// classify maps client errors onto the wire error kinds. Anything we
// cannot attribute stays an upstream error so the host retries rather
// than blaming the workflow.
func classify(err error) *OpError {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr
	}

	if errors.Is(err, chain.ErrNotFound) || errors.Is(err, fanapi.ErrNotFound) {
		return &OpError{Kind: KindNotFound, Message: err.Error()}
	}

	var rpcErr *jsonrpc.Error
	if errors.As(err, &rpcErr) {
		kind := KindUpstream
		if rpcErr.IsExecutionError() {
			// The endpoint rejected the call itself, so the inputs are
			// the problem, not the endpoint.
			kind = KindValidation
		}
		return &OpError{
			Kind:    kind,
			Message: "endpoint rejected request",
			Detail:  fmt.Sprintf("code %d: %s", rpcErr.Code, rpcErr.Message),
		}
	}

	var expErr *explorer.APIError
	if errors.As(err, &expErr) {
		return &OpError{Kind: KindUpstream, Message: "explorer request failed", Detail: expErr.Error()}
	}

	var fanErr *fanapi.APIError
	if errors.As(err, &fanErr) {
		kind := KindUpstream
		if fanErr.IsAuth() {
			kind = KindAuth
		}
		return &OpError{Kind: kind, Message: "partner request failed", Detail: fanErr.Error()}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &OpError{Kind: KindUpstream, Message: "request timed out", Detail: err.Error()}
	}
	if errors.Is(err, context.Canceled) {
		return &OpError{Kind: KindUpstream, Message: "request canceled"}
	}

	return &OpError{Kind: KindUpstream, Message: err.Error()}
}
