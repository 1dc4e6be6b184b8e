// Package chain implements the JSON-RPC client for EVM endpoints. One
// Client owns one endpoint; Pool hands out shared clients per endpoint
// URL. Requests go over HTTP unless the client was built to prefer an
// available WebSocket transport.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"fanlink/internal/jsonrpc"
)

// Options for creating a new Client
type Options struct {
	RPCURL         string
	WSURL          string
	PreferWS       bool
	RequestTimeout time.Duration
	Logger         zerolog.Logger
}

// Client talks JSON-RPC to a single endpoint
type Client struct {
	rpcURL   string
	wsURL    string
	preferWS bool

	httpClient *http.Client
	wsClient   *WSClient
	logger     zerolog.Logger

	reqID    atomic.Int64
	requests atomic.Uint64
}

// NewClient creates a new Client instance
func NewClient(opts Options) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
		DisableCompression:  true,
	}

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		rpcURL:   opts.RPCURL,
		wsURL:    opts.WSURL,
		preferWS: opts.PreferWS,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		logger: opts.Logger.With().Str("endpoint", opts.RPCURL).Logger(),
	}
}

// RPCURL returns the HTTP endpoint URL
func (c *Client) RPCURL() string {
	return c.rpcURL
}

// RequestCount returns the number of requests sent since startup
func (c *Client) RequestCount() uint64 {
	return c.requests.Load()
}

// ConnectWS establishes the WebSocket transport. Requests keep flowing
// over HTTP until this succeeds.
func (c *Client) ConnectWS(ctx context.Context) error {
	if c.wsURL == "" {
		return fmt.Errorf("WebSocket URL not configured")
	}
	if c.wsClient != nil {
		return nil
	}
	ws := NewWSClient(c.wsURL, c.httpClient.Timeout, 3*time.Second, c.logger)
	if err := ws.Connect(ctx); err != nil {
		return err
	}
	c.wsClient = ws
	return nil
}

// Call sends a single JSON-RPC request and returns the raw result.
// A JSON-RPC level error comes back as *jsonrpc.Error.
func (c *Client) Call(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	req, err := jsonrpc.NewRequest(method, params, jsonrpc.NewIDInt(c.reqID.Add(1)))
	if err != nil {
		return nil, err
	}

	resp, err := c.execute(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	if resp.HasError() {
		c.logger.Debug().
			Str("method", method).
			Int("code", resp.Error.Code).
			Str("message", resp.Error.Message).
			Msg("endpoint returned error")
		return nil, resp.Error
	}
	return resp.Result, nil
}

// CallInto sends a request and unmarshals the result into out
func (c *Client) CallInto(ctx context.Context, method string, params interface{}, out interface{}) error {
	result, err := c.Call(ctx, method, params)
	if err != nil {
		return err
	}
	if isNullResult(result) {
		return ErrNotFound
	}
	return json.Unmarshal(result, out)
}

// BatchCall is one entry of a JSON-RPC batch
type BatchCall struct {
	Method string
	Params interface{}
}

// CallBatch sends all calls as one JSON-RPC batch and returns responses
// in request order. Individual entries may still carry errors.
func (c *Client) CallBatch(ctx context.Context, calls []BatchCall) ([]*jsonrpc.Response, error) {
	if len(calls) == 0 {
		return nil, nil
	}

	requests := make([]*jsonrpc.Request, len(calls))
	byID := make(map[string]int, len(calls))
	for i, call := range calls {
		id := jsonrpc.NewIDInt(c.reqID.Add(1))
		req, err := jsonrpc.NewRequest(call.Method, call.Params, id)
		if err != nil {
			return nil, err
		}
		requests[i] = req
		byID[id.String()] = i
	}

	body, err := jsonrpc.MarshalBatch(requests)
	if err != nil {
		return nil, err
	}

	raw, err := c.post(ctx, body)
	if err != nil {
		return nil, err
	}

	responses, err := jsonrpc.ParseBatchResponse(raw)
	if err != nil {
		return nil, err
	}

	// Endpoints may answer out of order; put responses back in request order
	ordered := make([]*jsonrpc.Response, len(calls))
	for _, resp := range responses {
		if idx, ok := byID[resp.ID.String()]; ok {
			ordered[idx] = resp
		}
	}
	for i, resp := range ordered {
		if resp == nil {
			return nil, fmt.Errorf("batch response missing entry for %s", calls[i].Method)
		}
	}
	return ordered, nil
}

func (c *Client) execute(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
	if c.preferWS && c.wsClient != nil {
		return c.wsClient.SendRequest(ctx, req)
	}

	body, err := req.Bytes()
	if err != nil {
		return nil, err
	}
	raw, err := c.post(ctx, body)
	if err != nil {
		return nil, err
	}
	return jsonrpc.ParseResponse(raw)
}

func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	if c.rpcURL == "" {
		return nil, fmt.Errorf("RPC URL not configured")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	c.requests.Add(1)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error %d: %s", resp.StatusCode, truncate(raw, 256))
	}
	return raw, nil
}

// Close releases transport resources
func (c *Client) Close() {
	if c.wsClient != nil {
		c.wsClient.Close()
		c.wsClient = nil
	}
	c.httpClient.CloseIdleConnections()
}

func isNullResult(result json.RawMessage) bool {
	return len(result) == 0 || bytes.Equal(result, []byte("null"))
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
