package chain

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"fanlink/internal/jsonrpc"
)

// rpcStub answers JSON-RPC over HTTP from a method -> raw result table
func rpcStub(t *testing.T, results map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
			return
		}

		answer := func(req *jsonrpc.Request) *jsonrpc.Response {
			result, ok := results[req.Method]
			if !ok {
				return &jsonrpc.Response{
					JSONRPC: jsonrpc.Version,
					Error:   &jsonrpc.Error{Code: jsonrpc.CodeMethodNotFound, Message: "method not found"},
					ID:      req.ID,
				}
			}
			return &jsonrpc.Response{
				JSONRPC: jsonrpc.Version,
				Result:  json.RawMessage(result),
				ID:      req.ID,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if len(body) > 0 && body[0] == '[' {
			var reqs []*jsonrpc.Request
			if err := json.Unmarshal(body, &reqs); err != nil {
				t.Errorf("unmarshal batch: %v", err)
				return
			}
			responses := make([]*jsonrpc.Response, len(reqs))
			// Reverse order on purpose; the client must reorder by ID
			for i, req := range reqs {
				responses[len(reqs)-1-i] = answer(req)
			}
			json.NewEncoder(w).Encode(responses)
			return
		}

		var req jsonrpc.Request
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("unmarshal request: %v", err)
			return
		}
		json.NewEncoder(w).Encode(answer(&req))
	}))
}

func newTestClient(url string) *Client {
	return NewClient(Options{
		RPCURL:         url,
		RequestTimeout: 5 * time.Second,
		Logger:         zerolog.Nop(),
	})
}

func TestClientBlockNumber(t *testing.T) {
	srv := rpcStub(t, map[string]string{"eth_blockNumber": `"0x1b4"`})
	defer srv.Close()

	client := newTestClient(srv.URL)
	defer client.Close()

	n, err := client.BlockNumber(context.Background())
	if err != nil {
		t.Fatalf("BlockNumber: %v", err)
	}
	if n != 436 {
		t.Errorf("BlockNumber = %d, want 436", n)
	}
	if client.RequestCount() != 1 {
		t.Errorf("RequestCount = %d", client.RequestCount())
	}
}

func TestClientGetBalance(t *testing.T) {
	srv := rpcStub(t, map[string]string{"eth_getBalance": `"0xde0b6b3a7640000"`})
	defer srv.Close()

	client := newTestClient(srv.URL)
	defer client.Close()

	balance, err := client.GetBalance(context.Background(), "0xd1220a0cf47c7b9be7a2e6ba89f429762e7b9adb", "latest")
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if balance.String() != "1000000000000000000" {
		t.Errorf("GetBalance = %s", balance)
	}
}

func TestClientNotFound(t *testing.T) {
	srv := rpcStub(t, map[string]string{"eth_getTransactionByHash": `null`})
	defer srv.Close()

	client := newTestClient(srv.URL)
	defer client.Close()

	hash := "0x88df016429689c079f3b2f6ad39fa052532c56795b733da78a91ebe6a713944b"
	_, err := client.GetTransactionByHash(context.Background(), hash)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClientRPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","error":{"code":-32000,"message":"execution reverted"},"id":1}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	defer client.Close()

	_, err := client.CallContract(context.Background(), CallMsg{To: "0xd1220a0cf47c7b9be7a2e6ba89f429762e7b9adb", Data: "0x06fdde03"}, "latest")
	var rpcErr *jsonrpc.Error
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected *jsonrpc.Error, got %T: %v", err, err)
	}
	if !rpcErr.IsExecutionError() {
		t.Error("revert not classified as execution error")
	}
}

func TestClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	defer client.Close()

	if _, err := client.BlockNumber(context.Background()); err == nil {
		t.Error("expected error on HTTP 502")
	}
}

func TestClientCallBatchOrdering(t *testing.T) {
	srv := rpcStub(t, map[string]string{
		"eth_chainId":     `"0x15b38"`,
		"eth_blockNumber": `"0x10"`,
		"eth_gasPrice":    `"0x3b9aca00"`,
	})
	defer srv.Close()

	client := newTestClient(srv.URL)
	defer client.Close()

	responses, err := client.CallBatch(context.Background(), []BatchCall{
		{Method: "eth_chainId"},
		{Method: "eth_blockNumber"},
		{Method: "eth_gasPrice"},
	})
	if err != nil {
		t.Fatalf("CallBatch: %v", err)
	}
	if len(responses) != 3 {
		t.Fatalf("len = %d", len(responses))
	}
	var chainID string
	if err := responses[0].UnmarshalResult(&chainID); err != nil || chainID != "0x15b38" {
		t.Errorf("first response = %q, %v (stub answers reversed; ordering broken)", chainID, err)
	}
	var gasPrice string
	if err := responses[2].UnmarshalResult(&gasPrice); err != nil || gasPrice != "0x3b9aca00" {
		t.Errorf("third response = %q, %v", gasPrice, err)
	}
}

func TestClientSyncingFalse(t *testing.T) {
	srv := rpcStub(t, map[string]string{"eth_syncing": `false`})
	defer srv.Close()

	client := newTestClient(srv.URL)
	defer client.Close()

	status, err := client.Syncing(context.Background())
	if err != nil {
		t.Fatalf("Syncing: %v", err)
	}
	if status != nil {
		t.Errorf("Syncing = %+v, want nil", status)
	}
}

func TestPoolSharesClients(t *testing.T) {
	pool := NewPool(5*time.Second, zerolog.Nop())
	defer pool.Close()

	a := pool.Get(Endpoint{RPCURL: "http://localhost:8545"})
	b := pool.Get(Endpoint{RPCURL: "http://localhost:8545"})
	c := pool.Get(Endpoint{RPCURL: "http://localhost:8546"})

	if a != b {
		t.Error("same endpoint produced different clients")
	}
	if a == c {
		t.Error("different endpoints share a client")
	}
	if pool.Size() != 2 {
		t.Errorf("Size = %d, want 2", pool.Size())
	}
}
