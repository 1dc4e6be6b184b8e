package node

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fanlink/internal/config"
)

const (
	fooAddr    = "0x1111111111111111111111111111111111111111"
	kitAddr    = "0x2222222222222222222222222222222222222222"
	holderAddr = "0x3333333333333333333333333333333333333333"
)

type stubRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// newRPCServer answers JSON-RPC single and batch requests from the
// given method handler
func newRPCServer(t *testing.T, handler func(req stubRequest) (interface{}, map[string]interface{})) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := make([]byte, 0, 1024)
		buf := make([]byte, 1024)
		for {
			n, err := r.Body.Read(buf)
			body = append(body, buf[:n]...)
			if err != nil {
				break
			}
		}

		answer := func(req stubRequest) map[string]interface{} {
			resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
			result, rpcErr := handler(req)
			if rpcErr != nil {
				resp["error"] = rpcErr
			} else {
				resp["result"] = result
			}
			return resp
		}

		w.Header().Set("Content-Type", "application/json")
		trimmed := strings.TrimSpace(string(body))
		if strings.HasPrefix(trimmed, "[") {
			var reqs []stubRequest
			require.NoError(t, json.Unmarshal(body, &reqs))
			out := make([]map[string]interface{}, 0, len(reqs))
			for _, req := range reqs {
				out = append(out, answer(req))
			}
			require.NoError(t, json.NewEncoder(w).Encode(out))
			return
		}
		var req stubRequest
		require.NoError(t, json.Unmarshal(body, &req))
		require.NoError(t, json.NewEncoder(w).Encode(answer(req)))
	}))
}

func encUint(v uint64) string {
	return fmt.Sprintf("0x%064x", v)
}

func encBig(v *big.Int) string {
	return fmt.Sprintf("0x%064x", v)
}

func encString(s string) string {
	data := fmt.Sprintf("%x", s)
	for len(data)%64 != 0 {
		data += "0"
	}
	return fmt.Sprintf("0x%064x%064x%s", 32, len(s), data)
}

func tokenUnits(n int64) *big.Int {
	wei := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	return wei.Mul(wei, big.NewInt(n))
}

// erc20Handler serves the metadata and balance calls of a well-behaved
// token contract
func erc20Handler(req stubRequest) (interface{}, map[string]interface{}) {
	switch req.Method {
	case "eth_call":
		var msg struct {
			To   string `json:"to"`
			Data string `json:"data"`
		}
		if err := json.Unmarshal(req.Params[0], &msg); err != nil {
			return nil, map[string]interface{}{"code": -32602, "message": "invalid params"}
		}
		selector := msg.Data
		if len(selector) > 10 {
			selector = selector[:10]
		}
		switch selector {
		case "0x06fdde03":
			return encString("Foo Fan Token"), nil
		case "0x95d89b41":
			return encString("FOO"), nil
		case "0x313ce567":
			return encUint(18), nil
		case "0x18160ddd":
			return encBig(tokenUnits(1000)), nil
		case "0x70a08231":
			return encBig(tokenUnits(5)), nil
		}
		return "0x", nil
	case "eth_getBalance":
		return encBig(tokenUnits(2)), nil
	case "eth_blockNumber":
		return "0x100", nil
	case "eth_chainId":
		return "0x7a69", nil
	case "eth_getTransactionByHash":
		return nil, nil
	}
	return nil, map[string]interface{}{"code": -32601, "message": "method not found"}
}

func testConfig(rpcURL, explorerURL, fanURL string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:           "localhost",
			Port:           8787,
			RequestTimeout: 5000,
		},
		Networks: []config.NetworkConfig{{
			Name:           "devnet",
			ChainID:        31337,
			RPCURL:         rpcURL,
			ExplorerURL:    explorerURL,
			FanAPIURL:      fanURL,
			NativeSymbol:   "CHZ",
			NativeDecimals: 18,
		}},
		Tokens: []config.TokenConfig{
			{Symbol: "FOO", Name: "Foo Fan Token", Address: fooAddr, Decimals: 18, Network: "devnet", Standard: "erc20"},
			{Symbol: "KIT", Name: "Kit Collection", Address: kitAddr, Decimals: 0, Network: "devnet", Standard: "erc721"},
		},
		Cache: config.CacheConfig{Enabled: true, TTL: 300, Size: 64},
	}
}

func newTestNode(t *testing.T, cfg *config.Config) *Node {
	t.Helper()
	n, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(n.Close)
	return n
}

func runOne(t *testing.T, n *Node, creds Credentials, item ExecuteItem) ItemResult {
	t.Helper()
	resp := n.Execute(context.Background(), ExecuteRequest{
		Credentials: creds,
		Items:       []ExecuteItem{item},
	})
	require.Len(t, resp.Results, 1)
	return resp.Results[0]
}

func decodeData(t *testing.T, res ItemResult) map[string]interface{} {
	t.Helper()
	require.True(t, res.OK, "operation failed: %+v", res.Error)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(res.Data, &out))
	return out
}

func TestExecuteFanTokenGetBalance(t *testing.T) {
	rpc := newRPCServer(t, erc20Handler)
	defer rpc.Close()
	n := newTestNode(t, testConfig(rpc.URL, "", ""))

	res := runOne(t, n, Credentials{Network: "devnet"}, ExecuteItem{
		Resource:  "fanToken",
		Operation: "getBalance",
		Params:    map[string]interface{}{"token": "FOO", "address": holderAddr},
	})

	data := decodeData(t, res)
	assert.Equal(t, "5", data["formatted"])
	assert.Equal(t, tokenUnits(5).String(), data["balance"])
	assert.Equal(t, "FOO", data["symbol"])
	assert.Equal(t, fooAddr, data["token"])
}

func TestExecuteFanTokenGetInfoUsesCache(t *testing.T) {
	var hits atomic.Int64
	rpc := newRPCServer(t, func(req stubRequest) (interface{}, map[string]interface{}) {
		hits.Add(1)
		return erc20Handler(req)
	})
	defer rpc.Close()
	n := newTestNode(t, testConfig(rpc.URL, "", ""))

	item := ExecuteItem{
		Resource:  "fanToken",
		Operation: "getInfo",
		Params:    map[string]interface{}{"token": "FOO"},
	}
	data := decodeData(t, runOne(t, n, Credentials{Network: "devnet"}, item))
	assert.Equal(t, "Foo Fan Token", data["name"])
	assert.Equal(t, "FOO", data["symbol"])
	assert.Equal(t, float64(18), data["decimals"])
	assert.Equal(t, tokenUnits(1000).String(), data["totalSupply"])
	assert.Equal(t, "1000", data["totalSupplyFormatted"])

	first := hits.Load()
	decodeData(t, runOne(t, n, Credentials{Network: "devnet"}, item))
	assert.Equal(t, first, hits.Load(), "second getInfo should be served from cache")
}

func TestExecuteAccountBalance(t *testing.T) {
	rpc := newRPCServer(t, erc20Handler)
	defer rpc.Close()
	n := newTestNode(t, testConfig(rpc.URL, "", ""))

	data := decodeData(t, runOne(t, n, Credentials{Network: "devnet"}, ExecuteItem{
		Resource:  "account",
		Operation: "getBalance",
		Params:    map[string]interface{}{"address": holderAddr},
	}))
	assert.Equal(t, "2", data["formatted"])
	assert.Equal(t, "CHZ", data["symbol"])
	assert.Equal(t, "latest", data["blockTag"])
}

func TestExecuteValidationError(t *testing.T) {
	rpc := newRPCServer(t, erc20Handler)
	defer rpc.Close()
	n := newTestNode(t, testConfig(rpc.URL, "", ""))

	res := runOne(t, n, Credentials{Network: "devnet"}, ExecuteItem{
		Resource:  "account",
		Operation: "getBalance",
		Params:    map[string]interface{}{"address": "not-an-address"},
	})
	require.False(t, res.OK)
	require.NotNil(t, res.Error)
	assert.Equal(t, KindValidation, res.Error.Kind)
	assert.Contains(t, res.Error.Message, "address")
}

func TestExecuteUnknownResourceAndOperation(t *testing.T) {
	rpc := newRPCServer(t, erc20Handler)
	defer rpc.Close()
	n := newTestNode(t, testConfig(rpc.URL, "", ""))

	res := runOne(t, n, Credentials{Network: "devnet"}, ExecuteItem{Resource: "nope", Operation: "x"})
	require.False(t, res.OK)
	assert.Equal(t, KindValidation, res.Error.Kind)

	res = runOne(t, n, Credentials{Network: "devnet"}, ExecuteItem{Resource: "account", Operation: "nope"})
	require.False(t, res.OK)
	assert.Equal(t, KindValidation, res.Error.Kind)
	assert.Contains(t, res.Error.Message, "nope")
}

func TestExecuteContinueOnFail(t *testing.T) {
	rpc := newRPCServer(t, erc20Handler)
	defer rpc.Close()
	n := newTestNode(t, testConfig(rpc.URL, "", ""))

	items := []ExecuteItem{
		{Resource: "account", Operation: "getBalance", Params: map[string]interface{}{"address": "bad"}},
		{Resource: "account", Operation: "getBalance", Params: map[string]interface{}{"address": holderAddr}},
	}

	stop := n.Execute(context.Background(), ExecuteRequest{
		Credentials: Credentials{Network: "devnet"},
		Items:       items,
	})
	require.Len(t, stop.Results, 1, "first failure should stop the batch")
	assert.False(t, stop.Results[0].OK)

	keep := n.Execute(context.Background(), ExecuteRequest{
		Credentials:    Credentials{Network: "devnet"},
		Items:          items,
		ContinueOnFail: true,
	})
	require.Len(t, keep.Results, 2)
	assert.False(t, keep.Results[0].OK)
	assert.True(t, keep.Results[1].OK)
}

func TestExecuteUnknownNetworkFailsAllItems(t *testing.T) {
	n := newTestNode(t, testConfig("http://127.0.0.1:0", "", ""))

	resp := n.Execute(context.Background(), ExecuteRequest{
		Credentials: Credentials{Network: "moonchain"},
		Items: []ExecuteItem{
			{Resource: "utility", Operation: "listSelectors"},
			{Resource: "utility", Operation: "listSelectors"},
		},
	})
	require.Len(t, resp.Results, 2)
	for _, res := range resp.Results {
		require.False(t, res.OK)
		assert.Equal(t, KindValidation, res.Error.Kind)
	}
}

func TestExecuteTransactionNotFound(t *testing.T) {
	rpc := newRPCServer(t, erc20Handler)
	defer rpc.Close()
	n := newTestNode(t, testConfig(rpc.URL, "", ""))

	res := runOne(t, n, Credentials{Network: "devnet"}, ExecuteItem{
		Resource:  "transaction",
		Operation: "get",
		Params: map[string]interface{}{
			"hash": "0x88df016429689c079f3b2f6ad39fa052532c56795b733da78a91ebe6a713944b",
		},
	})
	require.False(t, res.OK)
	assert.Equal(t, KindNotFound, res.Error.Kind)
}

func TestExecuteTransferReturnsUnsignedPayload(t *testing.T) {
	rpc := newRPCServer(t, erc20Handler)
	defer rpc.Close()
	n := newTestNode(t, testConfig(rpc.URL, "", ""))

	res := runOne(t, n, Credentials{Network: "devnet"}, ExecuteItem{
		Resource:  "fanToken",
		Operation: "transfer",
		Params: map[string]interface{}{
			"token":  "FOO",
			"to":     holderAddr,
			"amount": "1.5",
		},
	})

	data := decodeData(t, res)
	require.NotEmpty(t, res.Notes)
	assert.Contains(t, res.Notes[0], "not performed")
	assert.Equal(t, false, data["signed"])
	assert.Equal(t, fooAddr, data["to"])

	calldata, _ := data["data"].(string)
	require.True(t, strings.HasPrefix(calldata, "0xa9059cbb"), "expected transfer selector, got %s", calldata)
	// 1.5 tokens at 18 decimals
	wei := new(big.Int).Div(tokenUnits(15), big.NewInt(10))
	assert.True(t, strings.HasSuffix(calldata, fmt.Sprintf("%064x", wei)))
}

func TestExecutePollResultsPercentages(t *testing.T) {
	fan := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer fan-key", r.Header.Get("Authorization"))
		require.Equal(t, "/polls/7/results", r.URL.Path)
		fmt.Fprint(w, `{"pollId":7,"options":[{"id":1,"label":"Home","votes":30},{"id":2,"label":"Away","votes":10}]}`)
	}))
	defer fan.Close()
	n := newTestNode(t, testConfig("http://127.0.0.1:0", "", fan.URL))

	res := runOne(t, n, Credentials{Network: "devnet", PartnerAPIKey: "fan-key"}, ExecuteItem{
		Resource:  "poll",
		Operation: "getResults",
		Params:    map[string]interface{}{"pollId": 7},
	})

	data := decodeData(t, res)
	assert.Equal(t, float64(40), data["totalVotes"])
	options, ok := data["options"].([]interface{})
	require.True(t, ok)
	require.Len(t, options, 2)
	first := options[0].(map[string]interface{})
	assert.Equal(t, float64(75), first["percentage"])
}

func TestExecutePartnerKeyRequired(t *testing.T) {
	n := newTestNode(t, testConfig("http://127.0.0.1:0", "", "http://127.0.0.1:0"))

	res := runOne(t, n, Credentials{Network: "devnet"}, ExecuteItem{
		Resource:  "poll",
		Operation: "getAll",
	})
	require.False(t, res.OK)
	assert.Equal(t, KindAuth, res.Error.Kind)
	assert.Contains(t, res.Error.Message, "partnerApiKey")
}

func TestExecuteUtilityWithoutEndpoints(t *testing.T) {
	n := newTestNode(t, testConfig("http://127.0.0.1:0", "", ""))

	data := decodeData(t, runOne(t, n, Credentials{Network: "devnet"}, ExecuteItem{
		Resource:  "utility",
		Operation: "convertUnits",
		Params:    map[string]interface{}{"amount": "1500000000000000000", "from": "wei", "to": "token"},
	}))
	assert.Equal(t, "1.5", data["converted"])

	data = decodeData(t, runOne(t, n, Credentials{Network: "devnet"}, ExecuteItem{
		Resource:  "utility",
		Operation: "validateAddress",
		Params:    map[string]interface{}{"address": fooAddr},
	}))
	assert.Equal(t, true, data["valid"])
}

func TestCredentialsCustomRPCOverride(t *testing.T) {
	custom := newRPCServer(t, func(req stubRequest) (interface{}, map[string]interface{}) {
		if req.Method == "eth_getBalance" {
			return encBig(tokenUnits(9)), nil
		}
		return erc20Handler(req)
	})
	defer custom.Close()
	n := newTestNode(t, testConfig("http://127.0.0.1:0", "", ""))

	data := decodeData(t, runOne(t, n, Credentials{Network: "devnet", CustomRPCURL: custom.URL}, ExecuteItem{
		Resource:  "account",
		Operation: "getBalance",
		Params:    map[string]interface{}{"address": holderAddr},
	}))
	assert.Equal(t, "9", data["formatted"])
}

func TestCredentialsCustomNetwork(t *testing.T) {
	rpc := newRPCServer(t, erc20Handler)
	defer rpc.Close()
	n := newTestNode(t, testConfig("http://127.0.0.1:0", "", ""))

	res := runOne(t, n, Credentials{Network: "custom"}, ExecuteItem{
		Resource:  "account",
		Operation: "getBalance",
		Params:    map[string]interface{}{"address": holderAddr},
	})
	require.False(t, res.OK)
	assert.Equal(t, KindValidation, res.Error.Kind)
	assert.Contains(t, res.Error.Message, "customRpcUrl")

	data := decodeData(t, runOne(t, n, Credentials{Network: "custom", CustomRPCURL: rpc.URL}, ExecuteItem{
		Resource:  "account",
		Operation: "getBalance",
		Params:    map[string]interface{}{"address": holderAddr},
	}))
	assert.Equal(t, "2", data["formatted"])
	assert.Equal(t, "CHZ", data["symbol"])
}

func TestCredentialsRejectBadSchemes(t *testing.T) {
	n := newTestNode(t, testConfig("http://127.0.0.1:0", "", ""))

	_, err := n.resolve(Credentials{Network: "devnet", CustomRPCURL: "ftp://example.com"})
	require.Error(t, err)
	assert.Equal(t, KindValidation, classify(err).Kind)

	_, err = n.resolve(Credentials{Network: "devnet", CustomWSURL: "http://example.com"})
	require.Error(t, err)

	_, err = n.resolve(Credentials{Network: "devnet", PreferWS: true})
	require.Error(t, err, "preferWs without a WebSocket URL must fail")
}

func TestDescriptorListsEverything(t *testing.T) {
	n := newTestNode(t, testConfig("http://127.0.0.1:0", "", ""))

	desc := n.Descriptor()
	assert.Equal(t, "fanlink", desc.Name)
	require.Len(t, desc.Resources, 10)
	assert.Len(t, desc.Events, 4)
	assert.NotEmpty(t, desc.Networks)

	seen := map[string]bool{}
	for _, res := range desc.Resources {
		require.NotEmpty(t, res.Operations, "resource %s has no operations", res.Name)
		for _, op := range res.Operations {
			seen[res.Name+"."+op.Name] = true
		}
	}
	for _, key := range []string{
		"fanToken.getInfo", "fanToken.transfer", "account.getTransactions",
		"transaction.sendRaw", "contract.call", "poll.vote", "reward.claim",
		"nft.getOwner", "network.getFeeHistory", "event.getLogs",
		"utility.encodeCallData",
	} {
		assert.True(t, seen[key], "descriptor is missing %s", key)
	}

	// The poll list filter carries the club table as selectable options
	var clubFilter *Property
	for _, res := range desc.Resources {
		if res.Name != "poll" {
			continue
		}
		for _, op := range res.Operations {
			if op.Name != "getAll" {
				continue
			}
			for i := range op.Properties {
				if op.Properties[i].Name == "clubId" {
					clubFilter = &op.Properties[i]
				}
			}
		}
	}
	require.NotNil(t, clubFilter)
	assert.NotEmpty(t, clubFilter.Options)
}
