package explorer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fanlink/internal/cache"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	mc, err := cache.NewMemoryCache(32, time.Minute)
	require.NoError(t, err)
	t.Cleanup(mc.Close)

	client := NewClient(Options{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		ChainID: 88888,
		Timeout: 5 * time.Second,
		Cache:   mc,
		Logger:  zerolog.Nop(),
	})
	return client, srv
}

func TestAccountTransactions(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "account", q.Get("module"))
		assert.Equal(t, "txlist", q.Get("action"))
		assert.Equal(t, "0xabc0000000000000000000000000000000000001", q.Get("address"))
		assert.Equal(t, "test-key", q.Get("apikey"))
		assert.Equal(t, "desc", q.Get("sort"))

		w.Write([]byte(`{"status":"1","message":"OK","result":[
			{"blockNumber":"100","hash":"0xh1","from":"0xa","to":"0xb","value":"1000"},
			{"blockNumber":"99","hash":"0xh2","from":"0xb","to":"0xa","value":"2000"}
		]}`))
	})

	txs, err := client.AccountTransactions(context.Background(), "0xabc0000000000000000000000000000000000001", ListOpts{Sort: "desc"})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "0xh1", txs[0].Hash)
	assert.Equal(t, "100", txs[0].BlockNumber)
}

func TestEmptyListingIsNotAnError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"0","message":"No transactions found","result":[]}`))
	})

	txs, err := client.AccountTransactions(context.Background(), "0xabc0000000000000000000000000000000000001", ListOpts{})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestFailureStatusSurfacesMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"0","message":"NOTOK","result":"Max rate limit reached"}`))
	})

	_, err := client.AccountTransactions(context.Background(), "0xabc0000000000000000000000000000000000001", ListOpts{})
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok, "expected *APIError, got %T", err)
	assert.Contains(t, apiErr.Error(), "Max rate limit reached")
	assert.False(t, apiErr.IsEmptyResult())
}

func TestContractABICached(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "getabi", r.URL.Query().Get("action"))
		w.Write([]byte(`{"status":"1","message":"OK","result":"[{\"type\":\"function\",\"name\":\"transfer\"}]"}`))
	})

	addr := "0xdef0000000000000000000000000000000000002"
	first, err := client.ContractABI(context.Background(), addr)
	require.NoError(t, err)
	second, err := client.ContractABI(context.Background(), addr)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first, "transfer")
	assert.Equal(t, 1, calls, "second lookup should come from cache")
}

func TestContractSource(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"1","message":"OK","result":[
			{"SourceCode":"contract FanToken {}","ContractName":"FanToken","CompilerVersion":"v0.8.19"}
		]}`))
	})

	sources, err := client.ContractSource(context.Background(), "0xdef0000000000000000000000000000000000002")
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "FanToken", sources[0].ContractName)
}

func TestTokenHoldersAndSupply(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("action") {
		case "tokenholderlist":
			assert.Equal(t, "token", r.URL.Query().Get("module"))
			w.Write([]byte(`{"status":"1","message":"OK","result":[
				{"TokenHolderAddress":"0xaaa","TokenHolderQuantity":"500"},
				{"TokenHolderAddress":"0xbbb","TokenHolderQuantity":"250"}
			]}`))
		case "tokensupply":
			assert.Equal(t, "stats", r.URL.Query().Get("module"))
			w.Write([]byte(`{"status":"1","message":"OK","result":"123450000000000000000"}`))
		default:
			t.Errorf("unexpected action %s", r.URL.Query().Get("action"))
		}
	})

	holders, err := client.TokenHolders(context.Background(), "0xccc0000000000000000000000000000000000003", 1, 10)
	require.NoError(t, err)
	require.Len(t, holders, 2)
	assert.Equal(t, "0xaaa", holders[0].Address)

	supply, err := client.TokenSupply(context.Background(), "0xccc0000000000000000000000000000000000003")
	require.NoError(t, err)
	assert.Equal(t, "123450000000000000000", supply)
}

func TestRateLimiterDelaysRequests(t *testing.T) {
	var times []time.Time
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		times = append(times, time.Now())
		w.Write([]byte(`{"status":"1","message":"OK","result":"1"}`))
	}))
	defer srv.Close()

	client := NewClient(Options{
		BaseURL: srv.URL,
		ChainID: 88888,
		RPS:     20,
		Burst:   1,
		Logger:  zerolog.Nop(),
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := client.TokenSupply(ctx, "0xccc0000000000000000000000000000000000003")
		require.NoError(t, err)
	}

	require.Len(t, times, 3)
	// 20 rps with burst 1 spaces requests ~50ms apart
	assert.GreaterOrEqual(t, times[2].Sub(times[0]), 80*time.Millisecond)
}
