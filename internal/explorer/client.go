// Package explorer implements the client for Etherscan-compatible block
// explorer APIs (?module=...&action=... with an envelope response).
// Calls are rate limited to stay under the explorer's request quota,
// and immutable lookups (verified ABIs and sources) are cached.
package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"fanlink/internal/cache"
)

// APIError is a failure reported inside the explorer envelope
type APIError struct {
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	if e.Detail != "" && e.Detail != e.Message {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

// IsEmptyResult reports whether the failure only says the listing has
// no entries, which callers usually want to treat as an empty page.
func (e *APIError) IsEmptyResult() bool {
	msg := strings.ToLower(e.Message)
	return strings.HasPrefix(msg, "no transactions found") ||
		strings.HasPrefix(msg, "no records found") ||
		strings.HasPrefix(msg, "no token transfers found")
}

// Options for creating a Client
type Options struct {
	BaseURL string
	APIKey  string
	ChainID uint64
	RPS     float64
	Burst   int
	Timeout time.Duration
	Cache   cache.Cache
	Logger  zerolog.Logger
}

// Client talks to one explorer API
type Client struct {
	baseURL string
	apiKey  string
	chainID uint64

	httpClient *http.Client
	limiter    *rate.Limiter
	cache      cache.Cache
	logger     zerolog.Logger
}

// NewClient creates a new explorer client
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if opts.RPS > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RPS), burst)
	}

	// Cache keys are scoped by chain id, an unknown id cannot share the
	// cache safely
	c := opts.Cache
	if c == nil || opts.ChainID == 0 {
		c = cache.NewNoopCache()
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		chainID: opts.ChainID,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: timeout,
		},
		limiter: limiter,
		cache:   c,
		logger:  opts.Logger.With().Str("component", "explorer").Logger(),
	}
}

// envelope is the explorer response wrapper. Result stays raw because
// the explorer returns a string for failures and an array for listings.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// get performs one explorer call and unmarshals the result on success
func (c *Client) get(ctx context.Context, module, action string, params map[string]string, out interface{}) error {
	if c.baseURL == "" {
		return fmt.Errorf("explorer URL not configured")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	query := url.Values{}
	query.Set("module", module)
	query.Set("action", action)
	for key, value := range params {
		if value != "" {
			query.Set(key, value)
		}
	}
	if c.apiKey != "" {
		query.Set("apikey", c.apiKey)
	}

	reqURL := c.baseURL + "?" + query.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("explorer request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("explorer HTTP error %d", resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to parse explorer response: %w", err)
	}

	if env.Status != "1" {
		apiErr := &APIError{Message: env.Message}
		// Failures carry a string result with the detail
		var detail string
		if json.Unmarshal(env.Result, &detail) == nil {
			apiErr.Detail = detail
		}
		c.logger.Debug().
			Str("module", module).
			Str("action", action).
			Str("message", env.Message).
			Msg("explorer returned failure status")
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("failed to parse explorer result: %w", err)
		}
	}
	return nil
}

// AccountTransactions lists transactions for an address (action=txlist)
func (c *Client) AccountTransactions(ctx context.Context, address string, opts ListOpts) ([]Transaction, error) {
	var txs []Transaction
	err := c.get(ctx, "account", "txlist", listParams(address, "", opts), &txs)
	if err != nil {
		if isEmptyResult(err) {
			return []Transaction{}, nil
		}
		return nil, err
	}
	return txs, nil
}

// TokenTransfers lists token transfers for an address (action=tokentx).
// contract narrows the listing to one token when non-empty.
func (c *Client) TokenTransfers(ctx context.Context, address, contract string, opts ListOpts) ([]TokenTransfer, error) {
	var transfers []TokenTransfer
	err := c.get(ctx, "account", "tokentx", listParams(address, contract, opts), &transfers)
	if err != nil {
		if isEmptyResult(err) {
			return []TokenTransfer{}, nil
		}
		return nil, err
	}
	return transfers, nil
}

// ContractABI returns the verified ABI JSON for a contract
func (c *Client) ContractABI(ctx context.Context, address string) (string, error) {
	key := cache.AbiKey(c.chainID, address)
	if cached, ok := c.cache.Get(key); ok {
		return string(cached), nil
	}

	var abi string
	if err := c.get(ctx, "contract", "getabi", map[string]string{"address": address}, &abi); err != nil {
		return "", err
	}

	c.cache.SetImmutable(key, []byte(abi))
	return abi, nil
}

// ContractSource returns the verified source listing for a contract
func (c *Client) ContractSource(ctx context.Context, address string) ([]ContractSource, error) {
	key := cache.SourceKey(c.chainID, address)
	if cached, ok := c.cache.Get(key); ok {
		var sources []ContractSource
		if err := json.Unmarshal(cached, &sources); err == nil {
			return sources, nil
		}
	}

	var sources []ContractSource
	if err := c.get(ctx, "contract", "getsourcecode", map[string]string{"address": address}, &sources); err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(sources); err == nil {
		c.cache.SetImmutable(key, encoded)
	}
	return sources, nil
}

// TokenHolders lists holders of a token contract (action=tokenholderlist)
func (c *Client) TokenHolders(ctx context.Context, contract string, page, offset int) ([]Holder, error) {
	params := map[string]string{"contractaddress": contract}
	if page > 0 {
		params["page"] = strconv.Itoa(page)
	}
	if offset > 0 {
		params["offset"] = strconv.Itoa(offset)
	}

	var holders []Holder
	err := c.get(ctx, "token", "tokenholderlist", params, &holders)
	if err != nil {
		if isEmptyResult(err) {
			return []Holder{}, nil
		}
		return nil, err
	}
	return holders, nil
}

// TokenSupply returns the total supply reported by the explorer as a
// decimal string in base units (action=tokensupply)
func (c *Client) TokenSupply(ctx context.Context, contract string) (string, error) {
	var supply string
	if err := c.get(ctx, "stats", "tokensupply", map[string]string{"contractaddress": contract}, &supply); err != nil {
		return "", err
	}
	return supply, nil
}

func listParams(address, contract string, opts ListOpts) map[string]string {
	params := map[string]string{"address": address}
	if contract != "" {
		params["contractaddress"] = contract
	}
	if opts.StartBlock > 0 {
		params["startblock"] = strconv.FormatUint(opts.StartBlock, 10)
	}
	if opts.EndBlock > 0 {
		params["endblock"] = strconv.FormatUint(opts.EndBlock, 10)
	}
	if opts.Page > 0 {
		params["page"] = strconv.Itoa(opts.Page)
	}
	if opts.Offset > 0 {
		params["offset"] = strconv.Itoa(opts.Offset)
	}
	if opts.Sort != "" {
		params["sort"] = opts.Sort
	}
	return params
}

func isEmptyResult(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.IsEmptyResult()
}
