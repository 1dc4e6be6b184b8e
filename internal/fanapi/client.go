// Package fanapi implements the client for the partner fan-engagement
// REST API: polls, votes, rewards, claims. Every call authenticates
// with the partner bearer token.
package fanapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ErrNotFound is returned when the API answers 404 for a poll or reward
var ErrNotFound = errors.New("not found")

// APIError is a failure reported by the partner API
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}

// IsAuth reports whether the failure is a credential problem
func (e *APIError) IsAuth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// Options for creating a Client
type Options struct {
	BaseURL string
	Token   string
	RPS     float64
	Burst   int
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Client talks to one partner API deployment
type Client struct {
	baseURL string
	token   string

	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// NewClient creates a new partner API client
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

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: timeout,
		},
		limiter: limiter,
		logger:  opts.Logger.With().Str("component", "fanapi").Logger(),
	}
}

// apiFailure covers the error body shapes partner deployments use:
// {"error":{"code":...,"message":...}} and the flat {"message":...}
type apiFailure struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out interface{}) error {
	if c.baseURL == "" {
		return fmt.Errorf("partner API base URL not configured")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("partner API request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var failure apiFailure
		if json.Unmarshal(raw, &failure) == nil {
			if failure.Error != nil && failure.Error.Message != "" {
				apiErr.Code = failure.Error.Code
				apiErr.Message = failure.Error.Message
			} else if failure.Message != "" {
				apiErr.Message = failure.Message
			}
		}
		c.logger.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("message", apiErr.Message).
			Msg("partner API returned failure")
		return apiErr
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to parse partner API response: %w", err)
		}
	}
	return nil
}

// listQuery builds the shared filter/paging query
func listQuery(opts ListOpts) url.Values {
	query := url.Values{}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}
	if opts.ClubID != "" {
		query.Set("clubId", opts.ClubID)
	}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	return query
}

// listEnvelope tolerates both bare arrays and {"data":[...]} wrappers
type listEnvelope[T any] struct {
	Data []T `json:"data"`
}

func unmarshalList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	var env listEnvelope[T]
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// ListPolls returns polls, optionally filtered by status
func (c *Client) ListPolls(ctx context.Context, opts ListOpts) ([]Poll, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/polls", listQuery(opts), nil, &raw); err != nil {
		return nil, err
	}
	return unmarshalList[Poll](raw)
}

// Poll returns one poll by ID
func (c *Client) Poll(ctx context.Context, id string) (*Poll, error) {
	var poll Poll
	if err := c.do(ctx, http.MethodGet, "/polls/"+url.PathEscape(id), nil, nil, &poll); err != nil {
		return nil, err
	}
	return &poll, nil
}

// PollResults returns the tally for one poll
func (c *Client) PollResults(ctx context.Context, id string) (*PollResults, error) {
	var results PollResults
	if err := c.do(ctx, http.MethodGet, "/polls/"+url.PathEscape(id)+"/results", nil, nil, &results); err != nil {
		return nil, err
	}
	if results.PollID == "" {
		results.PollID = FlexID(id)
	}
	return &results, nil
}

// Vote submits a vote for a poll option. tokenSymbol names the fan
// token backing the vote on deployments that require it; empty omits it.
func (c *Client) Vote(ctx context.Context, pollID, optionID, tokenSymbol string) (*VoteReceipt, error) {
	payload := map[string]string{"optionId": optionID}
	if tokenSymbol != "" {
		payload["tokenSymbol"] = tokenSymbol
	}
	var receipt VoteReceipt
	if err := c.do(ctx, http.MethodPost, "/polls/"+url.PathEscape(pollID)+"/vote", nil, payload, &receipt); err != nil {
		return nil, err
	}
	if receipt.PollID == "" {
		receipt.PollID = FlexID(pollID)
	}
	if receipt.OptionID == "" {
		receipt.OptionID = FlexID(optionID)
	}
	if receipt.Status == "" {
		receipt.Status = "accepted"
	}
	return &receipt, nil
}

// ListRewards returns rewards, optionally filtered by status
func (c *Client) ListRewards(ctx context.Context, opts ListOpts) ([]Reward, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/rewards", listQuery(opts), nil, &raw); err != nil {
		return nil, err
	}
	return unmarshalList[Reward](raw)
}

// Reward returns one reward by ID
func (c *Client) Reward(ctx context.Context, id string) (*Reward, error) {
	var reward Reward
	if err := c.do(ctx, http.MethodGet, "/rewards/"+url.PathEscape(id), nil, nil, &reward); err != nil {
		return nil, err
	}
	return &reward, nil
}

// Claim claims a reward
func (c *Client) Claim(ctx context.Context, id string) (*ClaimReceipt, error) {
	var receipt ClaimReceipt
	if err := c.do(ctx, http.MethodPost, "/rewards/"+url.PathEscape(id)+"/claim", nil, nil, &receipt); err != nil {
		return nil, err
	}
	if receipt.RewardID == "" {
		receipt.RewardID = FlexID(id)
	}
	if receipt.Status == "" {
		receipt.Status = "claimed"
	}
	return &receipt, nil
}
