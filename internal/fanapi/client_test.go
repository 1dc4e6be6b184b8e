package fanapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Options{
		BaseURL: srv.URL,
		Token:   "partner-token",
		Timeout: 5 * time.Second,
		Logger:  zerolog.Nop(),
	})
}

func TestListPollsBearerAuth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/polls", r.URL.Path)
		assert.Equal(t, "Bearer partner-token", r.Header.Get("Authorization"))
		assert.Equal(t, "active", r.URL.Query().Get("status"))
		assert.Equal(t, "psg", r.URL.Query().Get("clubId"))

		w.Write([]byte(`[
			{"id":12,"question":"Next captain?","status":"active","options":[{"id":1,"label":"A","votes":10}]},
			{"id":"13","question":"Away kit color?","status":"active","options":[]}
		]`))
	})

	polls, err := client.ListPolls(context.Background(), ListOpts{Status: "active", ClubID: "psg"})
	require.NoError(t, err)
	require.Len(t, polls, 2)
	// Numeric and string IDs normalize to the same representation
	assert.Equal(t, "12", polls[0].ID.String())
	assert.Equal(t, "13", polls[1].ID.String())
	assert.Equal(t, int64(10), polls[0].Options[0].Votes)
}

func TestListRewardsDataEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rewards", r.URL.Path)
		w.Write([]byte(`{"data":[{"id":7,"title":"Signed jersey","status":"available"}]}`))
	})

	rewards, err := client.ListRewards(context.Background(), ListOpts{})
	require.NoError(t, err)
	require.Len(t, rewards, 1)
	assert.Equal(t, "Signed jersey", rewards[0].Title)
}

func TestVote(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/polls/12/vote", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "3", body["optionId"])
		assert.Equal(t, "PSG", body["tokenSymbol"])

		w.Write([]byte(`{"pollId":12,"optionId":3,"status":"accepted","votedAt":"2026-05-01T10:00:00Z"}`))
	})

	receipt, err := client.Vote(context.Background(), "12", "3", "PSG")
	require.NoError(t, err)
	assert.Equal(t, "accepted", receipt.Status)
	assert.Equal(t, "12", receipt.PollID.String())
}

func TestClaimFillsDefaults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rewards/7/claim", r.URL.Path)
		w.Write([]byte(`{}`))
	})

	receipt, err := client.Claim(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "7", receipt.RewardID.String())
	assert.Equal(t, "claimed", receipt.Status)
}

func TestNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"poll not found"}`))
	})

	_, err := client.Poll(context.Background(), "999")
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
}

func TestAuthFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"invalid_token","message":"token expired"}}`))
	})

	_, err := client.ListPolls(context.Background(), ListOpts{})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsAuth())
	assert.Equal(t, "invalid_token", apiErr.Code)
	assert.Contains(t, apiErr.Error(), "token expired")
}

func TestVoteRejectedSurfacesMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"poll is closed"}`))
	})

	_, err := client.Vote(context.Background(), "12", "3", "")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.False(t, apiErr.IsAuth())
	assert.Contains(t, apiErr.Message, "poll is closed")
}

func TestFlexIDNull(t *testing.T) {
	var poll Poll
	require.NoError(t, json.Unmarshal([]byte(`{"id":null,"question":"q"}`), &poll))
	assert.Equal(t, "", poll.ID.String())
}
