package fanapi

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FlexID is an identifier that some partner deployments serve as a JSON
// number and others as a string. It normalizes to its string form.
type FlexID string

// UnmarshalJSON implements json.Unmarshaler
func (id *FlexID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id is neither string nor number: %s", trimmed)
	}
	*id = FlexID(n.String())
	return nil
}

func (id FlexID) String() string {
	return string(id)
}

// Poll is a fan voting poll
type Poll struct {
	ID        FlexID       `json:"id"`
	Question  string       `json:"question"`
	Status    string       `json:"status"`
	ClubID    FlexID       `json:"clubId,omitempty"`
	Options   []PollOption `json:"options"`
	StartsAt  string       `json:"startsAt,omitempty"`
	EndsAt    string       `json:"endsAt,omitempty"`
	CreatedAt string       `json:"createdAt,omitempty"`
}

// PollOption is one answer of a poll
type PollOption struct {
	ID    FlexID `json:"id"`
	Label string `json:"label"`
	Votes int64  `json:"votes"`
}

// PollResults is the tally of a poll
type PollResults struct {
	PollID     FlexID       `json:"pollId"`
	TotalVotes int64        `json:"totalVotes"`
	Options    []PollOption `json:"options"`
}

// VoteReceipt acknowledges a submitted vote
type VoteReceipt struct {
	PollID   FlexID `json:"pollId"`
	OptionID FlexID `json:"optionId"`
	Status   string `json:"status"`
	VotedAt  string `json:"votedAt,omitempty"`
}

// Reward is a redeemable fan reward
type Reward struct {
	ID          FlexID `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	ClubID      FlexID `json:"clubId,omitempty"`
	PointsCost  int64  `json:"pointsCost,omitempty"`
	ExpiresAt   string `json:"expiresAt,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// ClaimReceipt acknowledges a reward claim
type ClaimReceipt struct {
	RewardID  FlexID `json:"rewardId"`
	Status    string `json:"status"`
	ClaimedAt string `json:"claimedAt,omitempty"`
}

// ListOpts control filtering and paging of listing calls
type ListOpts struct {
	Status string
	ClubID string
	Page   int
	Limit  int
}
