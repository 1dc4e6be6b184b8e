// Package trigger implements the poll entry point: each invocation
// fetches the current state of the watched feeds, compares it against
// the host-persisted cursors, and emits only the strictly newer items.
// The first invocation for an event establishes its baseline cursor and
// emits nothing.
package trigger

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"fanlink/internal/chain"
	"fanlink/internal/fanapi"
	"fanlink/internal/hexutil"
	"fanlink/internal/node"
)

// Event kinds the trigger can watch
const (
	EventNewBlock    = "newBlock"
	EventNewPoll     = "newPoll"
	EventNewReward   = "newReward"
	EventPriceChange = "priceChange"
)

const priceFeedNote = "price feeds are not wired to a market data provider; priceChange will not fire until one is configured"

// Source is the slice of the node the trigger reads through
type Source interface {
	LatestBlock(ctx context.Context, creds node.Credentials) (*chain.Block, error)
	ActivePolls(ctx context.Context, creds node.Credentials) ([]fanapi.Poll, error)
	AvailableRewards(ctx context.Context, creds node.Credentials) ([]fanapi.Reward, error)
}

// Request is one poll tick. State carries the cursors exactly as the
// previous response returned them.
type Request struct {
	Credentials node.Credentials       `json:"credentials"`
	Events      []string               `json:"events"`
	Params      map[string]interface{} `json:"params,omitempty"`
	State       map[string]string      `json:"state,omitempty"`
}

// Event is one emitted item
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Response returns the new items plus the updated cursor state for the
// host to persist
type Response struct {
	Events []Event           `json:"events"`
	State  map[string]string `json:"state"`
	Notes  []string          `json:"notes,omitempty"`
}

type Trigger struct {
	source Source
	logger zerolog.Logger
}

func New(source Source, logger zerolog.Logger) *Trigger {
	return &Trigger{
		source: source,
		logger: logger.With().Str("component", "trigger").Logger(),
	}
}

// Poll runs one tick. A failing event keeps its cursor untouched and is
// reported as a note, other events still run.
func (t *Trigger) Poll(ctx context.Context, req Request) Response {
	resp := Response{
		Events: []Event{},
		State:  cloneState(req.State),
	}
	if len(req.Events) == 0 {
		resp.Notes = append(resp.Notes, "no events selected, nothing to watch")
		return resp
	}

	for _, name := range req.Events {
		var err error
		switch name {
		case EventNewBlock:
			err = t.pollNewBlock(ctx, req, &resp)
		case EventNewPoll:
			err = t.pollNewPolls(ctx, req, &resp)
		case EventNewReward:
			err = t.pollNewRewards(ctx, req, &resp)
		case EventPriceChange:
			t.pollPriceChange(req, &resp)
		default:
			resp.Notes = append(resp.Notes, "unknown event "+name)
			continue
		}
		if err != nil {
			t.logger.Warn().Err(err).Str("event", name).Msg("event poll failed")
			resp.Notes = append(resp.Notes, name+": "+err.Error())
		}
	}
	return resp
}

func (t *Trigger) pollNewBlock(ctx context.Context, req Request, resp *Response) error {
	block, err := t.source.LatestBlock(ctx, req.Credentials)
	if err != nil {
		return err
	}
	number, err := hexutil.ParseUint64(block.Number)
	if err != nil {
		return err
	}
	cursor := strconv.FormatUint(number, 10)

	previous, initialized := resp.State[EventNewBlock]
	if !initialized {
		resp.State[EventNewBlock] = cursor
		return nil
	}
	if Compare(cursor, previous) <= 0 {
		return nil
	}

	payload := map[string]interface{}{
		"number":    number,
		"hash":      block.Hash,
		"timestamp": block.Timestamp,
		"miner":     block.Miner,
		"gasUsed":   block.GasUsed,
	}
	if ts, err := hexutil.ParseUint64(block.Timestamp); err == nil {
		payload["timestampUnix"] = ts
	}
	if err := resp.emit(EventNewBlock, payload); err != nil {
		return err
	}
	resp.State[EventNewBlock] = cursor
	return nil
}

func (t *Trigger) pollNewPolls(ctx context.Context, req Request, resp *Response) error {
	polls, err := t.source.ActivePolls(ctx, req.Credentials)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(polls))
	for _, p := range polls {
		ids = append(ids, p.ID.String())
	}

	cursor, initialized := resp.State[EventNewPoll]
	if !initialized {
		resp.State[EventNewPoll] = maxCursor("", ids)
		return nil
	}

	fresh := make([]fanapi.Poll, 0)
	for _, p := range polls {
		if id := p.ID.String(); id != "" && Compare(id, cursor) > 0 {
			fresh = append(fresh, p)
		}
	}
	sort.Slice(fresh, func(i, j int) bool {
		return Compare(fresh[i].ID.String(), fresh[j].ID.String()) < 0
	})

	for _, p := range fresh {
		if err := resp.emit(EventNewPoll, p); err != nil {
			return err
		}
		cursor = p.ID.String()
	}
	resp.State[EventNewPoll] = cursor
	return nil
}

func (t *Trigger) pollNewRewards(ctx context.Context, req Request, resp *Response) error {
	rewards, err := t.source.AvailableRewards(ctx, req.Credentials)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(rewards))
	for _, r := range rewards {
		ids = append(ids, r.ID.String())
	}

	cursor, initialized := resp.State[EventNewReward]
	if !initialized {
		resp.State[EventNewReward] = maxCursor("", ids)
		return nil
	}

	fresh := make([]fanapi.Reward, 0)
	for _, r := range rewards {
		if id := r.ID.String(); id != "" && Compare(id, cursor) > 0 {
			fresh = append(fresh, r)
		}
	}
	sort.Slice(fresh, func(i, j int) bool {
		return Compare(fresh[i].ID.String(), fresh[j].ID.String()) < 0
	})

	for _, r := range fresh {
		if err := resp.emit(EventNewReward, r); err != nil {
			return err
		}
		cursor = r.ID.String()
	}
	resp.State[EventNewReward] = cursor
	return nil
}

// pollPriceChange compares against a placeholder feed. With no provider
// the price never moves, so this establishes the cursor, explains
// itself once, and stays quiet.
func (t *Trigger) pollPriceChange(req Request, resp *Response) {
	const placeholder = "0"

	previous, initialized := resp.State[EventPriceChange]
	if !initialized {
		resp.State[EventPriceChange] = placeholder
		resp.Notes = append(resp.Notes, priceFeedNote)
		return
	}
	if Compare(placeholder, previous) == 0 {
		return
	}

	payload := map[string]interface{}{
		"token":    optParam(req.Params, "token"),
		"price":    placeholder,
		"previous": previous,
	}
	if err := resp.emit(EventPriceChange, payload); err != nil {
		resp.Notes = append(resp.Notes, EventPriceChange+": "+err.Error())
		return
	}
	resp.State[EventPriceChange] = placeholder
}

func (r *Response) emit(kind string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	r.Events = append(r.Events, Event{Type: kind, Payload: raw})
	return nil
}

func cloneState(state map[string]string) map[string]string {
	out := make(map[string]string, len(state))
	for k, v := range state {
		out[k] = v
	}
	return out
}

func optParam(params map[string]interface{}, key string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
