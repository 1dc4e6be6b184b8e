package node

import (
	"context"

	"fanlink/internal/fanapi"
	"fanlink/internal/units"
)

func (n *Node) execPoll(ctx context.Context, t *target, op string, params map[string]interface{}) (*result, error) {
	fan, err := n.partnerClient(t)
	if err != nil {
		return nil, err
	}

	switch op {
	case "getAll":
		opts, err := fanListOpts(params)
		if err != nil {
			return nil, err
		}
		polls, err := fan.ListPolls(ctx, opts)
		if err != nil {
			return nil, err
		}
		return okResult(map[string]interface{}{
			"count": len(polls),
			"polls": polls,
		})

	case "get":
		id, err := requireStr(params, "pollId")
		if err != nil {
			return nil, err
		}
		poll, err := fan.Poll(ctx, id)
		if err != nil {
			return nil, err
		}
		return okResult(poll)

	case "getResults":
		id, err := requireStr(params, "pollId")
		if err != nil {
			return nil, err
		}
		results, err := fan.PollResults(ctx, id)
		if err != nil {
			return nil, err
		}
		return okResult(tallyResults(results))

	case "vote":
		pollID, err := requireStr(params, "pollId")
		if err != nil {
			return nil, err
		}
		optionID, err := requireStr(params, "optionId")
		if err != nil {
			return nil, err
		}
		receipt, err := fan.Vote(ctx, pollID, optionID, optStr(params, "tokenSymbol", ""))
		if err != nil {
			return nil, err
		}
		return okResult(receipt)

	default:
		return nil, unknownOperation("poll", op)
	}
}

// tallyResults recomputes the total when the partner omits it and adds
// a percentage per option
func tallyResults(results *fanapi.PollResults) map[string]interface{} {
	total := results.TotalVotes
	if total == 0 {
		for _, opt := range results.Options {
			total += opt.Votes
		}
	}

	type optionTally struct {
		ID         fanapi.FlexID `json:"id"`
		Label      string        `json:"label"`
		Votes      int64         `json:"votes"`
		Percentage float64       `json:"percentage"`
	}
	options := make([]optionTally, 0, len(results.Options))
	for _, opt := range results.Options {
		options = append(options, optionTally{
			ID:         opt.ID,
			Label:      opt.Label,
			Votes:      opt.Votes,
			Percentage: units.Percentage(float64(opt.Votes), float64(total)),
		})
	}

	return map[string]interface{}{
		"pollId":     results.PollID,
		"totalVotes": total,
		"options":    options,
	}
}

func fanListOpts(params map[string]interface{}) (fanapi.ListOpts, error) {
	var opts fanapi.ListOpts
	opts.Status = optStr(params, "status", "")
	opts.ClubID = optStr(params, "clubId", "")
	page, err := intParam(params, "page", 0)
	if err != nil {
		return opts, err
	}
	limit, err := intParam(params, "limit", 0)
	if err != nil {
		return opts, err
	}
	opts.Page = int(page)
	opts.Limit = int(limit)
	return opts, nil
}
