package node

import "context"

func (n *Node) execReward(ctx context.Context, t *target, op string, params map[string]interface{}) (*result, error) {
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
		rewards, err := fan.ListRewards(ctx, opts)
		if err != nil {
			return nil, err
		}
		return okResult(map[string]interface{}{
			"count":   len(rewards),
			"rewards": rewards,
		})

	case "get":
		id, err := requireStr(params, "rewardId")
		if err != nil {
			return nil, err
		}
		reward, err := fan.Reward(ctx, id)
		if err != nil {
			return nil, err
		}
		return okResult(reward)

	case "claim":
		id, err := requireStr(params, "rewardId")
		if err != nil {
			return nil, err
		}
		receipt, err := fan.Claim(ctx, id)
		if err != nil {
			return nil, err
		}
		return okResult(receipt)

	default:
		return nil, unknownOperation("reward", op)
	}
}
