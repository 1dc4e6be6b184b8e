package node

import (
	"context"
	"strings"

	"fanlink/internal/chain"
	"fanlink/internal/hexutil"
)

func (n *Node) execEvent(ctx context.Context, t *target, op string, params map[string]interface{}) (*result, error) {
	client := n.chainClient(t)

	switch op {
	case "getLogs":
		filter, err := logFilterFromParams(params)
		if err != nil {
			return nil, err
		}
		logs, err := client.GetLogs(ctx, filter)
		if err != nil {
			return nil, err
		}
		return okResult(map[string]interface{}{
			"network": t.network.Name,
			"count":   len(logs),
			"logs":    logs,
		})

	case "createFilter":
		filter, err := logFilterFromParams(params)
		if err != nil {
			return nil, err
		}
		if filter.BlockHash != "" {
			return nil, validationErr("blockHash filters cannot be installed as a persistent filter")
		}
		id, err := client.NewFilter(ctx, filter)
		if err != nil {
			return nil, err
		}
		return okResult(map[string]interface{}{
			"network":  t.network.Name,
			"filterId": id,
		})

	case "getFilterChanges":
		id, err := requireStr(params, "filterId")
		if err != nil {
			return nil, err
		}
		logs, err := client.GetFilterChanges(ctx, id)
		if err != nil {
			return nil, err
		}
		return okResult(map[string]interface{}{
			"network":  t.network.Name,
			"filterId": id,
			"count":    len(logs),
			"logs":     logs,
		})

	default:
		return nil, unknownOperation("event", op)
	}
}

func logFilterFromParams(params map[string]interface{}) (chain.LogFilter, error) {
	var filter chain.LogFilter

	if hash, ok := strParam(params, "blockHash"); ok && hash != "" {
		if !hexutil.IsValidTxHash(hash) {
			return filter, validationErr("parameter \"blockHash\" is not a valid block hash: %s", hash)
		}
		filter.BlockHash = strings.ToLower(hash)
	} else {
		from, _ := strParam(params, "fromBlock")
		tag, err := chain.NormalizeBlockTag(from)
		if err != nil {
			return filter, validationErr("parameter \"fromBlock\": %v", err)
		}
		filter.FromBlock = tag

		to, _ := strParam(params, "toBlock")
		tag, err = chain.NormalizeBlockTag(to)
		if err != nil {
			return filter, validationErr("parameter \"toBlock\": %v", err)
		}
		filter.ToBlock = tag
	}

	addresses, err := strSliceParam(params, "address")
	if err != nil {
		return filter, err
	}
	switch len(addresses) {
	case 0:
	case 1:
		if !hexutil.IsValidAddress(addresses[0]) {
			return filter, validationErr("parameter \"address\" is not a valid address: %s", addresses[0])
		}
		filter.Address = hexutil.NormalizeAddress(addresses[0])
	default:
		normalized := make([]string, 0, len(addresses))
		for _, addr := range addresses {
			if !hexutil.IsValidAddress(addr) {
				return filter, validationErr("parameter \"address\" contains an invalid address: %s", addr)
			}
			normalized = append(normalized, hexutil.NormalizeAddress(addr))
		}
		filter.Address = normalized
	}

	topics, err := topicsFromParams(params)
	if err != nil {
		return filter, err
	}
	filter.Topics = topics
	return filter, nil
}

// topicsFromParams validates the positional topic list. Each position
// is a 32-byte hex string, null as a wildcard, or a list of
// alternatives.
func topicsFromParams(params map[string]interface{}) ([]interface{}, error) {
	v, ok := params["topics"]
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]interface{})
	if !ok {
		return nil, validationErr("parameter \"topics\" must be an array")
	}
	out := make([]interface{}, 0, len(list))
	for i, item := range list {
		switch topic := item.(type) {
		case nil:
			out = append(out, nil)
		case string:
			normalized, err := normalizeTopic(topic)
			if err != nil {
				return nil, validationErr("topic %d: %v", i, err)
			}
			out = append(out, normalized)
		case []interface{}:
			alternatives := make([]string, 0, len(topic))
			for _, alt := range topic {
				s, ok := alt.(string)
				if !ok {
					return nil, validationErr("topic %d alternatives must be strings", i)
				}
				normalized, err := normalizeTopic(s)
				if err != nil {
					return nil, validationErr("topic %d: %v", i, err)
				}
				alternatives = append(alternatives, normalized)
			}
			out = append(out, alternatives)
		default:
			return nil, validationErr("topic %d must be a string, null, or an array of strings", i)
		}
	}
	return out, nil
}

func normalizeTopic(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !hexutil.IsValidTxHash(s) {
		return "", validationErr("not a 32-byte hex value: %s", s)
	}
	return s, nil
}
