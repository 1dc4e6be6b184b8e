package node

import (
	"context"
	"encoding/json"
	"strings"

	"fanlink/internal/abi"
	"fanlink/internal/chain"
	"fanlink/internal/hexutil"
)

func (n *Node) execContract(ctx context.Context, t *target, op string, params map[string]interface{}) (*result, error) {
	switch op {
	case "call":
		addr, err := requireAddress(params, "address")
		if err != nil {
			return nil, err
		}
		data, err := callDataFromParams(params)
		if err != nil {
			return nil, err
		}
		tag, err := blockTagParam(params, "blockTag")
		if err != nil {
			return nil, err
		}
		raw, err := n.chainClient(t).CallContract(ctx, chain.CallMsg{To: addr, Data: data}, tag)
		if err != nil {
			return nil, err
		}
		out := map[string]interface{}{
			"network": t.network.Name,
			"address": addr,
			"data":    data,
			"raw":     raw,
		}
		if decoded, ok := decodeReturn(raw, optStr(params, "returns", "")); ok {
			out["decoded"] = decoded
		}
		return okResult(out)

	case "getCode":
		addr, err := requireAddress(params, "address")
		if err != nil {
			return nil, err
		}
		tag, err := blockTagParam(params, "blockTag")
		if err != nil {
			return nil, err
		}
		code, err := n.chainClient(t).GetCode(ctx, addr, tag)
		if err != nil {
			return nil, err
		}
		return okResult(map[string]interface{}{
			"network":    t.network.Name,
			"address":    addr,
			"code":       code,
			"isContract": code != "0x" && code != "",
			"size":       (len(strings.TrimPrefix(code, "0x"))) / 2,
		})

	case "getAbi":
		addr, err := requireAddress(params, "address")
		if err != nil {
			return nil, err
		}
		exp, err := n.explorerClient(t)
		if err != nil {
			return nil, err
		}
		rawABI, err := exp.ContractABI(ctx, addr)
		if err != nil {
			return nil, err
		}
		out := map[string]interface{}{
			"network": t.network.Name,
			"address": addr,
		}
		// Verified contracts come back as a JSON document, keep it
		// structured instead of double-encoded.
		var parsed json.RawMessage
		if json.Unmarshal([]byte(rawABI), &parsed) == nil {
			out["abi"] = parsed
		} else {
			out["abi"] = rawABI
		}
		return okResult(out)

	case "getSource":
		addr, err := requireAddress(params, "address")
		if err != nil {
			return nil, err
		}
		exp, err := n.explorerClient(t)
		if err != nil {
			return nil, err
		}
		sources, err := exp.ContractSource(ctx, addr)
		if err != nil {
			return nil, err
		}
		verified := len(sources) > 0 && sources[0].SourceCode != ""
		return okResult(map[string]interface{}{
			"network":  t.network.Name,
			"address":  addr,
			"verified": verified,
			"sources":  sources,
		})

	default:
		return nil, unknownOperation("contract", op)
	}
}

// callDataFromParams accepts either prebuilt calldata or a function
// reference plus arguments for the built-in selector table
func callDataFromParams(params map[string]interface{}) (string, error) {
	if data, ok := strParam(params, "data"); ok && data != "" {
		data = strings.ToLower(data)
		if !hexutil.IsHexData(data) {
			return "", validationErr("parameter \"data\" must be a 0x-prefixed hex payload")
		}
		return data, nil
	}

	fn, err := requireStr(params, "function")
	if err != nil {
		return "", validationErr("either \"data\" or \"function\" is required")
	}
	args, err := strSliceParam(params, "args")
	if err != nil {
		return "", err
	}
	data, err := abi.EncodeCall(fn, args...)
	if err != nil {
		return "", validationErr("%v", err)
	}
	return data, nil
}

func strSliceParam(params map[string]interface{}, key string) ([]string, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]interface{})
	if !ok {
		if s, ok := v.(string); ok {
			if s = strings.TrimSpace(s); s == "" {
				return nil, nil
			}
			return []string{s}, nil
		}
		return nil, validationErr("parameter %q must be an array", key)
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		switch t := item.(type) {
		case string:
			out = append(out, strings.TrimSpace(t))
		case float64:
			out = append(out, formatFloat(t))
		default:
			return nil, validationErr("parameter %q must contain strings or numbers", key)
		}
	}
	return out, nil
}

// decodeReturn interprets call output for the handful of return shapes
// the selector table covers
func decodeReturn(raw, as string) (interface{}, bool) {
	switch strings.ToLower(as) {
	case "uint256", "uint":
		if v, err := abi.DecodeUint256(raw); err == nil {
			return v.String(), true
		}
	case "uint8":
		if v, err := abi.DecodeUint8(raw); err == nil {
			return v, true
		}
	case "string":
		if v, err := abi.DecodeString(raw); err == nil {
			return v, true
		}
	case "address":
		if v, err := abi.DecodeAddress(raw); err == nil {
			return v, true
		}
	case "bool":
		if v, err := abi.DecodeBool(raw); err == nil {
			return v, true
		}
	}
	return nil, false
}
