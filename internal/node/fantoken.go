package node

import (
	"context"
	"encoding/json"
	"fmt"

	"fanlink/internal/abi"
	"fanlink/internal/cache"
	"fanlink/internal/chain"
	"fanlink/internal/jsonrpc"
	"fanlink/internal/registry"
	"fanlink/internal/units"
)

const (
	transferStubNote = "transaction signing and broadcasting are not performed; the unsigned payload is returned for external signing"
	priceStubNote    = "live price data requires an external market data provider; none is configured, so the price is a placeholder"
)

// tokenInfo is the merged on-chain and registry view of one contract
type tokenInfo struct {
	Address     string `json:"address"`
	Name        string `json:"name,omitempty"`
	Symbol      string `json:"symbol,omitempty"`
	Decimals    int32  `json:"decimals"`
	TotalSupply string `json:"totalSupply,omitempty"`
	Supply      string `json:"totalSupplyFormatted,omitempty"`
	Standard    string `json:"standard"`
	Network     string `json:"network"`
	Registered  bool   `json:"registered"`
}

func (n *Node) execFanToken(ctx context.Context, t *target, op string, params map[string]interface{}) (*result, error) {
	switch op {
	case "list":
		tokens := n.registry.TokensFor(t.network.Name)
		return okResult(map[string]interface{}{
			"network": t.network.Name,
			"count":   len(tokens),
			"tokens":  tokens,
		})

	case "getInfo":
		tok, err := n.lookupToken(t, params)
		if err != nil {
			return nil, err
		}
		info, err := n.tokenInfo(ctx, t, tok)
		if err != nil {
			return nil, err
		}
		return okResult(info)

	case "getBalance":
		tok, err := n.lookupToken(t, params)
		if err != nil {
			return nil, err
		}
		holder, err := requireAddress(params, "address")
		if err != nil {
			return nil, err
		}
		tag, err := blockTagParam(params, "blockTag")
		if err != nil {
			return nil, err
		}
		data, err := abi.EncodeCall("balanceOf", holder)
		if err != nil {
			return nil, validationErr("%v", err)
		}
		out, err := n.chainClient(t).CallContract(ctx, chain.CallMsg{To: tok.Address, Data: data}, tag)
		if err != nil {
			return nil, err
		}
		balance, err := abi.DecodeUint256(out)
		if err != nil {
			return nil, fmt.Errorf("decoding balanceOf result: %w", err)
		}
		decimals, err := n.tokenDecimals(ctx, t, tok)
		if err != nil {
			return nil, err
		}
		return okResult(map[string]interface{}{
			"network":   t.network.Name,
			"token":     tok.Address,
			"symbol":    tok.Symbol,
			"address":   holder,
			"balance":   balance.String(),
			"formatted": units.FromWeiBig(balance, decimals),
			"decimals":  decimals,
		})

	case "getTotalSupply":
		tok, err := n.lookupToken(t, params)
		if err != nil {
			return nil, err
		}
		info, err := n.tokenInfo(ctx, t, tok)
		if err != nil {
			return nil, err
		}
		return okResult(map[string]interface{}{
			"network":     t.network.Name,
			"token":       info.Address,
			"symbol":      info.Symbol,
			"totalSupply": info.TotalSupply,
			"formatted":   info.Supply,
			"decimals":    info.Decimals,
		})

	case "getHolders":
		tok, err := n.lookupToken(t, params)
		if err != nil {
			return nil, err
		}
		page, err := intParam(params, "page", 1)
		if err != nil {
			return nil, err
		}
		offset, err := intParam(params, "offset", 10)
		if err != nil {
			return nil, err
		}
		exp, err := n.explorerClient(t)
		if err != nil {
			return nil, err
		}
		holders, err := exp.TokenHolders(ctx, tok.Address, int(page), int(offset))
		if err != nil {
			return nil, err
		}
		decimals, err := n.tokenDecimals(ctx, t, tok)
		if err != nil {
			return nil, err
		}
		type holderEntry struct {
			Address   string `json:"address"`
			Quantity  string `json:"quantity"`
			Formatted string `json:"formatted,omitempty"`
		}
		entries := make([]holderEntry, 0, len(holders))
		for _, h := range holders {
			entry := holderEntry{Address: h.Address, Quantity: h.Value}
			if formatted, err := units.FromWei(h.Value, decimals); err == nil {
				entry.Formatted = formatted
			}
			entries = append(entries, entry)
		}
		return okResult(map[string]interface{}{
			"network": t.network.Name,
			"token":   tok.Address,
			"page":    page,
			"holders": entries,
		})

	case "getPrice":
		tok, err := n.lookupToken(t, params)
		if err != nil {
			return nil, err
		}
		currency := optStr(params, "currency", "USD")
		return okResult(map[string]interface{}{
			"network":   t.network.Name,
			"token":     tok.Address,
			"symbol":    tok.Symbol,
			"currency":  currency,
			"price":     nil,
			"available": false,
		}, priceStubNote)

	case "transfer":
		tok, err := n.lookupToken(t, params)
		if err != nil {
			return nil, err
		}
		to, err := requireAddress(params, "to")
		if err != nil {
			return nil, err
		}
		amount, err := requireStr(params, "amount")
		if err != nil {
			return nil, err
		}
		decimals, err := n.tokenDecimals(ctx, t, tok)
		if err != nil {
			return nil, err
		}
		wei, err := units.ToWei(amount, decimals)
		if err != nil {
			return nil, validationErr("invalid amount %q: %v", amount, err)
		}
		data, err := abi.EncodeCall("transfer", to, wei)
		if err != nil {
			return nil, validationErr("%v", err)
		}
		return okResult(map[string]interface{}{
			"network": t.network.Name,
			"to":      tok.Address,
			"data":    data,
			"value":   "0x0",
			"signed":  false,
		}, transferStubNote)

	default:
		return nil, unknownOperation("fanToken", op)
	}
}

func (n *Node) lookupToken(t *target, params map[string]interface{}) (registry.Token, error) {
	ref, err := requireStr(params, "token")
	if err != nil {
		return registry.Token{}, err
	}
	tok, err := n.registry.Token(t.network.Name, ref)
	if err != nil {
		return registry.Token{}, validationErr("%v", err)
	}
	return tok, nil
}

// tokenInfo reads name, symbol, decimals and totalSupply in one batch
// request. Individual call failures fall back to registry metadata, so
// contracts without the optional metadata functions still resolve.
func (n *Node) tokenInfo(ctx context.Context, t *target, tok registry.Token) (*tokenInfo, error) {
	key := cache.TokenMetaKey(t.network.ChainID, tok.Address)
	if t.cacheable() {
		if raw, ok := n.cache.Get(key); ok {
			var info tokenInfo
			if err := json.Unmarshal(raw, &info); err == nil {
				return &info, nil
			}
		}
	}

	calls := make([]chain.BatchCall, 0, 4)
	for _, name := range []string{"name", "symbol", "decimals", "totalSupply"} {
		data, err := abi.EncodeCall(name)
		if err != nil {
			return nil, err
		}
		calls = append(calls, chain.BatchCall{
			Method: "eth_call",
			Params: []interface{}{chain.CallMsg{To: tok.Address, Data: data}, "latest"},
		})
	}

	responses, err := n.chainClient(t).CallBatch(ctx, calls)
	if err != nil {
		return nil, err
	}

	info := &tokenInfo{
		Address:    tok.Address,
		Name:       tok.Name,
		Symbol:     tok.Symbol,
		Decimals:   tok.Decimals,
		Standard:   tok.Standard,
		Network:    t.network.Name,
		Registered: tok.Registered,
	}

	if out := callResult(responses[0]); out != "" {
		if name, err := abi.DecodeString(out); err == nil && name != "" {
			info.Name = name
		}
	}
	if out := callResult(responses[1]); out != "" {
		if symbol, err := abi.DecodeString(out); err == nil && symbol != "" {
			info.Symbol = symbol
		}
	}
	if out := callResult(responses[2]); out != "" {
		if decimals, err := abi.DecodeUint8(out); err == nil {
			info.Decimals = int32(decimals)
		}
	}
	if info.Decimals < 0 {
		info.Decimals = 18
	}
	if out := callResult(responses[3]); out != "" {
		if supply, err := abi.DecodeUint256(out); err == nil {
			info.TotalSupply = supply.String()
			info.Supply = units.FromWeiBig(supply, info.Decimals)
		}
	}

	if t.cacheable() {
		if raw, err := json.Marshal(info); err == nil {
			n.cache.Set(key, raw)
		}
	}
	return info, nil
}

// tokenDecimals avoids the full metadata fetch when the registry
// already knows the answer
func (n *Node) tokenDecimals(ctx context.Context, t *target, tok registry.Token) (int32, error) {
	if tok.Decimals >= 0 {
		return tok.Decimals, nil
	}
	info, err := n.tokenInfo(ctx, t, tok)
	if err != nil {
		return 0, err
	}
	return info.Decimals, nil
}

// callResult extracts a successful eth_call payload from a batch entry
func callResult(resp *jsonrpc.Response) string {
	if resp == nil || resp.HasError() || resp.ResultIsNull() {
		return ""
	}
	var out string
	if err := resp.UnmarshalResult(&out); err != nil {
		return ""
	}
	return out
}
