package node

import (
	"context"

	"fanlink/internal/explorer"
	"fanlink/internal/units"
)

func (n *Node) execAccount(ctx context.Context, t *target, op string, params map[string]interface{}) (*result, error) {
	switch op {
	case "getBalance":
		addr, err := requireAddress(params, "address")
		if err != nil {
			return nil, err
		}
		tag, err := blockTagParam(params, "blockTag")
		if err != nil {
			return nil, err
		}
		balance, err := n.chainClient(t).GetBalance(ctx, addr, tag)
		if err != nil {
			return nil, err
		}
		return okResult(map[string]interface{}{
			"network":   t.network.Name,
			"address":   addr,
			"blockTag":  tag,
			"balance":   balance.String(),
			"formatted": units.FromWeiBig(balance, t.network.NativeDecimals),
			"symbol":    t.network.NativeSymbol,
		})

	case "getTransactionCount":
		addr, err := requireAddress(params, "address")
		if err != nil {
			return nil, err
		}
		tag, err := blockTagParam(params, "blockTag")
		if err != nil {
			return nil, err
		}
		nonce, err := n.chainClient(t).GetTransactionCount(ctx, addr, tag)
		if err != nil {
			return nil, err
		}
		return okResult(map[string]interface{}{
			"network":  t.network.Name,
			"address":  addr,
			"blockTag": tag,
			"nonce":    nonce,
		})

	case "getTransactions":
		addr, err := requireAddress(params, "address")
		if err != nil {
			return nil, err
		}
		opts, err := explorerListOpts(params)
		if err != nil {
			return nil, err
		}
		exp, err := n.explorerClient(t)
		if err != nil {
			return nil, err
		}
		txs, err := exp.AccountTransactions(ctx, addr, opts)
		if err != nil {
			return nil, err
		}
		return okResult(map[string]interface{}{
			"network":      t.network.Name,
			"address":      addr,
			"count":        len(txs),
			"transactions": txs,
		})

	case "getTokenTransfers":
		addr, err := requireAddress(params, "address")
		if err != nil {
			return nil, err
		}
		contract := ""
		if ref, ok := strParam(params, "token"); ok && ref != "" {
			tok, err := n.registry.Token(t.network.Name, ref)
			if err != nil {
				return nil, validationErr("%v", err)
			}
			contract = tok.Address
		}
		opts, err := explorerListOpts(params)
		if err != nil {
			return nil, err
		}
		exp, err := n.explorerClient(t)
		if err != nil {
			return nil, err
		}
		transfers, err := exp.TokenTransfers(ctx, addr, contract, opts)
		if err != nil {
			return nil, err
		}
		return okResult(map[string]interface{}{
			"network":   t.network.Name,
			"address":   addr,
			"token":     contract,
			"count":     len(transfers),
			"transfers": transfers,
		})

	default:
		return nil, unknownOperation("account", op)
	}
}

// explorerListOpts maps the shared paging parameters onto the explorer
// query shape
func explorerListOpts(params map[string]interface{}) (explorer.ListOpts, error) {
	var opts explorer.ListOpts
	start, err := intParam(params, "startBlock", 0)
	if err != nil {
		return opts, err
	}
	end, err := intParam(params, "endBlock", 0)
	if err != nil {
		return opts, err
	}
	if start < 0 || end < 0 {
		return opts, validationErr("block range parameters must not be negative")
	}
	opts.StartBlock = uint64(start)
	opts.EndBlock = uint64(end)

	page, err := intParam(params, "page", 0)
	if err != nil {
		return opts, err
	}
	offset, err := intParam(params, "offset", 0)
	if err != nil {
		return opts, err
	}
	opts.Page = int(page)
	opts.Offset = int(offset)

	sort := optStr(params, "sort", "")
	switch sort {
	case "", "asc", "desc":
		opts.Sort = sort
	default:
		return opts, validationErr("parameter \"sort\" must be \"asc\" or \"desc\"")
	}
	return opts, nil
}
