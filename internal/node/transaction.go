package node

import (
	"context"
	"encoding/json"
	"math/big"
	"strings"

	"fanlink/internal/cache"
	"fanlink/internal/chain"
	"fanlink/internal/hexutil"
	"fanlink/internal/units"
)

func (n *Node) execTransaction(ctx context.Context, t *target, op string, params map[string]interface{}) (*result, error) {
	switch op {
	case "get":
		hash, err := requireTxHash(params, "hash")
		if err != nil {
			return nil, err
		}
		key := cache.TxKey(t.network.ChainID, hash)
		if t.cacheable() {
			if raw, ok := n.cache.Get(key); ok {
				var tx chain.Transaction
				if err := json.Unmarshal(raw, &tx); err == nil {
					return n.transactionResult(t, &tx)
				}
			}
		}
		tx, err := n.chainClient(t).GetTransactionByHash(ctx, hash)
		if err != nil {
			return nil, err
		}
		// Pending transactions can still change, mined ones cannot
		if t.cacheable() && tx.BlockNumber != "" {
			if raw, err := json.Marshal(tx); err == nil {
				n.cache.SetImmutable(key, raw)
			}
		}
		return n.transactionResult(t, tx)

	case "getReceipt":
		hash, err := requireTxHash(params, "hash")
		if err != nil {
			return nil, err
		}
		key := cache.ReceiptKey(t.network.ChainID, hash)
		if t.cacheable() {
			if raw, ok := n.cache.Get(key); ok {
				var receipt chain.Receipt
				if err := json.Unmarshal(raw, &receipt); err == nil {
					return receiptResult(t, &receipt)
				}
			}
		}
		receipt, err := n.chainClient(t).GetTransactionReceipt(ctx, hash)
		if err != nil {
			return nil, err
		}
		if t.cacheable() {
			if raw, err := json.Marshal(receipt); err == nil {
				n.cache.SetImmutable(key, raw)
			}
		}
		return receiptResult(t, receipt)

	case "estimateGas":
		msg, err := callMsgFromParams(t, params, false)
		if err != nil {
			return nil, err
		}
		gas, err := n.chainClient(t).EstimateGas(ctx, msg)
		if err != nil {
			return nil, err
		}
		return okResult(map[string]interface{}{
			"network": t.network.Name,
			"gas":     gas,
			"gasHex":  hexutil.FormatUint64(gas),
		})

	case "sendRaw":
		signed, err := requireStr(params, "signedData")
		if err != nil {
			return nil, err
		}
		signed = strings.ToLower(signed)
		if !hexutil.IsHexData(signed) || len(signed) == 2 {
			return nil, validationErr("parameter \"signedData\" must be a non-empty 0x-prefixed hex payload")
		}
		hash, err := n.chainClient(t).SendRawTransaction(ctx, signed)
		if err != nil {
			return nil, err
		}
		return okResult(map[string]interface{}{
			"network": t.network.Name,
			"hash":    hash,
		})

	case "send":
		msg, err := callMsgFromParams(t, params, true)
		if err != nil {
			return nil, err
		}
		return okResult(map[string]interface{}{
			"network": t.network.Name,
			"from":    msg.From,
			"to":      msg.To,
			"value":   msg.Value,
			"data":    msg.Data,
			"signed":  false,
		}, transferStubNote)

	default:
		return nil, unknownOperation("transaction", op)
	}
}

func (n *Node) transactionResult(t *target, tx *chain.Transaction) (*result, error) {
	out := map[string]interface{}{
		"network":     t.network.Name,
		"transaction": tx,
		"pending":     tx.BlockNumber == "",
	}
	if value, err := hexutil.ParseBig(tx.Value); err == nil {
		out["valueFormatted"] = units.FromWeiBig(value, t.network.NativeDecimals) + " " + t.network.NativeSymbol
	}
	return okResult(out)
}

func receiptResult(t *target, receipt *chain.Receipt) (*result, error) {
	status := "unknown"
	switch receipt.Status {
	case "0x1":
		status = "success"
	case "0x0":
		status = "failed"
	}
	return okResult(map[string]interface{}{
		"network": t.network.Name,
		"status":  status,
		"receipt": receipt,
	})
}

// callMsgFromParams assembles the eth_call style argument object. The
// value parameter is an amount in the native unit, not wei.
func callMsgFromParams(t *target, params map[string]interface{}, requireFrom bool) (chain.CallMsg, error) {
	var msg chain.CallMsg
	to, err := requireAddress(params, "to")
	if err != nil {
		return msg, err
	}
	msg.To = to

	if from, ok := strParam(params, "from"); ok && from != "" {
		if !hexutil.IsValidAddress(from) {
			return msg, validationErr("parameter \"from\" is not a valid address: %s", from)
		}
		msg.From = hexutil.NormalizeAddress(from)
	} else if requireFrom {
		return msg, validationErr("missing required parameter \"from\"")
	}

	if amount, ok := strParam(params, "value"); ok && amount != "" {
		wei, err := units.ToWei(amount, t.network.NativeDecimals)
		if err != nil {
			return msg, validationErr("invalid value %q: %v", amount, err)
		}
		weiBig, ok := new(big.Int).SetString(wei, 10)
		if !ok {
			return msg, validationErr("invalid value %q", amount)
		}
		msg.Value = hexutil.FormatBig(weiBig)
	}

	if data, ok := strParam(params, "data"); ok && data != "" {
		data = strings.ToLower(data)
		if !hexutil.IsHexData(data) {
			return msg, validationErr("parameter \"data\" must be a 0x-prefixed hex payload")
		}
		msg.Data = data
	}
	return msg, nil
}
