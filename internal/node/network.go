package node

import (
	"context"
	"strings"

	"fanlink/internal/chain"
	"fanlink/internal/hexutil"
	"fanlink/internal/units"
)

func (n *Node) execNetwork(ctx context.Context, t *target, op string, params map[string]interface{}) (*result, error) {
	client := n.chainClient(t)

	switch op {
	case "getStatus":
		chainID, err := client.ChainID(ctx)
		if err != nil {
			return nil, err
		}
		head, err := client.BlockNumber(ctx)
		if err != nil {
			return nil, err
		}
		out := map[string]interface{}{
			"network":     t.network.Name,
			"chainId":     chainID,
			"blockNumber": head,
			"syncing":     false,
		}
		if status, err := client.Syncing(ctx); err == nil && status != nil {
			out["syncing"] = true
			out["syncStatus"] = status
		}
		if version, err := client.ClientVersion(ctx); err == nil {
			out["clientVersion"] = version
		}
		// Best effort, many endpoints have retired these two methods
		if version, err := client.ProtocolVersion(ctx); err == nil {
			out["protocolVersion"] = version
		}
		if peers, err := client.PeerCount(ctx); err == nil {
			out["peerCount"] = peers
		}
		if chainID != t.network.ChainID && t.network.ChainID != 0 {
			out["chainIdMismatch"] = true
		}
		return okResult(out)

	case "getGasPrice":
		price, err := client.GasPrice(ctx)
		if err != nil {
			return nil, err
		}
		out := map[string]interface{}{
			"network":  t.network.Name,
			"wei":      price.String(),
			"gwei":     units.FromWeiBig(price, 9),
			"gasPrice": hexutil.FormatBig(price),
		}
		// Pre-London endpoints reject this method, the legacy price
		// still answers the question.
		if tip, err := client.MaxPriorityFeePerGas(ctx); err == nil {
			out["maxPriorityFeePerGas"] = tip.String()
			out["maxPriorityFeePerGasGwei"] = units.FromWeiBig(tip, 9)
		}
		return okResult(out)

	case "getFeeHistory":
		blockCount, err := intParam(params, "blockCount", 10)
		if err != nil {
			return nil, err
		}
		if blockCount < 1 || blockCount > 1024 {
			return nil, validationErr("parameter \"blockCount\" must be between 1 and 1024")
		}
		tag, err := blockTagParam(params, "newestBlock")
		if err != nil {
			return nil, err
		}
		history, err := client.FeeHistory(ctx, uint64(blockCount), tag, []float64{25, 50, 75})
		if err != nil {
			return nil, err
		}
		return okResult(map[string]interface{}{
			"network":     t.network.Name,
			"newestBlock": tag,
			"blockCount":  blockCount,
			"feeHistory":  history,
		})

	case "getBlock":
		fullTx := boolParam(params, "includeTransactions")
		ref, _ := strParam(params, "block")
		if hexutil.IsValidTxHash(ref) {
			block, err := client.GetBlockByHash(ctx, strings.ToLower(ref), fullTx)
			if err != nil {
				return nil, err
			}
			return blockResult(t, block)
		}
		tag, err := blockTagParam(params, "block")
		if err != nil {
			return nil, err
		}
		block, err := client.GetBlockByNumber(ctx, tag, fullTx)
		if err != nil {
			return nil, err
		}
		return blockResult(t, block)

	default:
		return nil, unknownOperation("network", op)
	}
}

func blockResult(t *target, block *chain.Block) (*result, error) {
	out := map[string]interface{}{
		"network": t.network.Name,
		"block":   block,
	}
	if number, err := hexutil.ParseUint64(block.Number); err == nil {
		out["number"] = number
	}
	if ts, err := hexutil.ParseUint64(block.Timestamp); err == nil {
		out["timestamp"] = ts
	}
	return okResult(out)
}
