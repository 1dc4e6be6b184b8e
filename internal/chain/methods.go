package chain

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"

	"fanlink/internal/hexutil"
)

// ErrNotFound is returned when the endpoint answers null for a lookup
// (unknown transaction, unmined receipt, missing block).
var ErrNotFound = errors.New("not found")

// ChainID returns the chain ID from eth_chainId
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	return c.callUint64(ctx, "eth_chainId", nil)
}

// NetVersion returns the network ID from net_version (a decimal string)
func (c *Client) NetVersion(ctx context.Context) (string, error) {
	var version string
	if err := c.CallInto(ctx, "net_version", nil, &version); err != nil {
		return "", err
	}
	return version, nil
}

// ClientVersion returns the node software banner from web3_clientVersion
func (c *Client) ClientVersion(ctx context.Context) (string, error) {
	var version string
	if err := c.CallInto(ctx, "web3_clientVersion", nil, &version); err != nil {
		return "", err
	}
	return version, nil
}

// ProtocolVersion returns the wire protocol version. Many endpoints no
// longer serve eth_protocolVersion, callers should treat errors as a
// missing value.
func (c *Client) ProtocolVersion(ctx context.Context) (string, error) {
	var version string
	if err := c.CallInto(ctx, "eth_protocolVersion", nil, &version); err != nil {
		return "", err
	}
	return version, nil
}

// PeerCount returns the number of connected peers from net_peerCount
func (c *Client) PeerCount(ctx context.Context) (uint64, error) {
	return c.callUint64(ctx, "net_peerCount", nil)
}

// BlockNumber returns the latest block height
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return c.callUint64(ctx, "eth_blockNumber", nil)
}

// GetBalance returns the native balance in wei at the given block
func (c *Client) GetBalance(ctx context.Context, address, blockTag string) (*big.Int, error) {
	return c.callBig(ctx, "eth_getBalance", []string{address, blockTag})
}

// GetTransactionCount returns the account nonce at the given block
func (c *Client) GetTransactionCount(ctx context.Context, address, blockTag string) (uint64, error) {
	return c.callUint64(ctx, "eth_getTransactionCount", []string{address, blockTag})
}

// GasPrice returns the current gas price in wei
func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	return c.callBig(ctx, "eth_gasPrice", nil)
}

// MaxPriorityFeePerGas returns the suggested priority fee in wei
func (c *Client) MaxPriorityFeePerGas(ctx context.Context) (*big.Int, error) {
	return c.callBig(ctx, "eth_maxPriorityFeePerGas", nil)
}

// FeeHistory returns base fee and priority fee history
func (c *Client) FeeHistory(ctx context.Context, blockCount uint64, newestBlock string, percentiles []float64) (*FeeHistory, error) {
	params := []interface{}{hexutil.FormatUint64(blockCount), newestBlock, percentiles}
	var history FeeHistory
	if err := c.CallInto(ctx, "eth_feeHistory", params, &history); err != nil {
		return nil, err
	}
	return &history, nil
}

// GetBlockByNumber returns the block at the given tag or number.
// fullTx controls whether transactions come back as objects or hashes.
func (c *Client) GetBlockByNumber(ctx context.Context, blockTag string, fullTx bool) (*Block, error) {
	var block Block
	if err := c.CallInto(ctx, "eth_getBlockByNumber", []interface{}{blockTag, fullTx}, &block); err != nil {
		return nil, err
	}
	return &block, nil
}

// GetBlockByHash returns the block with the given hash
func (c *Client) GetBlockByHash(ctx context.Context, hash string, fullTx bool) (*Block, error) {
	var block Block
	if err := c.CallInto(ctx, "eth_getBlockByHash", []interface{}{hash, fullTx}, &block); err != nil {
		return nil, err
	}
	return &block, nil
}

// GetTransactionByHash returns a transaction, or ErrNotFound when the
// endpoint does not know the hash.
func (c *Client) GetTransactionByHash(ctx context.Context, hash string) (*Transaction, error) {
	var tx Transaction
	if err := c.CallInto(ctx, "eth_getTransactionByHash", []string{hash}, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// GetTransactionReceipt returns a receipt, or ErrNotFound while the
// transaction is still pending.
func (c *Client) GetTransactionReceipt(ctx context.Context, hash string) (*Receipt, error) {
	var receipt Receipt
	if err := c.CallInto(ctx, "eth_getTransactionReceipt", []string{hash}, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// CallContract executes a read-only call and returns the raw return data
func (c *Client) CallContract(ctx context.Context, msg CallMsg, blockTag string) (string, error) {
	var data string
	if err := c.CallInto(ctx, "eth_call", []interface{}{msg, blockTag}, &data); err != nil {
		return "", err
	}
	return data, nil
}

// EstimateGas returns the gas estimate for the given call
func (c *Client) EstimateGas(ctx context.Context, msg CallMsg) (uint64, error) {
	return c.callUint64(ctx, "eth_estimateGas", []interface{}{msg})
}

// SendRawTransaction broadcasts a signed transaction and returns its hash
func (c *Client) SendRawTransaction(ctx context.Context, signedTx string) (string, error) {
	var hash string
	if err := c.CallInto(ctx, "eth_sendRawTransaction", []string{signedTx}, &hash); err != nil {
		return "", err
	}
	return hash, nil
}

// GetCode returns the contract bytecode at the given block
func (c *Client) GetCode(ctx context.Context, address, blockTag string) (string, error) {
	var code string
	if err := c.CallInto(ctx, "eth_getCode", []string{address, blockTag}, &code); err != nil {
		return "", err
	}
	return code, nil
}

// GetLogs returns logs matching the filter
func (c *Client) GetLogs(ctx context.Context, filter LogFilter) ([]Log, error) {
	var logs []Log
	if err := c.CallInto(ctx, "eth_getLogs", []interface{}{filter}, &logs); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []Log{}, nil
		}
		return nil, err
	}
	return logs, nil
}

// NewFilter installs a log filter on the endpoint and returns its ID
func (c *Client) NewFilter(ctx context.Context, filter LogFilter) (string, error) {
	var id string
	if err := c.CallInto(ctx, "eth_newFilter", []interface{}{filter}, &id); err != nil {
		return "", err
	}
	return id, nil
}

// GetFilterChanges returns new logs for an installed filter
func (c *Client) GetFilterChanges(ctx context.Context, filterID string) ([]Log, error) {
	var logs []Log
	if err := c.CallInto(ctx, "eth_getFilterChanges", []string{filterID}, &logs); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []Log{}, nil
		}
		return nil, err
	}
	return logs, nil
}

// Syncing returns the sync status, or nil when the endpoint is caught up
// (eth_syncing answers the literal false in that case).
func (c *Client) Syncing(ctx context.Context) (*SyncStatus, error) {
	result, err := c.Call(ctx, "eth_syncing", nil)
	if err != nil {
		return nil, err
	}
	if string(result) == "false" {
		return nil, nil
	}
	var status SyncStatus
	if err := json.Unmarshal(result, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) callUint64(ctx context.Context, method string, params interface{}) (uint64, error) {
	var hex string
	if err := c.CallInto(ctx, method, params, &hex); err != nil {
		return 0, err
	}
	return hexutil.ParseUint64(hex)
}

func (c *Client) callBig(ctx context.Context, method string, params interface{}) (*big.Int, error) {
	var hex string
	if err := c.CallInto(ctx, method, params, &hex); err != nil {
		return nil, err
	}
	return hexutil.ParseBig(hex)
}
