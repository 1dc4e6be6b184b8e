package chain

import "encoding/json"

// Block represents an execution-layer block. Transactions keeps its raw
// form because eth_getBlockByNumber returns hashes or full objects
// depending on the request.
type Block struct {
	Number           string          `json:"number"`
	Hash             string          `json:"hash"`
	ParentHash       string          `json:"parentHash"`
	Timestamp        string          `json:"timestamp"`
	Miner            string          `json:"miner"`
	GasLimit         string          `json:"gasLimit"`
	GasUsed          string          `json:"gasUsed"`
	BaseFeePerGas    string          `json:"baseFeePerGas,omitempty"`
	Size             string          `json:"size,omitempty"`
	StateRoot        string          `json:"stateRoot,omitempty"`
	TransactionsRoot string          `json:"transactionsRoot,omitempty"`
	ReceiptsRoot     string          `json:"receiptsRoot,omitempty"`
	ExtraData        string          `json:"extraData,omitempty"`
	Transactions     json.RawMessage `json:"transactions,omitempty"`
}

// Transaction represents a transaction as returned by the endpoint
type Transaction struct {
	Hash                 string `json:"hash"`
	Nonce                string `json:"nonce"`
	BlockHash            string `json:"blockHash,omitempty"`
	BlockNumber          string `json:"blockNumber,omitempty"`
	TransactionIndex     string `json:"transactionIndex,omitempty"`
	From                 string `json:"from"`
	To                   string `json:"to,omitempty"`
	Value                string `json:"value"`
	Gas                  string `json:"gas"`
	GasPrice             string `json:"gasPrice,omitempty"`
	MaxFeePerGas         string `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas string `json:"maxPriorityFeePerGas,omitempty"`
	Input                string `json:"input"`
	Type                 string `json:"type,omitempty"`
	ChainID              string `json:"chainId,omitempty"`
}

// Receipt represents a transaction receipt
type Receipt struct {
	TransactionHash   string `json:"transactionHash"`
	TransactionIndex  string `json:"transactionIndex"`
	BlockHash         string `json:"blockHash"`
	BlockNumber       string `json:"blockNumber"`
	From              string `json:"from"`
	To                string `json:"to,omitempty"`
	ContractAddress   string `json:"contractAddress,omitempty"`
	CumulativeGasUsed string `json:"cumulativeGasUsed"`
	GasUsed           string `json:"gasUsed"`
	EffectiveGasPrice string `json:"effectiveGasPrice,omitempty"`
	Status            string `json:"status"`
	LogsBloom         string `json:"logsBloom,omitempty"`
	Type              string `json:"type,omitempty"`
	Logs              []Log  `json:"logs"`
}

// Log represents a contract log entry
type Log struct {
	Address          string   `json:"address"`
	Topics           []string `json:"topics"`
	Data             string   `json:"data"`
	BlockNumber      string   `json:"blockNumber"`
	TransactionHash  string   `json:"transactionHash"`
	TransactionIndex string   `json:"transactionIndex"`
	BlockHash        string   `json:"blockHash"`
	LogIndex         string   `json:"logIndex"`
	Removed          bool     `json:"removed"`
}

// CallMsg is the argument object for eth_call and eth_estimateGas
type CallMsg struct {
	From     string `json:"from,omitempty"`
	To       string `json:"to"`
	Gas      string `json:"gas,omitempty"`
	GasPrice string `json:"gasPrice,omitempty"`
	Value    string `json:"value,omitempty"`
	Data     string `json:"data,omitempty"`
}

// LogFilter is the argument object for eth_getLogs and eth_newFilter.
// Address may be a single address string or a list; Topics follows the
// positional null/string/array convention.
type LogFilter struct {
	FromBlock string        `json:"fromBlock,omitempty"`
	ToBlock   string        `json:"toBlock,omitempty"`
	Address   interface{}   `json:"address,omitempty"`
	Topics    []interface{} `json:"topics,omitempty"`
	BlockHash string        `json:"blockHash,omitempty"`
}

// FeeHistory is the eth_feeHistory result
type FeeHistory struct {
	OldestBlock   string     `json:"oldestBlock"`
	BaseFeePerGas []string   `json:"baseFeePerGas"`
	GasUsedRatio  []float64  `json:"gasUsedRatio"`
	Reward        [][]string `json:"reward,omitempty"`
}

// SyncStatus is the eth_syncing result when the endpoint is catching up
type SyncStatus struct {
	StartingBlock string `json:"startingBlock"`
	CurrentBlock  string `json:"currentBlock"`
	HighestBlock  string `json:"highestBlock"`
}
