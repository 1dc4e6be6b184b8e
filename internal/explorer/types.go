package explorer

// Transaction is one entry of an account transaction listing. The
// explorer returns every numeric field as a decimal string.
type Transaction struct {
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash"`
	Nonce           string `json:"nonce"`
	BlockHash       string `json:"blockHash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	Gas             string `json:"gas"`
	GasPrice        string `json:"gasPrice"`
	GasUsed         string `json:"gasUsed"`
	IsError         string `json:"isError"`
	ReceiptStatus   string `json:"txreceipt_status"`
	Input           string `json:"input"`
	ContractAddress string `json:"contractAddress"`
	Confirmations   string `json:"confirmations"`
}

// TokenTransfer is one entry of a token transfer listing
type TokenTransfer struct {
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	ContractAddress string `json:"contractAddress"`
	TokenName       string `json:"tokenName"`
	TokenSymbol     string `json:"tokenSymbol"`
	TokenDecimal    string `json:"tokenDecimal"`
	Gas             string `json:"gas"`
	GasPrice        string `json:"gasPrice"`
	GasUsed         string `json:"gasUsed"`
	Confirmations   string `json:"confirmations"`
}

// ContractSource is the verified source listing for a contract
type ContractSource struct {
	SourceCode       string `json:"SourceCode"`
	ABI              string `json:"ABI"`
	ContractName     string `json:"ContractName"`
	CompilerVersion  string `json:"CompilerVersion"`
	OptimizationUsed string `json:"OptimizationUsed"`
	Runs             string `json:"Runs"`
	ConstructorArgs  string `json:"ConstructorArguments"`
	EVMVersion       string `json:"EVMVersion"`
	LicenseType      string `json:"LicenseType"`
	Proxy            string `json:"Proxy"`
	Implementation   string `json:"Implementation"`
}

// Holder is one entry of a token holder listing
type Holder struct {
	Address string `json:"TokenHolderAddress"`
	Value   string `json:"TokenHolderQuantity"`
}

// ListOpts control paging and block range of listing calls
type ListOpts struct {
	StartBlock uint64
	EndBlock   uint64
	Page       int
	Offset     int
	Sort       string // asc or desc
}
