package node

import "strings"

// Descriptor is the machine-readable catalog the host uses to render
// the node: every resource, operation, and parameter, plus the
// credential fields and the trigger events.
type Descriptor struct {
	Name        string            `json:"name"`
	DisplayName string            `json:"displayName"`
	Description string            `json:"description"`
	Version     int               `json:"version"`
	Networks    []string          `json:"networks"`
	Resources   []Resource        `json:"resources"`
	Credentials []CredentialField `json:"credentials"`
	Events      []TriggerEvent    `json:"events"`
}

type Resource struct {
	Name        string      `json:"name"`
	DisplayName string      `json:"displayName"`
	Operations  []Operation `json:"operations"`
}

type Operation struct {
	Name        string     `json:"name"`
	DisplayName string     `json:"displayName"`
	Description string     `json:"description,omitempty"`
	Properties  []Property `json:"properties,omitempty"`
}

type Property struct {
	Name        string      `json:"name"`
	DisplayName string      `json:"displayName"`
	Type        string      `json:"type"`
	Required    bool        `json:"required,omitempty"`
	Default     interface{} `json:"default,omitempty"`
	Description string      `json:"description,omitempty"`
	Options     []Option    `json:"options,omitempty"`
}

type Option struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type CredentialField struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Type        string `json:"type"`
	Required    bool   `json:"required,omitempty"`
	Secret      bool   `json:"secret,omitempty"`
	Description string `json:"description,omitempty"`
}

type TriggerEvent struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description,omitempty"`
}

// Descriptor builds the catalog. Network and club options reflect the
// running configuration, everything else is static.
func (n *Node) Descriptor() *Descriptor {
	clubs := clubOptions(n.registry.Clubs())
	return &Descriptor{
		Name:        "fanlink",
		DisplayName: "Chiliz Fan Tokens",
		Description: "Fan tokens, polls and rewards on the Chiliz chain",
		Version:     1,
		Networks:    n.registry.NetworkNames(),
		Resources: []Resource{
			fanTokenResource(),
			accountResource(),
			transactionResource(),
			contractResource(),
			pollResource(clubs),
			rewardResource(clubs),
			nftResource(),
			networkResource(),
			eventResource(),
			utilityResource(),
		},
		Credentials: credentialFields(),
		Events: []TriggerEvent{
			{Name: "newBlock", DisplayName: "New Block", Description: "Fires for every new block on the selected network"},
			{Name: "newPoll", DisplayName: "New Poll", Description: "Fires when the partner API publishes a poll"},
			{Name: "newReward", DisplayName: "New Reward", Description: "Fires when the partner API publishes a reward"},
			{Name: "priceChange", DisplayName: "Price Change", Description: "Fires when a watched token price moves (placeholder until a price provider is configured)"},
		},
	}
}

func credentialFields() []CredentialField {
	return []CredentialField{
		{Name: "network", DisplayName: "Network", Type: "options", Required: true, Description: "Chain to operate on"},
		{Name: "customRpcUrl", DisplayName: "Custom RPC URL", Type: "string", Description: "Overrides the network's JSON-RPC endpoint, required for the custom network"},
		{Name: "customWsUrl", DisplayName: "Custom WebSocket URL", Type: "string", Description: "Overrides the network's WebSocket endpoint"},
		{Name: "preferWs", DisplayName: "Prefer WebSocket", Type: "boolean", Description: "Route requests over the WebSocket connection when available"},
		{Name: "signingKey", DisplayName: "Signing Key", Type: "string", Secret: true, Description: "Reserved for external signing integrations; transactions are never signed by this node"},
		{Name: "explorerApiKey", DisplayName: "Explorer API Key", Type: "string", Secret: true, Description: "Raises the explorer API rate limit"},
		{Name: "partnerApiKey", DisplayName: "Partner API Key", Type: "string", Secret: true, Description: "Bearer token for poll and reward operations"},
		{Name: "partnerBaseUrl", DisplayName: "Partner API Base URL", Type: "string", Description: "Overrides the fan engagement API endpoint"},
	}
}

func prop(name, display, typ string, required bool, desc string) Property {
	return Property{Name: name, DisplayName: display, Type: typ, Required: required, Description: desc}
}

func clubOptions(clubs []string) []Option {
	options := make([]Option, 0, len(clubs))
	for _, club := range clubs {
		options = append(options, Option{Name: strings.ToUpper(club), Value: club})
	}
	return options
}

func clubProp(clubs []Option) Property {
	p := prop("clubId", "Club", "options", false, "Restrict to one club")
	p.Options = clubs
	return p
}

func tokenProp() Property {
	return prop("token", "Token", "string", true, "Token symbol or contract address")
}

func addressProp(desc string) Property {
	return prop("address", "Address", "string", true, desc)
}

func blockTagProp() Property {
	p := prop("blockTag", "Block", "string", false, "Block number, hex tag, or one of latest, pending, earliest, safe, finalized")
	p.Default = "latest"
	return p
}

func pagingProps() []Property {
	return []Property{
		prop("startBlock", "Start Block", "number", false, ""),
		prop("endBlock", "End Block", "number", false, ""),
		prop("page", "Page", "number", false, ""),
		prop("offset", "Page Size", "number", false, ""),
		{Name: "sort", DisplayName: "Sort", Type: "options", Options: []Option{
			{Name: "Ascending", Value: "asc"},
			{Name: "Descending", Value: "desc"},
		}},
	}
}

func fanTokenResource() Resource {
	return Resource{
		Name:        "fanToken",
		DisplayName: "Fan Token",
		Operations: []Operation{
			{Name: "list", DisplayName: "List Registered Tokens", Description: "Tokens configured for the selected network"},
			{Name: "getInfo", DisplayName: "Get Info", Description: "Name, symbol, decimals and total supply read from the contract",
				Properties: []Property{tokenProp()}},
			{Name: "getBalance", DisplayName: "Get Balance",
				Properties: []Property{tokenProp(), addressProp("Holder address"), blockTagProp()}},
			{Name: "getTotalSupply", DisplayName: "Get Total Supply",
				Properties: []Property{tokenProp()}},
			{Name: "getHolders", DisplayName: "Get Holders", Description: "Top holders from the explorer API",
				Properties: []Property{tokenProp(), prop("page", "Page", "number", false, ""), prop("offset", "Page Size", "number", false, "")}},
			{Name: "getPrice", DisplayName: "Get Price", Description: "Placeholder until a market data provider is configured",
				Properties: []Property{tokenProp(), prop("currency", "Currency", "string", false, "Quote currency, defaults to USD")}},
			{Name: "transfer", DisplayName: "Transfer", Description: "Builds an unsigned transfer payload for external signing",
				Properties: []Property{tokenProp(), prop("to", "Recipient", "string", true, ""), prop("amount", "Amount", "string", true, "Amount in token units")}},
		},
	}
}

func accountResource() Resource {
	return Resource{
		Name:        "account",
		DisplayName: "Account",
		Operations: []Operation{
			{Name: "getBalance", DisplayName: "Get Native Balance",
				Properties: []Property{addressProp("Account address"), blockTagProp()}},
			{Name: "getTransactionCount", DisplayName: "Get Transaction Count",
				Properties: []Property{addressProp("Account address"), blockTagProp()}},
			{Name: "getTransactions", DisplayName: "Get Transactions", Description: "Transaction history from the explorer API",
				Properties: append([]Property{addressProp("Account address")}, pagingProps()...)},
			{Name: "getTokenTransfers", DisplayName: "Get Token Transfers", Description: "ERC-20 transfer history from the explorer API",
				Properties: append([]Property{addressProp("Account address"), prop("token", "Token", "string", false, "Restrict to one token symbol or contract")}, pagingProps()...)},
		},
	}
}

func transactionResource() Resource {
	return Resource{
		Name:        "transaction",
		DisplayName: "Transaction",
		Operations: []Operation{
			{Name: "get", DisplayName: "Get Transaction",
				Properties: []Property{prop("hash", "Transaction Hash", "string", true, "")}},
			{Name: "getReceipt", DisplayName: "Get Receipt",
				Properties: []Property{prop("hash", "Transaction Hash", "string", true, "")}},
			{Name: "estimateGas", DisplayName: "Estimate Gas",
				Properties: []Property{
					prop("to", "Recipient", "string", true, ""),
					prop("from", "Sender", "string", false, ""),
					prop("value", "Value", "string", false, "Amount in the native unit"),
					prop("data", "Call Data", "string", false, "0x-prefixed payload"),
				}},
			{Name: "sendRaw", DisplayName: "Send Raw Transaction", Description: "Broadcasts an externally signed transaction",
				Properties: []Property{prop("signedData", "Signed Transaction", "string", true, "0x-prefixed RLP payload")}},
			{Name: "send", DisplayName: "Send (Unsigned)", Description: "Builds an unsigned native transfer payload for external signing",
				Properties: []Property{
					prop("from", "Sender", "string", true, ""),
					prop("to", "Recipient", "string", true, ""),
					prop("value", "Value", "string", false, "Amount in the native unit"),
					prop("data", "Call Data", "string", false, ""),
				}},
		},
	}
}

func contractResource() Resource {
	return Resource{
		Name:        "contract",
		DisplayName: "Contract",
		Operations: []Operation{
			{Name: "call", DisplayName: "Call", Description: "Read-only call using the built-in function table or raw call data",
				Properties: []Property{
					addressProp("Contract address"),
					prop("function", "Function", "string", false, "Function name or signature from the built-in table"),
					prop("args", "Arguments", "json", false, "Positional argument list"),
					prop("data", "Call Data", "string", false, "Raw 0x payload, overrides function and args"),
					prop("returns", "Decode As", "string", false, "uint256, uint8, string, address or bool"),
					blockTagProp(),
				}},
			{Name: "getCode", DisplayName: "Get Code",
				Properties: []Property{addressProp("Contract address"), blockTagProp()}},
			{Name: "getAbi", DisplayName: "Get ABI", Description: "Verified ABI from the explorer API",
				Properties: []Property{addressProp("Contract address")}},
			{Name: "getSource", DisplayName: "Get Source", Description: "Verified source from the explorer API",
				Properties: []Property{addressProp("Contract address")}},
		},
	}
}

func pollResource(clubs []Option) Resource {
	return Resource{
		Name:        "poll",
		DisplayName: "Poll",
		Operations: []Operation{
			{Name: "getAll", DisplayName: "Get All",
				Properties: []Property{
					prop("status", "Status", "string", false, "Filter by poll status"),
					clubProp(clubs),
					prop("page", "Page", "number", false, ""),
					prop("limit", "Limit", "number", false, ""),
				}},
			{Name: "get", DisplayName: "Get Poll",
				Properties: []Property{prop("pollId", "Poll ID", "string", true, "")}},
			{Name: "getResults", DisplayName: "Get Results", Description: "Vote tally with a percentage per option",
				Properties: []Property{prop("pollId", "Poll ID", "string", true, "")}},
			{Name: "vote", DisplayName: "Vote",
				Properties: []Property{
					prop("pollId", "Poll ID", "string", true, ""),
					prop("optionId", "Option ID", "string", true, ""),
					prop("tokenSymbol", "Token Symbol", "string", false, "Fan token backing the vote, when the partner requires one"),
				}},
		},
	}
}

func rewardResource(clubs []Option) Resource {
	return Resource{
		Name:        "reward",
		DisplayName: "Reward",
		Operations: []Operation{
			{Name: "getAll", DisplayName: "Get All",
				Properties: []Property{
					prop("status", "Status", "string", false, "Filter by reward status"),
					clubProp(clubs),
					prop("page", "Page", "number", false, ""),
					prop("limit", "Limit", "number", false, ""),
				}},
			{Name: "get", DisplayName: "Get Reward",
				Properties: []Property{prop("rewardId", "Reward ID", "string", true, "")}},
			{Name: "claim", DisplayName: "Claim",
				Properties: []Property{prop("rewardId", "Reward ID", "string", true, "")}},
		},
	}
}

func nftResource() Resource {
	return Resource{
		Name:        "nft",
		DisplayName: "NFT",
		Operations: []Operation{
			{Name: "getBalance", DisplayName: "Get Balance",
				Properties: []Property{tokenProp(), addressProp("Owner address")}},
			{Name: "getOwner", DisplayName: "Get Owner",
				Properties: []Property{tokenProp(), prop("tokenId", "Token ID", "string", true, "")}},
			{Name: "getTokenUri", DisplayName: "Get Token URI",
				Properties: []Property{tokenProp(), prop("tokenId", "Token ID", "string", true, "")}},
			{Name: "transfer", DisplayName: "Transfer", Description: "Builds an unsigned safeTransferFrom payload for external signing",
				Properties: []Property{
					tokenProp(),
					prop("from", "Current Owner", "string", true, ""),
					prop("to", "Recipient", "string", true, ""),
					prop("tokenId", "Token ID", "string", true, ""),
				}},
		},
	}
}

func networkResource() Resource {
	return Resource{
		Name:        "network",
		DisplayName: "Network",
		Operations: []Operation{
			{Name: "getStatus", DisplayName: "Get Status", Description: "Chain ID, head block and sync state"},
			{Name: "getGasPrice", DisplayName: "Get Gas Price"},
			{Name: "getFeeHistory", DisplayName: "Get Fee History",
				Properties: []Property{
					prop("blockCount", "Block Count", "number", false, "1 to 1024, defaults to 10"),
					prop("newestBlock", "Newest Block", "string", false, ""),
				}},
			{Name: "getBlock", DisplayName: "Get Block",
				Properties: []Property{
					prop("block", "Block", "string", false, "Block number, tag, or 32-byte hash"),
					prop("includeTransactions", "Include Transactions", "boolean", false, "Return full transaction objects instead of hashes"),
				}},
		},
	}
}

func eventResource() Resource {
	return Resource{
		Name:        "event",
		DisplayName: "Event",
		Operations: []Operation{
			{Name: "getLogs", DisplayName: "Get Logs",
				Properties: []Property{
					prop("address", "Address", "json", false, "Contract address or list of addresses"),
					prop("topics", "Topics", "json", false, "Positional topic filters"),
					prop("fromBlock", "From Block", "string", false, ""),
					prop("toBlock", "To Block", "string", false, ""),
					prop("blockHash", "Block Hash", "string", false, "Mutually exclusive with the block range"),
				}},
			{Name: "createFilter", DisplayName: "Create Filter",
				Properties: []Property{
					prop("address", "Address", "json", false, ""),
					prop("topics", "Topics", "json", false, ""),
					prop("fromBlock", "From Block", "string", false, ""),
					prop("toBlock", "To Block", "string", false, ""),
				}},
			{Name: "getFilterChanges", DisplayName: "Get Filter Changes",
				Properties: []Property{prop("filterId", "Filter ID", "string", true, "")}},
		},
	}
}

func utilityResource() Resource {
	return Resource{
		Name:        "utility",
		DisplayName: "Utility",
		Operations: []Operation{
			{Name: "validateAddress", DisplayName: "Validate Address",
				Properties: []Property{prop("address", "Address", "string", true, "")}},
			{Name: "checksumAddress", DisplayName: "Checksum Address",
				Properties: []Property{prop("address", "Address", "string", true, "")}},
			{Name: "convertUnits", DisplayName: "Convert Units",
				Properties: []Property{
					prop("amount", "Amount", "string", true, ""),
					prop("from", "From Unit", "string", false, "wei, gwei, chz or token"),
					prop("to", "To Unit", "string", false, "wei, gwei, chz or token"),
					prop("decimals", "Decimals", "number", false, "Token decimals, defaults to the native 18"),
				}},
			{Name: "encodeCallData", DisplayName: "Encode Call Data",
				Properties: []Property{
					prop("function", "Function", "string", true, "Function name or signature from the built-in table"),
					prop("args", "Arguments", "json", false, ""),
				}},
			{Name: "listSelectors", DisplayName: "List Selectors", Description: "The built-in function selector table"},
		},
	}
}
