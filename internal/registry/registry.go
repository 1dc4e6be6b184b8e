// Package registry resolves network names and token symbols to concrete
// endpoints and contract addresses. The two Chiliz networks, a bare
// "custom" entry for credential-supplied endpoints, and the club list
// are built in; config entries add networks, override built-in URLs,
// supply the token table, and extend the clubs.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"fanlink/internal/config"
	"fanlink/internal/hexutil"
)

// Network holds everything needed to talk to one chain
type Network struct {
	Name           string `json:"name"`
	ChainID        uint64 `json:"chainId"`
	RPCURL         string `json:"rpcUrl"`
	WSURL          string `json:"wsUrl,omitempty"`
	ExplorerURL    string `json:"explorerUrl,omitempty"`
	FanAPIURL      string `json:"fanApiUrl,omitempty"`
	NativeSymbol   string `json:"nativeSymbol"`
	NativeDecimals int32  `json:"nativeDecimals"`
}

// Token is a registered token contract
type Token struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name,omitempty"`
	Address  string `json:"address"`
	Decimals int32  `json:"decimals"`
	Network  string `json:"network,omitempty"`
	Standard string `json:"standard"`

	// Registered is false when the token was referenced by raw address
	// and carries no configured metadata
	Registered bool `json:"-"`
}

const (
	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"
	NetworkCustom  = "custom"

	ChainIDMainnet = 88888
	ChainIDTestnet = 88882

	StandardERC20  = "erc20"
	StandardERC721 = "erc721"
)

// builtinClubs lists the club identifiers the fan engagement API is
// known to serve. Config entries extend the list.
func builtinClubs() []string {
	return []string{
		"acm",
		"afc",
		"asr",
		"atm",
		"bar",
		"city",
		"gal",
		"inter",
		"juv",
		"nap",
		"og",
		"psg",
	}
}

func builtinNetworks() map[string]Network {
	return map[string]Network{
		NetworkMainnet: {
			Name:           NetworkMainnet,
			ChainID:        ChainIDMainnet,
			RPCURL:         "https://rpc.ankr.com/chiliz",
			ExplorerURL:    "https://scan.chiliz.com/api",
			NativeSymbol:   "CHZ",
			NativeDecimals: 18,
		},
		NetworkTestnet: {
			Name:           NetworkTestnet,
			ChainID:        ChainIDTestnet,
			RPCURL:         "https://spicy-rpc.chiliz.com",
			WSURL:          "wss://spicy-rpc-ws.chiliz.com",
			ExplorerURL:    "https://spicy-explorer.chiliz.com/api",
			NativeSymbol:   "CHZ",
			NativeDecimals: 18,
		},
		// custom carries no endpoints of its own, the credentials must
		// supply customRpcUrl. Chain ID 0 means unknown.
		NetworkCustom: {
			Name:           NetworkCustom,
			NativeSymbol:   "CHZ",
			NativeDecimals: 18,
		},
	}
}

// Registry resolves networks, tokens and clubs
type Registry struct {
	networks map[string]Network
	tokens   []Token
	clubs    []string
}

// New builds a Registry from configuration
func New(cfg *config.Config) *Registry {
	networks := builtinNetworks()
	for _, nc := range cfg.Networks {
		name := strings.ToLower(nc.Name)
		network := Network{
			Name:           name,
			ChainID:        nc.ChainID,
			RPCURL:         nc.RPCURL,
			WSURL:          nc.WSURL,
			ExplorerURL:    nc.ExplorerURL,
			FanAPIURL:      nc.FanAPIURL,
			NativeSymbol:   nc.NativeSymbol,
			NativeDecimals: nc.NativeDecimals,
		}
		if builtin, ok := networks[name]; ok {
			network = mergeNetwork(builtin, network)
		}
		networks[name] = network
	}

	tokens := make([]Token, 0, len(cfg.Tokens))
	for _, tc := range cfg.Tokens {
		tokens = append(tokens, Token{
			Symbol:     tc.Symbol,
			Name:       tc.Name,
			Address:    hexutil.NormalizeAddress(tc.Address),
			Decimals:   tc.Decimals,
			Network:    strings.ToLower(tc.Network),
			Standard:   tc.Standard,
			Registered: true,
		})
	}

	seen := make(map[string]bool)
	clubs := make([]string, 0, len(cfg.Clubs)+12)
	for _, club := range append(builtinClubs(), cfg.Clubs...) {
		club = strings.ToLower(strings.TrimSpace(club))
		if club == "" || seen[club] {
			continue
		}
		seen[club] = true
		clubs = append(clubs, club)
	}
	sort.Strings(clubs)

	return &Registry{networks: networks, tokens: tokens, clubs: clubs}
}

// mergeNetwork overlays non-empty override fields on a built-in network
func mergeNetwork(base, override Network) Network {
	merged := base
	if override.ChainID != 0 {
		merged.ChainID = override.ChainID
	}
	if override.RPCURL != "" {
		merged.RPCURL = override.RPCURL
	}
	if override.WSURL != "" {
		merged.WSURL = override.WSURL
	}
	if override.ExplorerURL != "" {
		merged.ExplorerURL = override.ExplorerURL
	}
	if override.FanAPIURL != "" {
		merged.FanAPIURL = override.FanAPIURL
	}
	if override.NativeSymbol != "" {
		merged.NativeSymbol = override.NativeSymbol
	}
	if override.NativeDecimals != 0 {
		merged.NativeDecimals = override.NativeDecimals
	}
	return merged
}

// Network resolves a network by name
func (r *Registry) Network(name string) (Network, error) {
	network, ok := r.networks[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Network{}, fmt.Errorf("unknown network %q (known: %s)", name, strings.Join(r.NetworkNames(), ", "))
	}
	return network, nil
}

// NetworkNames returns the known network names, sorted
func (r *Registry) NetworkNames() []string {
	names := make([]string, 0, len(r.networks))
	for name := range r.networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Token resolves a symbol or raw address for the given network. A
// registered symbol returns its configured metadata; a valid address
// passes through with metadata marked unknown; anything else errors.
func (r *Registry) Token(network, symbolOrAddress string) (Token, error) {
	input := strings.TrimSpace(symbolOrAddress)
	if input == "" {
		return Token{}, fmt.Errorf("token symbol or address is required")
	}

	if hexutil.IsValidAddress(input) {
		normalized := hexutil.NormalizeAddress(input)
		for _, token := range r.tokens {
			if token.Address == normalized && tokenOnNetwork(token, network) {
				return token, nil
			}
		}
		return Token{
			Address:  normalized,
			Decimals: -1,
			Standard: StandardERC20,
		}, nil
	}

	lower := strings.ToLower(input)
	for _, token := range r.tokens {
		if strings.ToLower(token.Symbol) == lower && tokenOnNetwork(token, network) {
			return token, nil
		}
	}
	return Token{}, fmt.Errorf("unknown token %q on network %q", symbolOrAddress, network)
}

// TokensFor returns the registered tokens available on a network
func (r *Registry) TokensFor(network string) []Token {
	out := make([]Token, 0, len(r.tokens))
	for _, token := range r.tokens {
		if tokenOnNetwork(token, network) {
			out = append(out, token)
		}
	}
	return out
}

// tokenOnNetwork: tokens registered without a network are available on all
func tokenOnNetwork(token Token, network string) bool {
	return token.Network == "" || token.Network == strings.ToLower(network)
}

// Clubs returns the known club identifiers, sorted
func (r *Registry) Clubs() []string {
	out := make([]string, len(r.clubs))
	copy(out, r.clubs)
	return out
}
