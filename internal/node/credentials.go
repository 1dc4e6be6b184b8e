package node

import (
	"net/url"
	"strings"

	"fanlink/internal/chain"
	"fanlink/internal/registry"
)

// Credentials is what the host stores for one connection. Everything
// except the network name is optional; custom URLs override whatever
// the selected network ships with.
type Credentials struct {
	Network        string `json:"network"`
	CustomRPCURL   string `json:"customRpcUrl,omitempty"`
	CustomWSURL    string `json:"customWsUrl,omitempty"`
	PreferWS       bool   `json:"preferWs,omitempty"`
	SigningKey     string `json:"signingKey,omitempty"`
	ExplorerAPIKey string `json:"explorerApiKey,omitempty"`
	PartnerAPIKey  string `json:"partnerApiKey,omitempty"`
	PartnerBaseURL string `json:"partnerBaseUrl,omitempty"`
}

// target is a fully resolved set of endpoints for one request
type target struct {
	network     registry.Network
	endpoint    chain.Endpoint
	explorerURL string
	explorerKey string
	partnerURL  string
	partnerKey  string
	signingKey  string
}

// cacheable reports whether results may be cached. Cache keys are
// scoped by chain id, and an unknown id (the custom network) would
// collide across endpoints.
func (t *target) cacheable() bool {
	return t.network.ChainID != 0
}

// resolve merges the credentials over the named network and validates
// every URL before any client is built from them.
func (n *Node) resolve(creds Credentials) (*target, error) {
	name := creds.Network
	if name == "" {
		name = registry.NetworkMainnet
	}
	net, err := n.registry.Network(name)
	if err != nil {
		return nil, validationErr("%v", err)
	}

	t := &target{
		network:     net,
		explorerURL: net.ExplorerURL,
		explorerKey: creds.ExplorerAPIKey,
		partnerURL:  net.FanAPIURL,
		partnerKey:  creds.PartnerAPIKey,
		signingKey:  creds.SigningKey,
	}

	rpcURL := net.RPCURL
	if creds.CustomRPCURL != "" {
		if err := checkScheme(creds.CustomRPCURL, "http", "https"); err != nil {
			return nil, validationErr("customRpcUrl: %v", err)
		}
		rpcURL = creds.CustomRPCURL
	}
	if rpcURL == "" {
		return nil, validationErr("network %q has no RPC URL and no customRpcUrl was given", name)
	}

	wsURL := net.WSURL
	if creds.CustomWSURL != "" {
		if err := checkScheme(creds.CustomWSURL, "ws", "wss"); err != nil {
			return nil, validationErr("customWsUrl: %v", err)
		}
		wsURL = creds.CustomWSURL
	}
	if creds.PreferWS && wsURL == "" {
		return nil, validationErr("preferWs is set but network %q has no WebSocket URL", name)
	}

	if creds.PartnerBaseURL != "" {
		if err := checkScheme(creds.PartnerBaseURL, "http", "https"); err != nil {
			return nil, validationErr("partnerBaseUrl: %v", err)
		}
		t.partnerURL = creds.PartnerBaseURL
	}

	t.endpoint = chain.Endpoint{
		RPCURL:   rpcURL,
		WSURL:    wsURL,
		PreferWS: creds.PreferWS,
	}
	return t, nil
}

func checkScheme(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	for _, s := range schemes {
		if strings.EqualFold(u.Scheme, s) {
			return nil
		}
	}
	return validationErr("unsupported URL scheme %q (want %s)", u.Scheme, strings.Join(schemes, " or "))
}
