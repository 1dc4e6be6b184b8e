// Package abi encodes call data and decodes return data for the fixed
// ERC-20/721 surface this node talks to. Selectors come from a closed
// lookup table of precomputed 4-byte values; this is deliberately not a
// general ABI codec and dynamic parameter types are not supported.
package abi

import (
	"fmt"
	"sort"
	"strings"
)

// selectors maps canonical function signatures to their precomputed
// 4-byte selectors (0x-prefixed).
var selectors = map[string]string{
	// ERC-20
	"name()":                                "0x06fdde03",
	"symbol()":                              "0x95d89b41",
	"decimals()":                            "0x313ce567",
	"totalSupply()":                         "0x18160ddd",
	"balanceOf(address)":                    "0x70a08231",
	"transfer(address,uint256)":             "0xa9059cbb",
	"approve(address,uint256)":              "0x095ea7b3",
	"allowance(address,address)":            "0xdd62ed3e",
	"transferFrom(address,address,uint256)": "0x23b872dd",

	// ERC-721
	"ownerOf(uint256)":                          "0x6352211e",
	"tokenURI(uint256)":                         "0xc87b56dd",
	"safeTransferFrom(address,address,uint256)": "0x42842e0e",
}

// shorthand maps bare method names to their canonical signature
var shorthand = map[string]string{
	"name":             "name()",
	"symbol":           "symbol()",
	"decimals":         "decimals()",
	"totalSupply":      "totalSupply()",
	"balanceOf":        "balanceOf(address)",
	"transfer":         "transfer(address,uint256)",
	"approve":          "approve(address,uint256)",
	"allowance":        "allowance(address,address)",
	"transferFrom":     "transferFrom(address,address,uint256)",
	"ownerOf":          "ownerOf(uint256)",
	"tokenURI":         "tokenURI(uint256)",
	"safeTransferFrom": "safeTransferFrom(address,address,uint256)",
}

// ResolveSignature expands a shorthand method name to its canonical
// signature. Full signatures pass through unchanged.
func ResolveSignature(sigOrName string) (string, error) {
	sigOrName = strings.TrimSpace(sigOrName)
	if sig, ok := shorthand[sigOrName]; ok {
		return sig, nil
	}
	if _, ok := selectors[sigOrName]; ok {
		return sigOrName, nil
	}
	return "", fmt.Errorf("unknown function %q (supported: %s)", sigOrName, strings.Join(Signatures(), ", "))
}

// Selector returns the precomputed 4-byte selector for a signature or
// shorthand method name.
func Selector(sigOrName string) (string, error) {
	sig, err := ResolveSignature(sigOrName)
	if err != nil {
		return "", err
	}
	return selectors[sig], nil
}

// Signatures returns the supported canonical signatures, sorted
func Signatures() []string {
	out := make([]string, 0, len(selectors))
	for sig := range selectors {
		out = append(out, sig)
	}
	sort.Strings(out)
	return out
}

// Selectors returns a copy of the signature -> selector table
func Selectors() map[string]string {
	out := make(map[string]string, len(selectors))
	for sig, sel := range selectors {
		out[sig] = sel
	}
	return out
}

// argTypes parses the parameter type list out of a canonical signature
func argTypes(sig string) ([]string, error) {
	open := strings.IndexByte(sig, '(')
	close := strings.LastIndexByte(sig, ')')
	if open < 0 || close < open {
		return nil, fmt.Errorf("malformed signature %q", sig)
	}
	inner := sig[open+1 : close]
	if inner == "" {
		return nil, nil
	}
	return strings.Split(inner, ","), nil
}
