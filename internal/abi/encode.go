package abi

import (
	"fmt"
	"math/big"
	"strings"

	"fanlink/internal/hexutil"
)

const wordHexLen = 64

// EncodeCall builds 0x-prefixed call data for one of the supported
// functions: the 4-byte selector followed by each argument left-padded
// to a 32-byte word. Addresses are lowercased; integer arguments accept
// decimal or 0x-hex form.
func EncodeCall(sigOrName string, args ...string) (string, error) {
	sig, err := ResolveSignature(sigOrName)
	if err != nil {
		return "", err
	}
	types, err := argTypes(sig)
	if err != nil {
		return "", err
	}
	if len(args) != len(types) {
		return "", fmt.Errorf("%s takes %d argument(s), got %d", sig, len(types), len(args))
	}

	var b strings.Builder
	b.WriteString(selectors[sig])
	for i, typ := range types {
		word, err := encodeWord(typ, args[i])
		if err != nil {
			return "", fmt.Errorf("argument %d of %s: %w", i+1, sig, err)
		}
		b.WriteString(word)
	}
	return b.String(), nil
}

func encodeWord(typ, value string) (string, error) {
	value = strings.TrimSpace(value)
	switch typ {
	case "address":
		if !hexutil.IsValidAddress(value) {
			return "", fmt.Errorf("invalid address %q", value)
		}
		return padLeft(strings.ToLower(strings.TrimPrefix(value, "0x"))), nil
	case "uint256", "uint128", "uint64", "uint32", "uint8", "uint":
		n, err := parseUint(value)
		if err != nil {
			return "", err
		}
		hex := n.Text(16)
		if len(hex) > wordHexLen {
			return "", fmt.Errorf("value %s overflows a 32-byte word", value)
		}
		return padLeft(hex), nil
	default:
		return "", fmt.Errorf("unsupported parameter type %q", typ)
	}
}

func parseUint(value string) (*big.Int, error) {
	var n *big.Int
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		parsed, err := hexutil.ParseBig("0x" + value[2:])
		if err != nil {
			return nil, err
		}
		n = parsed
	} else {
		parsed, ok := new(big.Int).SetString(value, 10)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", value)
		}
		n = parsed
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("negative value %q", value)
	}
	return n, nil
}

func padLeft(hex string) string {
	if len(hex) >= wordHexLen {
		return hex[len(hex)-wordHexLen:]
	}
	return strings.Repeat("0", wordHexLen-len(hex)) + hex
}
