package hexutil

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// ParseUint64 parses a hex quantity (with or without 0x prefix) to uint64
func ParseUint64(s string) (uint64, error) {
	trimmed := strings.TrimPrefix(s, "0x")
	if trimmed == "" {
		return 0, fmt.Errorf("empty hex quantity %q", s)
	}
	v, err := strconv.ParseUint(trimmed, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hex quantity %q: %w", s, err)
	}
	return v, nil
}

// ParseBig parses a hex quantity of arbitrary size to a big.Int
func ParseBig(s string) (*big.Int, error) {
	trimmed := strings.TrimPrefix(s, "0x")
	if trimmed == "" {
		return nil, fmt.Errorf("empty hex quantity %q", s)
	}
	v, ok := new(big.Int).SetString(trimmed, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex quantity %q", s)
	}
	return v, nil
}

// FormatUint64 formats a uint64 as a minimal 0x-prefixed hex quantity
// (no leading zeros, so ParseUint64/FormatUint64 round-trips normalize)
func FormatUint64(v uint64) string {
	return "0x" + strconv.FormatUint(v, 16)
}

// FormatBig formats a big.Int as a minimal 0x-prefixed hex quantity.
// A nil value formats as 0x0.
func FormatBig(v *big.Int) string {
	if v == nil || v.Sign() == 0 {
		return "0x0"
	}
	return "0x" + v.Text(16)
}

// IsHex returns true if s consists only of hex digits
func IsHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// IsHexData returns true if s is a 0x-prefixed hex payload. The empty
// payload "0x" counts; callers that need bytes check the length.
func IsHexData(s string) bool {
	return strings.HasPrefix(s, "0x") && IsHex(s[2:])
}
