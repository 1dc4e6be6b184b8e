package hexutil

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// IsValidAddress reports whether s is a 0x-prefixed 20-byte hex address
// (exactly 42 characters). Case is not checked.
func IsValidAddress(s string) bool {
	if len(s) != 42 {
		return false
	}
	if !strings.HasPrefix(s, "0x") {
		return false
	}
	return IsHex(s[2:])
}

// IsValidTxHash reports whether s is a 0x-prefixed 32-byte hex hash
// (exactly 66 characters)
func IsValidTxHash(s string) bool {
	if len(s) != 66 {
		return false
	}
	if !strings.HasPrefix(s, "0x") {
		return false
	}
	return IsHex(s[2:])
}

// NormalizeAddress lowercases an address and ensures the 0x prefix.
// Applying it twice yields the same result.
func NormalizeAddress(s string) string {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	return "0x" + strings.ToLower(s)
}

// ChecksumAddress returns the EIP-55 mixed-case form of an address:
// each hex letter is uppercased when the matching nibble of
// keccak256(lowercase address without prefix) is >= 8.
func ChecksumAddress(addr string) (string, error) {
	if !IsValidAddress(addr) {
		return "", fmt.Errorf("invalid address %q", addr)
	}

	lower := strings.ToLower(addr[2:])
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(lower))
	sum := hasher.Sum(nil)

	out := make([]byte, 40)
	for i := 0; i < 40; i++ {
		c := lower[i]
		if c >= 'a' && c <= 'f' {
			nibble := sum[i/2]
			if i%2 == 0 {
				nibble >>= 4
			} else {
				nibble &= 0x0f
			}
			if nibble >= 8 {
				c -= 'a' - 'A'
			}
		}
		out[i] = c
	}

	return "0x" + string(out), nil
}
