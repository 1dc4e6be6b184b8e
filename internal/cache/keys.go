package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Key builds a namespaced cache key. Parts are lowercased so that
// differently-cased addresses and hashes land on the same entry; parts
// longer than a hash are digested to keep keys short.
func Key(parts ...string) string {
	normalized := make([]string, len(parts))
	for i, part := range parts {
		part = strings.ToLower(strings.TrimSpace(part))
		if len(part) > 80 {
			sum := sha256.Sum256([]byte(part))
			part = hex.EncodeToString(sum[:8])
		}
		normalized[i] = part
	}
	return strings.Join(normalized, ":")
}

// TokenMetaKey is the key for cached ERC-20 metadata of a contract
func TokenMetaKey(chainID uint64, address string) string {
	return Key("token", strconv.FormatUint(chainID, 10), address, "meta")
}

// AbiKey is the key for a cached verified contract ABI
func AbiKey(chainID uint64, address string) string {
	return Key("abi", strconv.FormatUint(chainID, 10), address)
}

// SourceKey is the key for cached verified contract source
func SourceKey(chainID uint64, address string) string {
	return Key("source", strconv.FormatUint(chainID, 10), address)
}

// TxKey is the key for a mined transaction body
func TxKey(chainID uint64, hash string) string {
	return Key("tx", strconv.FormatUint(chainID, 10), hash)
}

// ReceiptKey is the key for a mined transaction receipt
func ReceiptKey(chainID uint64, hash string) string {
	return Key("receipt", strconv.FormatUint(chainID, 10), hash)
}
