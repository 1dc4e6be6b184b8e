package abi

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"
)

const wordLen = 32

func decodeHex(data string) ([]byte, error) {
	data = strings.TrimPrefix(strings.TrimSpace(data), "0x")
	if data == "" {
		return nil, fmt.Errorf("empty return data")
	}
	raw, err := hex.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("invalid return data: %w", err)
	}
	return raw, nil
}

// DecodeUint256 reads a single unsigned integer return value.
func DecodeUint256(data string) (*big.Int, error) {
	raw, err := decodeHex(data)
	if err != nil {
		return nil, err
	}
	if len(raw) < wordLen {
		return nil, fmt.Errorf("return data too short: %d bytes", len(raw))
	}
	return new(big.Int).SetBytes(raw[:wordLen]), nil
}

// DecodeUint8 reads a single uint8 return value (decimals() and the like).
func DecodeUint8(data string) (uint8, error) {
	n, err := DecodeUint256(data)
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() || n.Uint64() > 255 {
		return 0, fmt.Errorf("value %s out of uint8 range", n)
	}
	return uint8(n.Uint64()), nil
}

// DecodeBool reads a single bool return value.
func DecodeBool(data string) (bool, error) {
	n, err := DecodeUint256(data)
	if err != nil {
		return false, err
	}
	return n.Sign() != 0, nil
}

// DecodeAddress reads a single address return value from the low 20
// bytes of the first word.
func DecodeAddress(data string) (string, error) {
	raw, err := decodeHex(data)
	if err != nil {
		return "", err
	}
	if len(raw) < wordLen {
		return "", fmt.Errorf("return data too short: %d bytes", len(raw))
	}
	return "0x" + hex.EncodeToString(raw[wordLen-20:wordLen]), nil
}

// DecodeString reads a single string return value. Standard encoding is
// offset word, length word, then the bytes; some older tokens return a
// bare bytes32 instead, so that layout is accepted as a fallback.
func DecodeString(data string) (string, error) {
	raw, err := decodeHex(data)
	if err != nil {
		return "", err
	}
	if s, ok := decodeDynamicString(raw); ok {
		return s, nil
	}
	if s, ok := decodeBytes32String(raw); ok {
		return s, nil
	}
	return "", fmt.Errorf("return data is not a decodable string")
}

func decodeDynamicString(raw []byte) (string, bool) {
	if len(raw) < 2*wordLen {
		return "", false
	}
	offset := new(big.Int).SetBytes(raw[:wordLen])
	if !offset.IsUint64() {
		return "", false
	}
	off := offset.Uint64()
	if off+wordLen > uint64(len(raw)) {
		return "", false
	}
	length := new(big.Int).SetBytes(raw[off : off+wordLen])
	if !length.IsUint64() {
		return "", false
	}
	n := length.Uint64()
	start := off + wordLen
	if start+n > uint64(len(raw)) {
		return "", false
	}
	s := string(raw[start : start+n])
	if !utf8.ValidString(s) {
		return "", false
	}
	return s, true
}

func decodeBytes32String(raw []byte) (string, bool) {
	if len(raw) != wordLen {
		return "", false
	}
	trimmed := strings.TrimRight(string(raw), "\x00")
	if trimmed == "" || !utf8.ValidString(trimmed) {
		return "", false
	}
	return trimmed, true
}
