package chain

import (
	"fmt"
	"strconv"
	"strings"

	"fanlink/internal/hexutil"
)

// namedBlockTags are the tags endpoints resolve dynamically
var namedBlockTags = map[string]bool{
	"latest":    true,
	"pending":   true,
	"earliest":  true,
	"safe":      true,
	"finalized": true,
}

// NormalizeBlockTag turns user input into a valid block parameter:
// named tags pass through lowercased, decimal numbers become 0x hex,
// 0x hex passes through. Empty input means latest.
func NormalizeBlockTag(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "latest", nil
	}

	lower := strings.ToLower(input)
	if namedBlockTags[lower] {
		return lower, nil
	}

	if strings.HasPrefix(lower, "0x") {
		if _, err := hexutil.ParseUint64(lower); err != nil {
			return "", fmt.Errorf("invalid block number %q", input)
		}
		return lower, nil
	}

	n, err := strconv.ParseUint(input, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid block number %q", input)
	}
	return hexutil.FormatUint64(n), nil
}

// IsNamedBlockTag reports whether the tag resolves to different blocks
// over time, which makes lookups against it uncacheable.
func IsNamedBlockTag(tag string) bool {
	return namedBlockTags[strings.ToLower(strings.TrimSpace(tag))]
}
