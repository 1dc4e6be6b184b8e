// Package units converts between Wei, Gwei and human token units with
// arbitrary-precision decimal arithmetic.
package units

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// NativeDecimals is the decimal count of the chain's native currency (CHZ)
const NativeDecimals = 18

// GweiDecimals is the decimal count of one Gwei relative to Wei
const GweiDecimals = 9

// FromWei converts a base-unit amount (decimal string) to human units
func FromWei(wei string, decimals int32) (string, error) {
	d, err := decimal.NewFromString(wei)
	if err != nil {
		return "", fmt.Errorf("invalid amount %q: %w", wei, err)
	}
	return d.Shift(-decimals).String(), nil
}

// FromWeiBig converts a base-unit big.Int to human units
func FromWeiBig(wei *big.Int, decimals int32) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, 0).Shift(-decimals).String()
}

// ToWei converts a human-unit amount (decimal string) to base units.
// Amounts with more fractional digits than the token carries are rejected
// rather than silently truncated.
func ToWei(amount string, decimals int32) (string, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "", fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if d.IsNegative() {
		return "", fmt.Errorf("negative amount %q", amount)
	}
	shifted := d.Shift(decimals)
	if !shifted.IsInteger() {
		return "", fmt.Errorf("amount %q has more than %d decimal places", amount, decimals)
	}
	return shifted.String(), nil
}

// WeiToGwei converts a Wei amount (decimal string) to Gwei
func WeiToGwei(wei string) (string, error) {
	return FromWei(wei, GweiDecimals)
}

// GweiToWei converts a Gwei amount (decimal string) to Wei
func GweiToWei(gwei string) (string, error) {
	return ToWei(gwei, GweiDecimals)
}

// unitDecimals maps a unit name to its decimal count relative to Wei.
// Token units take their decimals from the registry entry, passed explicitly.
func unitDecimals(unit string, tokenDecimals int32) (int32, error) {
	switch strings.ToLower(unit) {
	case "wei":
		return 0, nil
	case "gwei":
		return GweiDecimals, nil
	case "chz", "native", "ether":
		return NativeDecimals, nil
	case "token":
		return tokenDecimals, nil
	default:
		return 0, fmt.Errorf("unknown unit %q", unit)
	}
}

// Convert converts an amount between wei, gwei, chz and token units
func Convert(amount, fromUnit, toUnit string, tokenDecimals int32) (string, error) {
	from, err := unitDecimals(fromUnit, tokenDecimals)
	if err != nil {
		return "", err
	}
	to, err := unitDecimals(toUnit, tokenDecimals)
	if err != nil {
		return "", err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "", fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return d.Shift(from - to).String(), nil
}

// Percentage returns part/total as a percentage rounded to two decimal
// places. A zero total yields zero instead of dividing by zero.
func Percentage(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(part/total*10000) / 100
}
