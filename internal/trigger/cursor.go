package trigger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Compare orders two cursor values. Identifiers that parse as numbers
// compare numerically so "10" sorts after "9"; everything else falls
// back to a plain string comparison.
func Compare(a, b string) int {
	da, errA := decimal.NewFromString(a)
	db, errB := decimal.NewFromString(b)
	if errA == nil && errB == nil {
		return da.Cmp(db)
	}
	return strings.Compare(a, b)
}

// maxCursor returns the largest of the given cursor values, or the
// current value when the list is empty
func maxCursor(current string, values []string) string {
	max := current
	for _, v := range values {
		if v == "" {
			continue
		}
		if max == "" || Compare(v, max) > 0 {
			max = v
		}
	}
	return max
}
