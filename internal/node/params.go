package node

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"fanlink/internal/chain"
	"fanlink/internal/hexutil"
)

// Param accessors. Decoded JSON hands us map[string]interface{} with
// float64 numbers, so every accessor tolerates the handful of shapes
// workflow editors actually send.

func strParam(params map[string]interface{}, key string) (string, bool) {
	v, ok := params[key]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case float64:
		return formatFloat(t), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return fmt.Sprintf("%v", t), true
	}
}

func requireStr(params map[string]interface{}, key string) (string, error) {
	s, ok := strParam(params, key)
	if !ok || s == "" {
		return "", validationErr("missing required parameter %q", key)
	}
	return s, nil
}

func optStr(params map[string]interface{}, key, def string) string {
	if s, ok := strParam(params, key); ok && s != "" {
		return s
	}
	return def
}

func boolParam(params map[string]interface{}, key string) bool {
	v, ok := params[key]
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return err == nil && b
	default:
		return false
	}
}

func intParam(params map[string]interface{}, key string, def int64) (int64, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return def, nil
	}
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) {
			return 0, validationErr("parameter %q must be an integer", key)
		}
		return int64(t), nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return def, nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, validationErr("parameter %q is not a valid integer: %s", key, s)
		}
		return n, nil
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	default:
		return 0, validationErr("parameter %q must be a number", key)
	}
}

func requireAddress(params map[string]interface{}, key string) (string, error) {
	s, err := requireStr(params, key)
	if err != nil {
		return "", err
	}
	if !hexutil.IsValidAddress(s) {
		return "", validationErr("parameter %q is not a valid address: %s", key, s)
	}
	return hexutil.NormalizeAddress(s), nil
}

func requireTxHash(params map[string]interface{}, key string) (string, error) {
	s, err := requireStr(params, key)
	if err != nil {
		return "", err
	}
	if !hexutil.IsValidTxHash(s) {
		return "", validationErr("parameter %q is not a valid transaction hash: %s", key, s)
	}
	return strings.ToLower(s), nil
}

func blockTagParam(params map[string]interface{}, key string) (string, error) {
	s, _ := strParam(params, key)
	tag, err := chain.NormalizeBlockTag(s)
	if err != nil {
		return "", validationErr("parameter %q: %v", key, err)
	}
	return tag, nil
}

// formatFloat renders JSON numbers without an exponent so numeric IDs
// survive the float64 round trip.
func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
