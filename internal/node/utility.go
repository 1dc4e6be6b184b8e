package node

import (
	"context"
	"strings"

	"fanlink/internal/abi"
	"fanlink/internal/hexutil"
	"fanlink/internal/units"
)

// Utility operations are pure computations, so they never touch the
// resolved endpoints.
func (n *Node) execUtility(_ context.Context, t *target, op string, params map[string]interface{}) (*result, error) {
	switch op {
	case "validateAddress":
		input, err := requireStr(params, "address")
		if err != nil {
			return nil, err
		}
		out := map[string]interface{}{
			"input": input,
			"valid": false,
		}
		if !hexutil.IsValidAddress(input) {
			return okResult(out)
		}
		checksummed, err := hexutil.ChecksumAddress(input)
		if err != nil {
			return okResult(out)
		}
		out["valid"] = true
		out["normalized"] = hexutil.NormalizeAddress(input)
		out["checksummed"] = checksummed
		// Mixed-case input only passes when it already matches the
		// checksum form.
		hasUpper := strings.ContainsAny(input, "ABCDEF")
		hasLower := strings.ContainsAny(strings.TrimPrefix(input, "0x"), "abcdef")
		out["checksumValid"] = !hasUpper || !hasLower || input == checksummed
		return okResult(out)

	case "checksumAddress":
		input, err := requireAddress(params, "address")
		if err != nil {
			return nil, err
		}
		checksummed, err := hexutil.ChecksumAddress(input)
		if err != nil {
			return nil, validationErr("%v", err)
		}
		return okResult(map[string]interface{}{
			"address":     input,
			"checksummed": checksummed,
		})

	case "convertUnits":
		amount, err := requireStr(params, "amount")
		if err != nil {
			return nil, err
		}
		from := optStr(params, "from", "wei")
		to := optStr(params, "to", "token")
		decimals, err := intParam(params, "decimals", int64(t.network.NativeDecimals))
		if err != nil {
			return nil, err
		}
		if decimals < 0 || decimals > 36 {
			return nil, validationErr("parameter \"decimals\" must be between 0 and 36")
		}
		converted, err := units.Convert(amount, from, to, int32(decimals))
		if err != nil {
			return nil, validationErr("%v", err)
		}
		return okResult(map[string]interface{}{
			"amount":    amount,
			"from":      from,
			"to":        to,
			"decimals":  decimals,
			"converted": converted,
		})

	case "encodeCallData":
		fn, err := requireStr(params, "function")
		if err != nil {
			return nil, err
		}
		args, err := strSliceParam(params, "args")
		if err != nil {
			return nil, err
		}
		data, err := abi.EncodeCall(fn, args...)
		if err != nil {
			return nil, validationErr("%v", err)
		}
		signature, err := abi.ResolveSignature(fn)
		if err != nil {
			return nil, validationErr("%v", err)
		}
		selector, err := abi.Selector(fn)
		if err != nil {
			return nil, validationErr("%v", err)
		}
		return okResult(map[string]interface{}{
			"function":  signature,
			"selector":  selector,
			"data":      data,
			"arguments": len(args),
		})

	case "listSelectors":
		return okResult(map[string]interface{}{
			"count":     len(abi.Signatures()),
			"selectors": abi.Selectors(),
		})

	default:
		return nil, unknownOperation("utility", op)
	}
}
