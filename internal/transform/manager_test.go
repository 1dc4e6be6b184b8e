package transform

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(2*time.Second, zerolog.Nop())
}

func TestApplyReshapesResult(t *testing.T) {
	m := newManager(t)
	require.NoError(t, m.Register("uppercase-symbol", `
// @operation fanToken.getInfo
function transform(result, params) {
	result.symbol = result.symbol.toUpperCase();
	result.network = params.network;
	return result;
}
`))

	require.True(t, m.Has("fanToken", "getInfo"))

	out, applied, err := m.Apply(context.Background(), "fanToken", "getInfo",
		json.RawMessage(`{"symbol":"bar","name":"FC Barcelona"}`),
		map[string]interface{}{"network": "mainnet"})
	require.NoError(t, err)
	require.True(t, applied)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &result))
	assert.Equal(t, "BAR", result["symbol"])
	assert.Equal(t, "mainnet", result["network"])
}

func TestApplyWithoutHookPassesThrough(t *testing.T) {
	m := newManager(t)

	original := json.RawMessage(`{"balance":"1"}`)
	out, applied, err := m.Apply(context.Background(), "account", "getBalance", original, nil)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, original, out)
}

func TestApplyFailureKeepsOriginal(t *testing.T) {
	m := newManager(t)
	require.NoError(t, m.Register("broken", `
// @operation account.getBalance
function transform(result, params) {
	throw new Error("boom");
}
`))

	original := json.RawMessage(`{"balance":"1"}`)
	out, applied, err := m.Apply(context.Background(), "account", "getBalance", original, nil)
	require.Error(t, err)
	assert.False(t, applied)
	assert.Equal(t, original, out)
	assert.Contains(t, err.Error(), "boom")
}

func TestApplyTimeout(t *testing.T) {
	m := NewManager(100*time.Millisecond, zerolog.Nop())
	require.NoError(t, m.Register("spin", `
// @operation network.getStatus
function transform(result, params) {
	while (true) {}
}
`))

	start := time.Now()
	_, applied, err := m.Apply(context.Background(), "network", "getStatus", json.RawMessage(`{}`), nil)
	require.Error(t, err)
	assert.False(t, applied)
	assert.Less(t, time.Since(start), 2*time.Second, "interrupt did not fire")
}

func TestRegisterRequiresDirective(t *testing.T) {
	m := newManager(t)
	err := m.Register("nodirective", `function transform(r) { return r; }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "@operation")
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	m := newManager(t)
	script := "// @operation poll.get\nfunction transform(r) { return r; }"
	require.NoError(t, m.Register("first", script))
	require.Error(t, m.Register("second", script))
}

func TestUtilsBindings(t *testing.T) {
	m := newManager(t)
	require.NoError(t, m.Register("hash", `
// @operation utility.checksumAddress
function transform(result, params) {
	return {
		selector: utils.selector("transfer(address,uint256)"),
		hash: utils.keccak256("abc"),
		roundtrip: utils.bytesToHex(utils.hexToBytes("0x00ff"))
	};
}
`))

	out, applied, err := m.Apply(context.Background(), "utility", "checksumAddress", json.RawMessage(`{}`), nil)
	require.NoError(t, err)
	require.True(t, applied)

	var result map[string]string
	require.NoError(t, json.Unmarshal(out, &result))
	assert.Equal(t, "0xa9059cbb", result["selector"])
	assert.Equal(t, "0x4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45", result["hash"])
	assert.Equal(t, "0x00ff", result["roundtrip"])
}
