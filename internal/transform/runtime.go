// Package transform runs optional JavaScript hooks that reshape
// operation results before they leave the node. A script declares which
// operation it covers with an @operation directive and defines a
// transform(result, params) function. Hooks are best effort: a failing
// hook never fails the operation.
package transform

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"github.com/rs/zerolog"

	"golang.org/x/crypto/sha3"
)

// Runtime wraps a goja VM with the bindings scripts may use
type Runtime struct {
	vm     *goja.Runtime
	logger zerolog.Logger
}

// NewRuntime creates a new Runtime with all bindings installed
func NewRuntime(logger zerolog.Logger) *Runtime {
	vm := goja.New()
	r := &Runtime{
		vm:     vm,
		logger: logger,
	}
	r.setupConsole()
	r.setupUtils()
	return r
}

// VM returns the underlying goja runtime
func (r *Runtime) VM() *goja.Runtime {
	return r.vm
}

// setupConsole routes console output into the node log
func (r *Runtime) setupConsole() {
	console := r.vm.NewObject()

	log := func(event func() *zerolog.Event) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			args := make([]interface{}, len(call.Arguments))
			for i, arg := range call.Arguments {
				args[i] = arg.Export()
			}
			event().Msgf("[transform] %v", args)
			return goja.Undefined()
		}
	}

	console.Set("log", log(func() *zerolog.Event { return r.logger.Info() }))
	console.Set("warn", log(func() *zerolog.Event { return r.logger.Warn() }))
	console.Set("error", log(func() *zerolog.Event { return r.logger.Error() }))
	console.Set("debug", log(func() *zerolog.Event { return r.logger.Debug() }))

	r.vm.Set("console", console)
}

// setupUtils installs hex and hashing helpers
func (r *Runtime) setupUtils() {
	utils := r.vm.NewObject()

	utils.Set("hexToBytes", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(r.vm.ToValue("hexToBytes requires 1 argument"))
		}
		hexStr := strings.TrimPrefix(call.Arguments[0].String(), "0x")
		decoded, err := hex.DecodeString(hexStr)
		if err != nil {
			panic(r.vm.ToValue(fmt.Sprintf("invalid hex string: %v", err)))
		}
		return r.vm.ToValue(decoded)
	})

	utils.Set("bytesToHex", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(r.vm.ToValue("bytesToHex requires 1 argument"))
		}
		data, err := exportBytes(call.Arguments[0].Export())
		if err != nil {
			panic(r.vm.ToValue(err.Error()))
		}
		return r.vm.ToValue("0x" + hex.EncodeToString(data))
	})

	utils.Set("keccak256", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(r.vm.ToValue("keccak256 requires 1 argument"))
		}
		var data []byte
		switch v := call.Arguments[0].Export().(type) {
		case string:
			if strings.HasPrefix(v, "0x") {
				decoded, err := hex.DecodeString(strings.TrimPrefix(v, "0x"))
				if err != nil {
					panic(r.vm.ToValue(fmt.Sprintf("invalid hex string: %v", err)))
				}
				data = decoded
			} else {
				data = []byte(v)
			}
		default:
			decoded, err := exportBytes(v)
			if err != nil {
				panic(r.vm.ToValue(err.Error()))
			}
			data = decoded
		}

		hash := sha3.NewLegacyKeccak256()
		hash.Write(data)
		return r.vm.ToValue("0x" + hex.EncodeToString(hash.Sum(nil)))
	})

	utils.Set("selector", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(r.vm.ToValue("selector requires function signature"))
		}
		hash := sha3.NewLegacyKeccak256()
		hash.Write([]byte(call.Arguments[0].String()))
		return r.vm.ToValue("0x" + hex.EncodeToString(hash.Sum(nil)[:4]))
	})

	utils.Set("parseJSON", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(r.vm.ToValue("parseJSON requires string"))
		}
		var result interface{}
		if err := json.Unmarshal([]byte(call.Arguments[0].String()), &result); err != nil {
			panic(r.vm.ToValue(fmt.Sprintf("invalid JSON: %v", err)))
		}
		return r.vm.ToValue(result)
	})

	utils.Set("stringifyJSON", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(r.vm.ToValue("stringifyJSON requires value"))
		}
		data, err := json.Marshal(call.Arguments[0].Export())
		if err != nil {
			panic(r.vm.ToValue(fmt.Sprintf("JSON stringify error: %v", err)))
		}
		return r.vm.ToValue(string(data))
	})

	r.vm.Set("utils", utils)
}

func exportBytes(exported interface{}) ([]byte, error) {
	switch v := exported.(type) {
	case []byte:
		return v, nil
	case []interface{}:
		data := make([]byte, len(v))
		for i, b := range v {
			switch num := b.(type) {
			case int64:
				data[i] = byte(num)
			case float64:
				data[i] = byte(num)
			default:
				return nil, fmt.Errorf("byte array element %d is not a number", i)
			}
		}
		return data, nil
	default:
		return nil, fmt.Errorf("value is not a byte array")
	}
}

// RunScript executes JavaScript source in this runtime
func (r *Runtime) RunScript(script string) (goja.Value, error) {
	return r.vm.RunString(script)
}
