package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "log:\n  level: debug\n")

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Host != DefaultHost || cfg.Server.Port != DefaultPort {
		t.Errorf("server defaults not applied: %+v", cfg.Server)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %s", cfg.Log.Level)
	}
	if !cfg.Cache.Enabled || cfg.Cache.TTL != DefaultCacheTTL {
		t.Errorf("cache defaults not applied: %+v", cfg.Cache)
	}
	if cfg.RateLimit.ExplorerRPS != DefaultExplorerRPS {
		t.Errorf("rate limit defaults not applied: %+v", cfg.RateLimit)
	}
}

func TestLoadFull(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 0.0.0.0
  port: 9090
networks:
  - name: local
    chainId: 31337
    rpcUrl: http://localhost:8545
tokens:
  - symbol: DEMO
    name: Demo Fan Token
    address: "0x1111111111111111111111111111111111111111"
    decimals: 0
    network: local
`)

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if len(cfg.Networks) != 1 || cfg.Networks[0].ChainID != 31337 {
		t.Fatalf("networks = %+v", cfg.Networks)
	}
	if cfg.Networks[0].NativeSymbol != DefaultNativeSymbol {
		t.Errorf("native symbol default not applied: %s", cfg.Networks[0].NativeSymbol)
	}
	if len(cfg.Tokens) != 1 || cfg.Tokens[0].Standard != "erc20" {
		t.Fatalf("tokens = %+v", cfg.Tokens)
	}
}

func TestLoadRejectsBadToken(t *testing.T) {
	path := writeConfig(t, `
tokens:
  - symbol: BAD
    address: "not-an-address"
    decimals: 18
`)
	if _, err := Load(path, nil); err == nil {
		t.Error("expected error for invalid token address")
	}
}

func TestLoadRejectsDuplicateNetwork(t *testing.T) {
	path := writeConfig(t, `
networks:
  - name: dup
    rpcUrl: http://a
  - name: dup
    rpcUrl: http://b
`)
	if _, err := Load(path, nil); err == nil {
		t.Error("expected error for duplicate network name")
	}
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	path := writeConfig(t, "log:\n  level: loud\n")
	if _, err := Load(path, nil); err == nil {
		t.Error("expected error for unknown log level")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	// No explicit file and nothing discoverable in the temp working dir
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load without file: %v", err)
	}
	if cfg.Server.Port != DefaultPort {
		t.Errorf("port = %d", cfg.Server.Port)
	}
}
