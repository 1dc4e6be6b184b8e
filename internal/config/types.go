package config

import "time"

// Config represents the main configuration structure
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Networks  []NetworkConfig `mapstructure:"networks"`
	Tokens    []TokenConfig   `mapstructure:"tokens"`
	Clubs     []string        `mapstructure:"clubs"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
	Transform TransformConfig `mapstructure:"transform"`
	Trigger   TriggerConfig   `mapstructure:"trigger"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	MaxBodySize     int64  `mapstructure:"maxBodySize"`     // bytes, 0 means no limit
	RequestTimeout  int    `mapstructure:"requestTimeout"`  // ms
	ShutdownTimeout int    `mapstructure:"shutdownTimeout"` // ms
}

// LogConfig configures logging output
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// NetworkConfig defines a chain endpoint set. Network entries with a
// name matching a built-in network override its URLs; other names
// define additional networks.
type NetworkConfig struct {
	Name           string `mapstructure:"name"`
	ChainID        uint64 `mapstructure:"chainId"`
	RPCURL         string `mapstructure:"rpcUrl"`
	WSURL          string `mapstructure:"wsUrl"`
	ExplorerURL    string `mapstructure:"explorerUrl"`
	FanAPIURL      string `mapstructure:"fanApiUrl"`
	NativeSymbol   string `mapstructure:"nativeSymbol"`
	NativeDecimals int32  `mapstructure:"nativeDecimals"`
}

// TokenConfig registers a token contract so operations can accept its
// symbol instead of a raw address
type TokenConfig struct {
	Symbol   string `mapstructure:"symbol"`
	Name     string `mapstructure:"name"`
	Address  string `mapstructure:"address"`
	Decimals int32  `mapstructure:"decimals"`
	Network  string `mapstructure:"network"`
	Standard string `mapstructure:"standard"` // erc20 or erc721
}

// CacheConfig configures the metadata cache
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
	TTL     int  `mapstructure:"ttl"`  // seconds
	Size    int  `mapstructure:"size"` // number of entries
}

// RateLimitConfig throttles outbound REST calls per upstream service
type RateLimitConfig struct {
	ExplorerRPS   float64 `mapstructure:"explorerRps"`
	ExplorerBurst int     `mapstructure:"explorerBurst"`
	FanAPIRPS     float64 `mapstructure:"fanApiRps"`
	FanAPIBurst   int     `mapstructure:"fanApiBurst"`
}

// TransformConfig configures the JavaScript result transform runtime
type TransformConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Directory string `mapstructure:"directory"`
	Timeout   int    `mapstructure:"timeout"` // ms
}

// TriggerConfig configures poll cursor persistence
type TriggerConfig struct {
	CheckpointDir string `mapstructure:"checkpointDir"`
	Interval      int    `mapstructure:"interval"` // ms, used by the watch command
}

// Default values
const (
	DefaultHost            = "localhost"
	DefaultPort            = 8787
	DefaultMaxBodySize     = int64(1 << 20) // 1 MiB
	DefaultRequestTimeout  = 30000          // ms
	DefaultShutdownTimeout = 10000          // ms
	DefaultLogLevel        = "info"
	DefaultCacheTTL        = 300 // seconds
	DefaultCacheSize       = 2048
	DefaultExplorerRPS     = 5.0
	DefaultExplorerBurst   = 5
	DefaultFanAPIRPS       = 10.0
	DefaultFanAPIBurst     = 10
	DefaultTransformDir    = "./transforms"
	DefaultTransformTime   = 5000 // ms
	DefaultCheckpointDir   = "./data"
	DefaultTriggerInterval = 15000 // ms
	DefaultTokenStandard   = "erc20"
	DefaultNativeSymbol    = "CHZ"
	DefaultNativeDecimals  = int32(18)
)

// GetRequestTimeoutDuration returns request timeout as time.Duration
func (c *Config) GetRequestTimeoutDuration() time.Duration {
	return time.Duration(c.Server.RequestTimeout) * time.Millisecond
}

// GetShutdownTimeoutDuration returns shutdown timeout as time.Duration
func (c *Config) GetShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.Server.ShutdownTimeout) * time.Millisecond
}

// GetCacheTTLDuration returns the cache TTL as time.Duration
func (c *Config) GetCacheTTLDuration() time.Duration {
	return time.Duration(c.Cache.TTL) * time.Second
}

// GetTransformTimeoutDuration returns the transform timeout as time.Duration
func (c *Config) GetTransformTimeoutDuration() time.Duration {
	return time.Duration(c.Transform.Timeout) * time.Millisecond
}

// GetTriggerIntervalDuration returns the watch poll interval as time.Duration
func (c *Config) GetTriggerIntervalDuration() time.Duration {
	return time.Duration(c.Trigger.Interval) * time.Millisecond
}
