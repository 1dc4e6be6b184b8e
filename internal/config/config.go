package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"fanlink/internal/hexutil"
)

// Load merges config file, environment variables, and flags into Config.
// Flags win over environment, environment wins over file.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FANLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.maxBodySize", DefaultMaxBodySize)
	v.SetDefault("server.requestTimeout", DefaultRequestTimeout)
	v.SetDefault("server.shutdownTimeout", DefaultShutdownTimeout)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.pretty", true)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", DefaultCacheTTL)
	v.SetDefault("cache.size", DefaultCacheSize)
	v.SetDefault("rateLimit.explorerRps", DefaultExplorerRPS)
	v.SetDefault("rateLimit.explorerBurst", DefaultExplorerBurst)
	v.SetDefault("rateLimit.fanApiRps", DefaultFanAPIRPS)
	v.SetDefault("rateLimit.fanApiBurst", DefaultFanAPIBurst)
	v.SetDefault("transform.directory", DefaultTransformDir)
	v.SetDefault("transform.timeout", DefaultTransformTime)
	v.SetDefault("trigger.checkpointDir", DefaultCheckpointDir)
	v.SetDefault("trigger.interval", DefaultTriggerInterval)
}

// applyDefaults sets default values for fields viper cannot reach
// (entries of list sections)
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.Size == 0 {
		cfg.Cache.Size = DefaultCacheSize
	}
	if cfg.Transform.Timeout == 0 {
		cfg.Transform.Timeout = DefaultTransformTime
	}
	if cfg.Trigger.CheckpointDir == "" {
		cfg.Trigger.CheckpointDir = DefaultCheckpointDir
	}
	if cfg.Trigger.Interval == 0 {
		cfg.Trigger.Interval = DefaultTriggerInterval
	}

	for i := range cfg.Networks {
		if cfg.Networks[i].NativeSymbol == "" {
			cfg.Networks[i].NativeSymbol = DefaultNativeSymbol
		}
		if cfg.Networks[i].NativeDecimals == 0 {
			cfg.Networks[i].NativeDecimals = DefaultNativeDecimals
		}
	}
	for i := range cfg.Tokens {
		if cfg.Tokens[i].Standard == "" {
			cfg.Tokens[i].Standard = DefaultTokenStandard
		}
	}
}

// validate checks the configuration for errors
func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if cfg.Server.MaxBodySize < 0 {
		return errors.New("server.maxBodySize must be non-negative")
	}
	if cfg.Server.RequestTimeout < 0 {
		return errors.New("server.requestTimeout must be non-negative")
	}

	validLogLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.Log.Level] {
		return fmt.Errorf("log.level must be one of: trace, debug, info, warn, error")
	}

	networkNames := make(map[string]bool)
	for i, network := range cfg.Networks {
		if network.Name == "" {
			return fmt.Errorf("networks[%d]: name is required", i)
		}
		if networkNames[network.Name] {
			return fmt.Errorf("networks[%d]: duplicate network name '%s'", i, network.Name)
		}
		networkNames[network.Name] = true

		if network.RPCURL == "" {
			return fmt.Errorf("network '%s': rpcUrl is required", network.Name)
		}
		if network.NativeDecimals < 0 || network.NativeDecimals > 36 {
			return fmt.Errorf("network '%s': nativeDecimals out of range", network.Name)
		}
	}

	tokenKeys := make(map[string]bool)
	for i, token := range cfg.Tokens {
		if token.Symbol == "" {
			return fmt.Errorf("tokens[%d]: symbol is required", i)
		}
		if !hexutil.IsValidAddress(token.Address) {
			return fmt.Errorf("token '%s': invalid address '%s'", token.Symbol, token.Address)
		}
		if token.Decimals < 0 || token.Decimals > 36 {
			return fmt.Errorf("token '%s': decimals out of range", token.Symbol)
		}
		if token.Standard != "erc20" && token.Standard != "erc721" {
			return fmt.Errorf("token '%s': standard must be 'erc20' or 'erc721'", token.Symbol)
		}

		key := strings.ToLower(token.Symbol) + "@" + token.Network
		if tokenKeys[key] {
			return fmt.Errorf("tokens[%d]: duplicate symbol '%s' for network '%s'", i, token.Symbol, token.Network)
		}
		tokenKeys[key] = true
	}

	for i, club := range cfg.Clubs {
		if strings.TrimSpace(club) == "" {
			return fmt.Errorf("clubs[%d]: identifier must not be empty", i)
		}
	}

	if cfg.Cache.Enabled {
		if cfg.Cache.TTL <= 0 {
			return errors.New("cache.ttl must be positive when cache is enabled")
		}
		if cfg.Cache.Size <= 0 {
			return errors.New("cache.size must be positive when cache is enabled")
		}
	}

	if cfg.RateLimit.ExplorerRPS < 0 || cfg.RateLimit.FanAPIRPS < 0 {
		return errors.New("rate limits must be non-negative")
	}

	return nil
}
