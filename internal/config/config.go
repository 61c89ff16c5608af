package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"stakeScope/internal/report"
	"stakeScope/internal/staking"
)

const envPrefix = "STAKESCOPE"

// Log sources.
const (
	SourceExplorer = "explorer"
	SourceRPC      = "rpc"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	APIURL         string
	APIKey         string
	ChainID        uint64
	Contract       string
	Topic0         string
	EventSignature string
	Plans          staking.PlanCatalog
	FilterEnabled  bool
	FilterMode     report.FilterMode
	FilterFile     string
	PageSize       int
	MaxPages       int
	RequestTimeout time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Source         string
	RPCURL         string
	RPCBatchSize   uint64
	TokenDecimals  int32
	JSONOut        string
	EventsOut      string
	LogLevel       string
}

// ServeConfig adds the HTTP settings of the serve command.
type ServeConfig struct {
	Config
	Listen   string
	CacheTTL time.Duration
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return Config{}, err
	}
	return fromViper(v)
}

// LoadServe is Load plus the listen address and cache TTL.
func LoadServe(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return ServeConfig{}, err
	}
	cfg, err := fromViper(v)
	if err != nil {
		return ServeConfig{}, err
	}

	serve := ServeConfig{
		Config:   cfg,
		Listen:   v.GetString("listen"),
		CacheTTL: v.GetDuration("cache-ttl"),
	}
	if serve.Listen == "" {
		return ServeConfig{}, fmt.Errorf("listen address is required")
	}
	if serve.CacheTTL <= 0 {
		return ServeConfig{}, fmt.Errorf("cache-ttl must be positive")
	}
	return serve, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("api-url", "https://api.etherscan.io/v2/api")
	v.SetDefault("chain-id", uint64(1))
	v.SetDefault("plans", "1=30,2=90,3=180,4=360")
	v.SetDefault("filter-enabled", true)
	v.SetDefault("filter-mode", string(report.ModeExclude))
	v.SetDefault("filter-file", "data_check.txt")
	v.SetDefault("page-size", 1000)
	v.SetDefault("max-pages", 0)
	v.SetDefault("request-timeout", 30*time.Second)
	v.SetDefault("max-retries", 0)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("source", SourceExplorer)
	v.SetDefault("rpc-batch-size", uint64(5000))
	v.SetDefault("token-decimals", 18)
	v.SetDefault("log-level", "info")
	v.SetDefault("listen", ":8080")
	v.SetDefault("cache-ttl", 25*time.Second)

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
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		APIURL:         v.GetString("api-url"),
		APIKey:         v.GetString("api-key"),
		ChainID:        v.GetUint64("chain-id"),
		Contract:       strings.TrimSpace(v.GetString("contract")),
		Topic0:         strings.TrimSpace(v.GetString("topic0")),
		EventSignature: strings.TrimSpace(v.GetString("event-signature")),
		FilterEnabled:  v.GetBool("filter-enabled"),
		FilterFile:     v.GetString("filter-file"),
		PageSize:       v.GetInt("page-size"),
		MaxPages:       v.GetInt("max-pages"),
		RequestTimeout: v.GetDuration("request-timeout"),
		MaxRetries:     v.GetInt("max-retries"),
		RetryBackoff:   v.GetDuration("retry-backoff"),
		Source:         strings.ToLower(strings.TrimSpace(v.GetString("source"))),
		RPCURL:         v.GetString("rpc"),
		RPCBatchSize:   v.GetUint64("rpc-batch-size"),
		TokenDecimals:  v.GetInt32("token-decimals"),
		JSONOut:        v.GetString("json-out"),
		EventsOut:      v.GetString("events-out"),
		LogLevel:       v.GetString("log-level"),
	}

	pairs, err := getStringMap(v, "plans")
	if err != nil {
		return Config{}, fmt.Errorf("plans: %w", err)
	}
	plans, err := staking.ParsePlanCatalog(pairs)
	if err != nil {
		return Config{}, fmt.Errorf("plans: %w", err)
	}
	cfg.Plans = plans

	mode, err := report.ParseFilterMode(v.GetString("filter-mode"))
	if err != nil {
		return Config{}, err
	}
	cfg.FilterMode = mode

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that do not depend on the network.
func (c Config) Validate() error {
	if c.Contract == "" {
		return fmt.Errorf("contract is required")
	}
	if c.Topic0 == "" && c.EventSignature == "" {
		return fmt.Errorf("topic0 or event-signature is required")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page-size must be greater than zero")
	}
	if c.MaxPages < 0 || c.MaxRetries < 0 {
		return fmt.Errorf("max-pages and max-retries must not be negative")
	}
	if c.TokenDecimals < 0 {
		return fmt.Errorf("token-decimals must not be negative")
	}
	switch c.Source {
	case SourceExplorer:
		if c.APIKey == "" {
			return fmt.Errorf("api-key is required for the explorer source")
		}
	case SourceRPC:
		if c.RPCURL == "" {
			return fmt.Errorf("rpc url is required for the rpc source")
		}
		if c.RPCBatchSize == 0 {
			return fmt.Errorf("rpc-batch-size must be greater than zero")
		}
	default:
		return fmt.Errorf("unknown source %q (want %s or %s)", c.Source, SourceExplorer, SourceRPC)
	}
	return nil
}

func getStringMap(v *viper.Viper, key string) (map[string]string, error) {
	if !v.IsSet(key) {
		return map[string]string{}, nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case map[string]string:
		return typed, nil
	case map[string]interface{}:
		out := make(map[string]string, len(typed))
		for k, v := range typed {
			out[k] = fmt.Sprintf("%v", v)
		}
		return out, nil
	case string:
		return parseStringMap(typed)
	default:
		return nil, fmt.Errorf("unsupported value type %T", val)
	}
}

func parseStringMap(input string) (map[string]string, error) {
	out := make(map[string]string)
	if strings.TrimSpace(input) == "" {
		return out, nil
	}
	for _, pair := range strings.Split(input, ",") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed pair %q (want key=value)", strings.TrimSpace(pair))
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" || value == "" {
			return nil, fmt.Errorf("malformed pair %q (want key=value)", strings.TrimSpace(pair))
		}
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("duplicate key %q", key)
		}
		out[key] = value
	}
	return out, nil
}
