package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the recommendation system
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Amap      AmapConfig      `mapstructure:"amap"`
	Agent     AgentConfig     `mapstructure:"agent"`
	Search    SearchConfig    `mapstructure:"search"`
	Ranking   RankingConfig   `mapstructure:"ranking"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LLMConfig contains LLM provider settings
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"` // openai, anthropic
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// AmapConfig contains upstream map provider settings
type AmapConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	QPS          float64       `mapstructure:"qps"`
	PageSize     int           `mapstructure:"page_size"`
}

// AgentConfig contains orchestrator loop settings
type AgentConfig struct {
	MaxSteps           int `mapstructure:"max_steps"`
	DuplicateThreshold int `mapstructure:"duplicate_threshold"`
	HistoryWindow      int `mapstructure:"history_window"`
}

// SearchConfig contains venue search settings
type SearchConfig struct {
	DefaultRadius int `mapstructure:"default_radius"` // meters
}

// RankingConfig contains ranking and balancing settings
type RankingConfig struct {
	MultiCategoryCap  int `mapstructure:"multi_category_cap"`
	SingleCategoryTop int `mapstructure:"single_category_top"`
}

// CacheConfig selects the geocode/POI cache backend
type CacheConfig struct {
	Backend string        `mapstructure:"backend"` // memory, redis
	Size    int           `mapstructure:"size"`    // entries per in-memory cache
	TTL     time.Duration `mapstructure:"ttl"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// TelemetryConfig contains metrics settings
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Validate checks settings that have no safe fallback.
func (c AmapConfig) Validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("amap.max_retries must be >= 0")
	}
	if c.QPS <= 0 {
		return fmt.Errorf("amap.qps must be > 0")
	}
	return nil
}

// Validate checks the cache backend selection.
func (c CacheConfig) Validate() error {
	switch c.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be memory or redis, got %q", c.Backend)
	}
	if c.Backend == "redis" && c.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr required when cache.backend is redis")
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("general.default_timeout", "60s")
	viper.SetDefault("server.address", ":10002")
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.model", "gpt-4o")
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.max_tokens", 2048)
	viper.SetDefault("llm.timeout", "60s")
	viper.SetDefault("amap.base_url", "https://restapi.amap.com/v3")
	viper.SetDefault("amap.timeout", "10s")
	viper.SetDefault("amap.max_retries", 3)
	viper.SetDefault("amap.retry_backoff", "1s")
	viper.SetDefault("amap.qps", 2.0)
	viper.SetDefault("amap.page_size", 20)
	viper.SetDefault("agent.max_steps", 15)
	viper.SetDefault("agent.duplicate_threshold", 2)
	viper.SetDefault("agent.history_window", 8)
	viper.SetDefault("search.default_radius", 5000)
	viper.SetDefault("ranking.multi_category_cap", 8)
	viper.SetDefault("ranking.single_category_top", 5)
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("cache.size", 1024)
	viper.SetDefault("cache.ttl", "1h")
	viper.SetDefault("telemetry.enabled", true)
}

// LoadConfig reads configuration from file and environment. Environment
// variables use the MEETSPOT_ prefix with dots replaced by underscores,
// e.g. MEETSPOT_AMAP_API_KEY.
func LoadConfig(path string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	setDefaults()

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, "..", "config"))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("MEETSPOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine: defaults plus env cover every setting.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Amap.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Cache.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
