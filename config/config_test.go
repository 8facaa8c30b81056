package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Agent.MaxSteps != 15 {
		t.Fatalf("agent.max_steps = %d, want 15", cfg.Agent.MaxSteps)
	}
	if cfg.Agent.DuplicateThreshold != 2 {
		t.Fatalf("agent.duplicate_threshold = %d, want 2", cfg.Agent.DuplicateThreshold)
	}
	if cfg.Search.DefaultRadius != 5000 {
		t.Fatalf("search.default_radius = %d, want 5000", cfg.Search.DefaultRadius)
	}
	if cfg.Ranking.MultiCategoryCap != 8 || cfg.Ranking.SingleCategoryTop != 5 {
		t.Fatalf("ranking bounds = %d/%d, want 8/5", cfg.Ranking.MultiCategoryCap, cfg.Ranking.SingleCategoryTop)
	}
	if cfg.Amap.MaxRetries != 3 {
		t.Fatalf("amap.max_retries = %d, want 3", cfg.Amap.MaxRetries)
	}
	if cfg.Amap.RetryBackoff != time.Second {
		t.Fatalf("amap.retry_backoff = %s, want 1s", cfg.Amap.RetryBackoff)
	}
	if cfg.Cache.Backend != "memory" {
		t.Fatalf("cache.backend = %q, want memory", cfg.Cache.Backend)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	viper.Reset()
	t.Setenv("MEETSPOT_AGENT_MAX_STEPS", "5")
	t.Setenv("MEETSPOT_SEARCH_DEFAULT_RADIUS", "3000")
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Agent.MaxSteps != 5 {
		t.Fatalf("agent.max_steps = %d, want env override 5", cfg.Agent.MaxSteps)
	}
	if cfg.Search.DefaultRadius != 3000 {
		t.Fatalf("search.default_radius = %d, want env override 3000", cfg.Search.DefaultRadius)
	}
}

func TestCacheConfigValidate(t *testing.T) {
	if err := (CacheConfig{Backend: "memcached"}).Validate(); err == nil {
		t.Fatalf("expected rejection of unknown backend")
	}
	if err := (CacheConfig{Backend: "redis"}).Validate(); err == nil {
		t.Fatalf("expected rejection of redis backend without addr")
	}
	if err := (CacheConfig{Backend: "redis", Redis: RedisConfig{Addr: "localhost:6379"}}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAmapConfigValidate(t *testing.T) {
	if err := (AmapConfig{QPS: 0}).Validate(); err == nil {
		t.Fatalf("expected rejection of zero qps")
	}
	if err := (AmapConfig{QPS: 2, MaxRetries: -1}).Validate(); err == nil {
		t.Fatalf("expected rejection of negative retries")
	}
}
