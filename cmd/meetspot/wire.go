package main

import (
	"fmt"
	"log"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/meetspot-ai/meetspot/config"
	"github.com/meetspot-ai/meetspot/internal/agent"
	"github.com/meetspot-ai/meetspot/internal/amap"
	"github.com/meetspot-ai/meetspot/internal/cache"
	"github.com/meetspot-ai/meetspot/internal/recommend"
	"github.com/meetspot-ai/meetspot/internal/telemetry"
)

type app struct {
	cfg     *config.Config
	service *recommend.Service
	orch    *agent.Orchestrator
	metrics *telemetry.Metrics
	logger  *log.Logger
}

// buildApp wires the full dependency graph from configuration. The
// agent is optional: without an LLM key the HTTP pipeline still works.
func buildApp(cfgPath string) (*app, error) {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}

	logger := log.New(os.Stdout, "[MEETSPOT] ", log.LstdFlags)

	var metrics *telemetry.Metrics
	if cfg.Telemetry.Enabled {
		metrics = telemetry.New()
	}

	amapClient, err := amap.NewClient(cfg.Amap, log.New(os.Stdout, "[AMAP] ", log.LstdFlags))
	if err != nil {
		return nil, fmt.Errorf("amap client: %w", err)
	}
	amapClient.WithMetrics(metrics)

	store, err := newCacheStore(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}

	geocoder := recommend.NewGeocoder(amapClient, store, log.New(os.Stdout, "[GEO] ", log.LstdFlags))
	centers := recommend.NewCenterEngine(amapClient, log.New(os.Stdout, "[CENTER] ", log.LstdFlags))
	searcher := recommend.NewSearcher(amapClient, store, log.New(os.Stdout, "[SEARCH] ", log.LstdFlags))
	ranker := recommend.NewRanker(cfg.Ranking.MultiCategoryCap, cfg.Ranking.SingleCategoryTop)
	service := recommend.NewService(geocoder, centers, searcher, ranker, metrics, logger)

	a := &app{cfg: cfg, service: service, metrics: metrics, logger: logger}

	if cfg.LLM.APIKey != "" {
		llm, err := agent.NewProvider(cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("llm provider: %w", err)
		}
		registry, err := agent.NewRegistry([]agent.Tool{
			&agent.GeocodeTool{Geocoder: geocoder},
			&agent.CenterTool{Engine: centers},
			&agent.SearchTool{Searcher: searcher},
			&agent.RecommendTool{Service: service},
		}, agent.RequiredTools)
		if err != nil {
			return nil, fmt.Errorf("tool registry: %w", err)
		}
		a.orch = agent.New(llm, registry, agent.Options{
			MaxSteps:           cfg.Agent.MaxSteps,
			DuplicateThreshold: cfg.Agent.DuplicateThreshold,
			HistoryWindow:      cfg.Agent.HistoryWindow,
			Metrics:            metrics,
			Logger:             log.New(os.Stdout, "[ORCH] ", log.LstdFlags),
		})
	} else {
		logger.Printf("no llm api key configured, agent surface disabled")
	}

	return a, nil
}

func newCacheStore(cfg config.CacheConfig) (cache.Store, error) {
	switch cfg.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return cache.NewRedisStore(client, "meetspot:", cfg.TTL), nil
	default:
		return cache.NewLRUStore(cfg.Size, cfg.TTL), nil
	}
}
