package main

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/studyflow/config"
	rediscache "github.com/BaSui01/studyflow/internal/cache"
	"github.com/BaSui01/studyflow/llm"
	"github.com/BaSui01/studyflow/llm/cache"
	"github.com/BaSui01/studyflow/llm/providers"
	"github.com/BaSui01/studyflow/llm/providers/gemini"
	"github.com/BaSui01/studyflow/tutor"
)

// components serve 与 ask 共用的服务依赖
type components struct {
	registry *tutor.Registry
	service  *tutor.Service
	redis    *rediscache.Manager // 未使用 Redis 时为 nil
}

// Close 释放 Redis 连接
func (c *components) Close() error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Close()
}

// buildComponents 按配置组装 Provider、缓存与辅导服务。
// 凭据缺失不是错误：服务照常构建，调用时返回 CONFIGURATION_MISSING。
func buildComponents(ctx context.Context, cfg *config.Config, recorder tutor.Recorder, onRedisHealth func(bool), logger *zap.Logger) (*components, error) {
	registry, err := loadRegistry(cfg.Agents)
	if err != nil {
		return nil, err
	}

	keys, err := cache.NewKeyStrategy(cfg.Cache.KeyStrategy)
	if err != nil {
		return nil, err
	}

	c := &components{registry: registry}
	if cfg.UsesRedis() {
		redisCfg := rediscache.DefaultConfig()
		redisCfg.Addr = cfg.Redis.Addr
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.HealthCheckInterval = cfg.Redis.HealthCheckInterval

		var opts []rediscache.Option
		if onRedisHealth != nil {
			opts = append(opts, rediscache.WithHealthCallback(onRedisHealth))
		}
		c.redis, err = rediscache.NewManager(ctx, redisCfg, logger, opts...)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
	}

	var responses cache.ResponseCache
	if c.redis != nil {
		responses, err = cache.NewResponseCache(cacheConfig(cfg.Cache), c.redis.Client(), logger)
	} else {
		responses, err = cache.NewResponseCache(cacheConfig(cfg.Cache), nil, logger)
	}
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	provider, err := newProvider(ctx, cfg.LLM, logger)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	opts := []tutor.Option{
		tutor.WithCache(responses),
		tutor.WithKeyStrategy(keys),
		tutor.WithRegistry(registry),
		tutor.WithLogger(logger),
	}
	if recorder != nil {
		opts = append(opts, tutor.WithRecorder(recorder))
	}
	c.service = tutor.New(tutorConfig(cfg), provider, opts...)

	logger.Info("tutor service assembled",
		zap.Int("agents", registry.Len()),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.String("key_strategy", keys.Name()),
		zap.Bool("single_flight", cfg.Cache.SingleFlight),
		zap.Bool("credential_configured", c.service.Ready()),
	)
	return c, nil
}

func loadRegistry(cfg config.AgentsConfig) (*tutor.Registry, error) {
	if strings.TrimSpace(cfg.ProfilesPath) == "" {
		return tutor.DefaultRegistry(), nil
	}
	registry, err := tutor.LoadRegistry(cfg.ProfilesPath)
	if err != nil {
		return nil, fmt.Errorf("load agent profiles: %w", err)
	}
	return registry, nil
}

// newProvider 凭据为空时返回 nil Provider，由 tutor.Service 报告配置缺失
func newProvider(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (llm.Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, nil
	}
	p, err := gemini.NewGeminiProvider(ctx, providers.GeminiConfig{
		BaseProviderConfig: providers.BaseProviderConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create gemini provider: %w", err)
	}
	return p, nil
}

func cacheConfig(cfg config.CacheConfig) cache.Config {
	return cache.Config{
		Backend:     cfg.Backend,
		MaxEntries:  cfg.MaxEntries,
		TTL:         cfg.TTL,
		RedisPrefix: cfg.RedisPrefix,
	}
}

func tutorConfig(cfg *config.Config) tutor.Config {
	return tutor.Config{
		APIKey: cfg.LLM.APIKey,
		Invoker: tutor.InvokerConfig{
			Model:          cfg.LLM.Model,
			Temperature:    float32(cfg.LLM.Temperature),
			TopP:           float32(cfg.LLM.TopP),
			RequestTimeout: cfg.LLM.RequestTimeout,
		},
		SingleFlight: cfg.Cache.SingleFlight,
	}
}
