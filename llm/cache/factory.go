package cache

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// 后端类型
const (
	BackendMemory = "memory"
	BackendLRU    = "lru"
	BackendRedis  = "redis"
	BackendTiered = "tiered"
)

// Config 响应缓存配置
type Config struct {
	Backend     string        // memory | lru | redis | tiered
	MaxEntries  int           // lru / tiered 的 L1 容量
	TTL         time.Duration // lru 与 redis 的过期时间，0 表示不过期
	RedisPrefix string
}

// NewResponseCache 按配置创建缓存；redis / tiered 需要 rdb
func NewResponseCache(cfg Config, rdb *redis.Client, logger *zap.Logger) (ResponseCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Backend {
	case "", BackendMemory:
		logger.Info("using unbounded in-memory response cache")
		return NewMemoryCache(), nil
	case BackendLRU:
		logger.Info("using lru response cache",
			zap.Int("max_entries", cfg.MaxEntries),
			zap.Duration("ttl", cfg.TTL))
		return NewLRUCache(cfg.MaxEntries, cfg.TTL), nil
	case BackendRedis:
		if rdb == nil {
			return nil, fmt.Errorf("cache backend %q requires a redis client", cfg.Backend)
		}
		logger.Info("using redis response cache", zap.Duration("ttl", cfg.TTL))
		return NewRedisCache(rdb, cfg.RedisPrefix, cfg.TTL, logger), nil
	case BackendTiered:
		if rdb == nil {
			return nil, fmt.Errorf("cache backend %q requires a redis client", cfg.Backend)
		}
		logger.Info("using tiered response cache",
			zap.Int("max_entries", cfg.MaxEntries),
			zap.Duration("ttl", cfg.TTL))
		return NewTieredCache(
			NewLRUCache(cfg.MaxEntries, cfg.TTL),
			NewRedisCache(rdb, cfg.RedisPrefix, cfg.TTL, logger),
			logger,
		), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
