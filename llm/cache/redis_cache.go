package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// defaultRedisPrefix Redis 键前缀
const defaultRedisPrefix = "studyflow:response:"

// RedisCache 基于 Redis 的响应缓存
// 后端错误只记录日志，Get/Has 按未命中处理，Set 静默失败
type RedisCache struct {
	redis  *redis.Client
	prefix string
	ttl    time.Duration // 0 表示不过期
	logger *zap.Logger
}

// NewRedisCache 创建 Redis 缓存
func NewRedisCache(rdb *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *RedisCache {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{
		redis:  rdb,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.With(zap.String("component", "redis_response_cache")),
	}
}

// Has 判断键是否存在
func (c *RedisCache) Has(ctx context.Context, key string) bool {
	n, err := c.redis.Exists(ctx, c.redisKey(key)).Result()
	if err != nil {
		c.logger.Warn("redis exists error", zap.String("key", key), zap.Error(err))
		return false
	}
	return n > 0
}

// Get 获取缓存
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	text, err := c.redis.Get(ctx, c.redisKey(key)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("redis get error", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	c.logger.Debug("redis cache hit", zap.String("key", key))
	return text, true
}

// Set 写入缓存
func (c *RedisCache) Set(ctx context.Context, key string, text string) {
	if err := c.redis.Set(ctx, c.redisKey(key), text, c.ttl).Err(); err != nil {
		c.logger.Warn("redis set error", zap.String("key", key), zap.Error(err))
	}
}

func (c *RedisCache) redisKey(key string) string {
	return c.prefix + key
}
