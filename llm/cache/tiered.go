package cache

import (
	"context"

	"go.uber.org/zap"
)

// TieredCache 多级缓存：L1 本地 + L2 远端
type TieredCache struct {
	local  ResponseCache
	remote ResponseCache
	logger *zap.Logger
}

// NewTieredCache 创建多级缓存
func NewTieredCache(local, remote ResponseCache, logger *zap.Logger) *TieredCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TieredCache{local: local, remote: remote, logger: logger}
}

// Has 任一级存在即为存在
func (c *TieredCache) Has(ctx context.Context, key string) bool {
	return c.local.Has(ctx, key) || c.remote.Has(ctx, key)
}

// Get 先查 L1，未命中再查 L2 并回填 L1
func (c *TieredCache) Get(ctx context.Context, key string) (string, bool) {
	if text, ok := c.local.Get(ctx, key); ok {
		return text, true
	}
	text, ok := c.remote.Get(ctx, key)
	if !ok {
		return "", false
	}
	c.local.Set(ctx, key, text)
	c.logger.Debug("backfilled local cache", zap.String("key", key))
	return text, true
}

// Set 同时写两级
func (c *TieredCache) Set(ctx context.Context, key string, text string) {
	c.local.Set(ctx, key, text)
	c.remote.Set(ctx, key, text)
}
