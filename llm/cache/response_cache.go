package cache

import (
	"context"
	"sync"
	"sync/atomic"
)

// ResponseCache 补全结果缓存
// 实现必须并发安全；后端故障按未命中处理，不向调用方返回错误
type ResponseCache interface {
	Has(ctx context.Context, key string) bool
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, text string)
}

// CacheStats 缓存统计
type CacheStats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Size      int   `json:"size"`
}

// MemoryCache 进程内无界缓存：无淘汰、无 TTL，生命周期与进程相同
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewMemoryCache 创建内存缓存
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

// Has 判断键是否存在
func (c *MemoryCache) Has(_ context.Context, key string) bool {
	c.mu.RLock()
	_, ok := c.entries[key]
	c.mu.RUnlock()
	return ok
}

// Get 获取缓存
func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	text, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return text, ok
}

// Set 写入缓存，重复写入同一键时后写覆盖
func (c *MemoryCache) Set(_ context.Context, key string, text string) {
	c.mu.Lock()
	c.entries[key] = text
	c.mu.Unlock()
}

// Len 当前条目数
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats 返回统计信息
func (c *MemoryCache) Stats() CacheStats {
	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   c.Len(),
	}
}
