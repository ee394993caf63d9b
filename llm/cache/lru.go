package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// LRUCache 带容量上限与可选 TTL 的 ResponseCache。
// 链表头部为最近使用，满时淘汰尾部。
type LRUCache struct {
	capacity int
	ttl      time.Duration // 0 表示不过期
	now      func() time.Time

	mu    sync.Mutex
	order *list.List
	index map[string]*list.Element
	stats CacheStats
}

type lruEntry struct {
	key       string
	text      string
	expiresAt time.Time // 零值表示不过期
}

// NewLRUCache 创建 LRU 缓存，capacity <= 0 时取 1
func NewLRUCache(capacity int, ttl time.Duration) *LRUCache {
	return &LRUCache{
		capacity: max(capacity, 1),
		ttl:      ttl,
		now:      time.Now,
		order:    list.New(),
		index:    make(map[string]*list.Element),
	}
}

// lookup 返回未过期的元素；过期元素顺带删除。调用方持有锁。
func (c *LRUCache) lookup(key string) *list.Element {
	el, ok := c.index[key]
	if !ok {
		return nil
	}
	if e := el.Value.(*lruEntry); !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.order.Remove(el)
		delete(c.index, key)
		return nil
	}
	return el
}

// Has 不改变使用顺序，也不计入命中统计
func (c *LRUCache) Has(_ context.Context, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookup(key) != nil
}

func (c *LRUCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el := c.lookup(key)
	if el == nil {
		c.stats.Misses++
		return "", false
	}
	c.order.MoveToFront(el)
	c.stats.Hits++
	return el.Value.(*lruEntry).text, true
}

func (c *LRUCache) Set(_ context.Context, key string, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = c.now().Add(c.ttl)
	}

	if el, ok := c.index[key]; ok {
		e := el.Value.(*lruEntry)
		e.text, e.expiresAt = text, expiresAt
		c.order.MoveToFront(el)
		return
	}

	for c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.index, oldest.Value.(*lruEntry).key)
		c.stats.Evictions++
	}
	c.index[key] = c.order.PushFront(&lruEntry{key: key, text: text, expiresAt: expiresAt})
}

// Len 当前条目数，包含尚未被访问清理的过期条目
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *LRUCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = c.order.Len()
	return s
}
