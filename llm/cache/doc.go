// 版权所有 2024 StudyFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 cache 提供补全结果的去重缓存：缓存键推导与响应缓存。

# 概述

同一学科、同一 Agent、同一输入的请求在辅导场景中大量重复。本包为
tutor 包提供两件事：从请求的关键字段推导稳定的缓存键，以及进程内的
key → 文本存储。

# 核心接口

  - KeyStrategy：缓存键推导策略，内置 presence（默认，只记录是否带图）
    与 content_hash（额外包含图片内容 SHA-256）两种实现。
  - ResponseCache：Has / Get / Set 三个操作，不返回错误。

# 实现

  - MemoryCache：无上限、无 TTL 的并发安全 map（基线实现）。
  - LRUCache：带容量与可选 TTL 的 LRU，可直接替换 MemoryCache。
  - RedisCache：基于 go-redis 的远端存储，后端错误记录日志并按未命中处理。
  - TieredCache：L1 本地 + L2 Redis，L2 命中时回填 L1。

# 使用方式

	strategy, _ := cache.NewKeyStrategy(cache.KeyStrategyPresence)
	store := cache.NewMemoryCache()
	key := strategy.Key(cache.KeyRequest{Subject: "Math", Agent: "SPEED", InputText: "2+2"})
	if text, ok := store.Get(ctx, key); ok {
		return text
	}
*/
package cache
