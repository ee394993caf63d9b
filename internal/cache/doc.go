// 版权所有 2024 StudyFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 cache 管理响应缓存使用的 Redis 连接。

# 核心类型

  - Manager：持有 go-redis 客户端，启动时校验连接，后台定时 Ping，
    可达状态翻转时通过 WithHealthCallback 上报，Close 时停止检查并释放连接。
  - Config：地址、密码、连接池与健康检查间隔。

键值读写由 llm/cache.RedisCache 基于 Manager.Client() 完成。
*/
package cache
