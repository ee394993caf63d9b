// 版权所有 2024 StudyFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的指标采集，覆盖 HTTP 请求、
响应缓存、模型调用与依赖健康四个维度。

# 核心类型

  - Collector：指标收集器，实现 tutor.Recorder，可直接注入辅导服务。

# 主要能力

  - HTTP 指标：请求总数、耗时、请求/响应体大小，
    状态码归类为 2xx/3xx/4xx/5xx，429 单独计数。
  - 缓存指标：按 agent 统计命中与未命中。
  - 调用指标：按 agent/outcome 统计调用次数与耗时，
    以及复用进行中调用的请求数。
  - 依赖指标：Redis 等外部依赖的可达状态 Gauge。
*/
package metrics
