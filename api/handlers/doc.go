// Copyright (c) StudyFlow Authors.
// Licensed under the MIT License.

/*
Package handlers 提供 StudyFlow HTTP API 的请求处理器实现。

# 核心类型

  - TaskHandler      — 辅导任务处理器（POST /api/v1/tasks）
  - AgentHandler     — Agent 列表（GET /api/v1/agents）
  - HealthHandler    — 存活、就绪与版本信息（/health, /ready, /version）
  - Response         — 统一 JSON 响应结构（success + data + error + timestamp）
  - HealthCheck      — 可插拔健康检查接口，FuncHealthCheck 为函数实现

# 错误映射

任务处理错误按错误码映射为 HTTP 状态：RATE_LIMITED → 429（固定的过载提示），
CONFIGURATION_MISSING → 503，INVALID_REQUEST → 400，其余上游错误 → 502。
*/
package handlers
