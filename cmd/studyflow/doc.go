// Copyright (c) StudyFlow Authors.
// Licensed under the MIT License.

/*
Command studyflow 是 StudyFlow 的服务入口。

# 子命令

  - serve   — 启动 HTTP 服务（/api/v1/tasks、/api/v1/agents、/health、/ready、/metrics）
  - ask     — 单次提交辅导任务并打印模型回答
  - health  — 探测运行中服务的 /health 端点
  - version — 打印构建信息

# 配置

配置按 默认值 → YAML 文件（--config）→ STUDYFLOW_* 环境变量 的顺序合并。
模型凭据读取 STUDYFLOW_LLM_API_KEY，未设置时回退到 GEMINI_API_KEY。
凭据缺失时服务仍会启动，任务请求返回 503。
*/
package main
