// Copyright 2026 StudyFlow Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

包 gemini 基于 google.golang.org/genai 实现 llm.Provider，调用 Gemini
generateContent 接口完成单轮生成。

# 核心类型

  - GeminiProvider — Provider 实现，持有 genai.Client
  - NewGeminiProvider — 根据 providers.GeminiConfig 创建实例

# 错误映射

genai.APIError 按 HTTP 状态码映射为 *types.Error（见 providers.MapHTTPError），
429 映射为 RATE_LIMITED；上下文超时映射为 UPSTREAM_TIMEOUT；
其余网络错误映射为可重试的 UPSTREAM_ERROR。内联图片 base64 非法时
返回 INVALID_REQUEST，不发起请求。
*/
package gemini
