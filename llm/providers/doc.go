// Copyright 2026 StudyFlow Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

包 providers 提供服务商实现共享的配置与错误映射，具体实现位于子包
（目前为 gemini）。

# 核心类型与函数

  - BaseProviderConfig — APIKey、BaseURL、Model、Timeout
  - MapHTTPError — 将 HTTP 状态码映射为带 HTTPStatus / Retryable 的 *types.Error
  - ChooseModel — 按优先级选择模型（请求 > 默认 > 兜底）
*/
package providers
