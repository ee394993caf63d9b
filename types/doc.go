// Copyright (c) StudyFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供 StudyFlow 的结构化错误定义。

types 是最底层的公共包，不依赖任何内部包。Provider、辅导服务与 HTTP 层
通过同一套错误码交换失败语义，避免按错误文本判断。

# 核心类型

  - Error / ErrorCode — 结构化错误，含 HTTP 状态码、Retryable、Provider 标记
  - OverloadedMessage — 上游限流时展示给用户的固定提示

# 主要能力

  - 常用构造：NewConfigurationMissingError / NewRateLimitedError / NewInvalidRequestError
  - 错误判断：AsError / IsErrorCode / IsRateLimited / IsRetryable / GetErrorCode
*/
package types
