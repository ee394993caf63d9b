// 版权所有 2024 StudyFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 llm 定义 StudyFlow 与外部大模型服务之间的传输契约。

# 概述

上层 tutor 包只依赖 [Provider] 接口：传入结构化的多段内容
（文本 + 可选内联图片）与生成配置，返回单段文本或错误。具体的
服务商实现位于 llm/providers 下，缓存实现位于 llm/cache。

# 核心类型

  - [Provider]：Generate / Name
  - [GenerateRequest] / [GenerateResponse]：单轮生成请求与响应
  - [Content] / [Part] / [InlineData]：多段内容
  - [GenerationConfig] / [ResponseFormat]：采样参数与响应格式提示

# 错误约定

Provider 返回的错误应尽量为 *types.Error 并填写 HTTPStatus，
以便调用方按结构化状态分类，而不是解析错误文本。
*/
package llm
