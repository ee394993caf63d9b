// Copyright 2026 StudyFlow Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package testutil 提供 StudyFlow 测试的共享工具和辅助函数。

# 核心能力

  - 上下文辅助: TestContext，随测试结束取消
  - 异步断言: AssertEventuallyTrue，超时轮询等待条件满足

# 子包

  - testutil/mocks: MockProvider（llm.Provider），支持固定响应、按序响应、
    错误注入、延迟与调用计数
  - testutil/fixtures: 样例请求与图片数据

# 使用示例

	ctx := testutil.TestContext(t)
	provider := mocks.NewMockProvider().WithResponse("x = 2")
	svc := tutor.New(cfg, provider)
	text, err := svc.ProcessTask(ctx, "math", tutor.AgentSpeed, "2x = 4", "")
*/
package testutil
