// 版权所有 2024 StudyFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 tutor 实现辅导请求的编排：Agent 配置、Prompt 组装、带错误分类的
模型调用，以及带去重缓存的任务入口。

# 调用流程

	ProcessTask → 推导缓存键 → 查缓存
	  命中 → 返回
	  未命中 → Assemble → Invoker.Invoke → 非空结果写入缓存 → 返回

# 核心类型

  - Registry / AgentProfile：启动时加载、运行期不可变的 Agent 配置表
  - Assemble：将请求组装为单轮 user 内容（文本在前，图片在后）
  - Invoker：单次调用 Provider，429 类错误转换为 RATE_LIMITED，其余原样返回
  - Service：对外入口 ProcessTask，凭据缺失时所有调用返回 CONFIGURATION_MISSING

# 并发

Service 可被多个 goroutine 并发调用。开启 SingleFlight 后，同一缓存键
并发未命中只会触发一次外部调用，结果分发给所有等待者。
*/
package tutor
