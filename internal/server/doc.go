// 版权所有 2024 StudyFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 server 提供 HTTP 服务器生命周期管理：非阻塞启动、
按上下文阻塞运行、优雅关闭与关闭钩子。

# 核心类型

  - Manager：封装 net/http.Server 与监听器，提供 Start/Run/Shutdown。
  - Config：监听地址、读写超时、空闲超时、请求头上限与关闭超时。
  - ShutdownHook：服务器停止后按注册逆序执行的清理函数。

# 使用示例

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	srv := server.NewManager(handler, cfg, logger)
	srv.OnShutdown(redisManager.Close)
	err := srv.Run(ctx)
*/
package server
