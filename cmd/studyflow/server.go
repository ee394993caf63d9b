package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BaSui01/studyflow/api/handlers"
	"github.com/BaSui01/studyflow/config"
	"github.com/BaSui01/studyflow/internal/metrics"
	"github.com/BaSui01/studyflow/internal/server"
	"github.com/BaSui01/studyflow/internal/telemetry"
)

const metricsNamespace = "studyflow"

// =============================================================================
// 🖥️ Server 结构
// =============================================================================

// Server 是 StudyFlow 的 HTTP 服务
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	registry  *prometheus.Registry
	collector *metrics.Collector
	otel      *telemetry.Providers
	deps      *components

	healthHandler *handlers.HealthHandler
	taskHandler   *handlers.TaskHandler
	agentHandler  *handlers.AgentHandler

	httpManager       *server.Manager
	rateLimiterCancel context.CancelFunc
}

// NewServer 组装所有依赖，不监听端口
func NewServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s.collector = metrics.NewCollectorWithRegisterer(metricsNamespace, s.registry, logger)

	otelProviders, err := telemetry.Init(cfg.Telemetry, Version, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
		otelProviders = nil
	}
	s.otel = otelProviders

	s.deps, err = buildComponents(ctx, cfg, s.collector, func(up bool) {
		s.collector.SetDependencyUp("redis", up)
	}, logger)
	if err != nil {
		s.shutdownTelemetry()
		return nil, fmt.Errorf("failed to build components: %w", err)
	}
	if s.deps.redis != nil {
		s.collector.SetDependencyUp("redis", true)
	}

	s.initHandlers()
	s.initHTTPManager()
	return s, nil
}

// =============================================================================
// 🔧 初始化方法
// =============================================================================

func (s *Server) initHandlers() {
	s.healthHandler = handlers.NewHealthHandler(s.deps.service.ConfigError, s.logger)
	if s.deps.redis != nil {
		s.healthHandler.RegisterCheck(handlers.NewFuncHealthCheck("redis", s.deps.redis.Ping))
	}
	s.taskHandler = handlers.NewTaskHandler(s.deps.service, s.cfg.Server.MaxBodyBytes, s.logger)
	s.agentHandler = handlers.NewAgentHandler(s.deps.registry, s.logger)
}

// Handler 返回带中间件链的路由
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.healthHandler.HandleHealth)
	mux.HandleFunc("/ready", s.healthHandler.HandleReady)
	mux.HandleFunc("/version", s.healthHandler.HandleVersion(Version, BuildTime, GitCommit))
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("/api/v1/tasks", s.taskHandler.HandleCreateTask)
	mux.HandleFunc("/api/v1/agents", s.agentHandler.HandleListAgents)

	middlewares := []Middleware{
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		RequestLogger(s.logger),
		MetricsMiddleware(s.collector),
		OTelTracing(),
	}
	if s.cfg.Server.RateLimitRPS > 0 {
		middlewares = append(middlewares,
			RateLimiter(ctx, float64(s.cfg.Server.RateLimitRPS), s.cfg.Server.RateLimitBurst, skipRateLimitPaths, s.logger))
	}
	return Chain(mux, middlewares...)
}

func (s *Server) initHTTPManager() {
	rateLimiterCtx, cancel := context.WithCancel(context.Background())
	s.rateLimiterCancel = cancel

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     2 * s.cfg.Server.ReadTimeout,
		MaxHeaderBytes:  1 << 20, // 1 MB
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}
	s.httpManager = server.NewManager(s.Handler(rateLimiterCtx), serverConfig, s.logger)

	// 钩子逆序执行：先停限流清理，再关 Redis，最后刷新遥测
	s.httpManager.OnShutdown(func(ctx context.Context) error {
		return s.otel.Shutdown(ctx)
	})
	s.httpManager.OnShutdown(func(context.Context) error {
		return s.deps.Close()
	})
	s.httpManager.OnShutdown(func(context.Context) error {
		s.rateLimiterCancel()
		return nil
	})
}

// =============================================================================
// 🚀 运行与关闭
// =============================================================================

// Run 启动 HTTP 服务并阻塞到 ctx 结束，然后优雅关闭
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("HTTP server starting",
		zap.Int("port", s.cfg.Server.HTTPPort),
		zap.Bool("credential_configured", s.deps.service.Ready()),
		zap.Bool("telemetry_enabled", s.otel.Enabled()),
	)
	return s.httpManager.Run(ctx)
}

func (s *Server) shutdownTelemetry() {
	if err := s.otel.Shutdown(context.Background()); err != nil {
		s.logger.Warn("telemetry shutdown failed", zap.Error(err))
	}
}
