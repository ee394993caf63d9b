package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ShutdownHook 服务器停止后按注册逆序执行的清理函数
type ShutdownHook func(ctx context.Context) error

// Config 监听与超时设置
type Config struct {
	Addr            string        `yaml:"addr" json:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"` // 需覆盖最慢的一次模型调用
	IdleTimeout     time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" json:"max_header_bytes"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// DefaultConfig 返回默认服务器配置
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    2 * time.Minute,
		IdleTimeout:     2 * time.Minute,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: 15 * time.Second,
	}
}

type state int

const (
	stateIdle state = iota
	stateServing
	stateStopped
)

// Manager 管理单个 http.Server 的生命周期：idle → serving → stopped，不可重启。
type Manager struct {
	cfg    Config
	srv    *http.Server
	logger *zap.Logger

	mu    sync.Mutex
	st    state
	ln    net.Listener
	hooks []ShutdownHook

	// serveErr 在 Serve 非正常退出时收到一次错误
	serveErr chan error
}

// NewManager 创建服务器管理器
func NewManager(handler http.Handler, cfg Config, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		cfg: cfg,
		srv: &http.Server{
			Addr:           cfg.Addr,
			Handler:        handler,
			ReadTimeout:    cfg.ReadTimeout,
			WriteTimeout:   cfg.WriteTimeout,
			IdleTimeout:    cfg.IdleTimeout,
			MaxHeaderBytes: cfg.MaxHeaderBytes,
		},
		logger:   logger.With(zap.String("component", "http_server")),
		serveErr: make(chan error, 1),
	}
}

// OnShutdown 注册清理函数
func (m *Manager) OnShutdown(hook ShutdownHook) {
	m.mu.Lock()
	m.hooks = append(m.hooks, hook)
	m.mu.Unlock()
}

// Start 绑定端口并在后台开始服务
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.st {
	case stateServing:
		return errors.New("server: already serving")
	case stateStopped:
		return errors.New("server: stopped")
	}

	ln, err := net.Listen("tcp", m.cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", m.cfg.Addr, err)
	}
	m.ln, m.st = ln, stateServing
	m.logger.Info("listening", zap.String("addr", ln.Addr().String()))

	go func() {
		err := m.srv.Serve(ln)
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return
		}
		m.serveErr <- err
	}()
	return nil
}

// Run 启动后阻塞，直到 ctx 结束或 Serve 失败，然后执行 Shutdown
func (m *Manager) Run(ctx context.Context) error {
	if err := m.Start(); err != nil {
		return err
	}

	var failure error
	select {
	case <-ctx.Done():
		m.logger.Info("stop requested", zap.Error(context.Cause(ctx)))
	case failure = <-m.serveErr:
		m.logger.Error("serve failed", zap.Error(failure))
	}
	return errors.Join(failure, m.Shutdown(context.WithoutCancel(ctx)))
}

// Shutdown 停止接收连接并等待进行中的请求，之后逆序执行钩子。重复调用无效果。
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.st == stateStopped {
		m.mu.Unlock()
		return nil
	}
	m.st = stateStopped
	hooks := append([]ShutdownHook(nil), m.hooks...)
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, m.cfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := m.srv.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server: shutdown: %w", err))
	}
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			m.logger.Warn("shutdown hook failed", zap.Int("hook", i), zap.Error(err))
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	m.logger.Info("stopped", zap.Bool("clean", err == nil))
	return err
}

// Addr 返回实际监听地址，未启动时返回配置地址
func (m *Manager) Addr() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ln != nil {
		return m.ln.Addr().String()
	}
	return m.cfg.Addr
}

// IsRunning 是否处于服务状态
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st == stateServing
}
