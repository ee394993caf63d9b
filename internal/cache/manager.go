package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrClosed 管理器已关闭
var ErrClosed = errors.New("redis manager closed")

const pingTimeout = 5 * time.Second

// Config Redis 连接配置
type Config struct {
	Addr         string
	Password     string
	DB           int
	MaxRetries   int
	PoolSize     int
	MinIdleConns int
	// HealthCheckInterval 为 0 时不做后台检查
	HealthCheckInterval time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Addr:                "localhost:6379",
		MaxRetries:          3,
		PoolSize:            10,
		MinIdleConns:        2,
		HealthCheckInterval: 30 * time.Second,
	}
}

// Option 管理器选项
type Option func(*Manager)

// WithHealthCallback 可达状态变化时回调，创建成功后先回调一次 true
func WithHealthCallback(fn func(up bool)) Option {
	return func(m *Manager) { m.onHealth = fn }
}

// Manager 持有响应缓存使用的 Redis 连接
type Manager struct {
	client   *redis.Client
	interval time.Duration
	logger   *zap.Logger
	onHealth func(up bool)

	up     atomic.Bool
	closed atomic.Bool
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewManager 建立连接并 Ping 一次，不可达时返回错误
func NewManager(ctx context.Context, cfg Config, logger *zap.Logger, opts ...Option) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s unreachable: %w", cfg.Addr, err)
	}

	m := &Manager{
		client:   client,
		interval: cfg.HealthCheckInterval,
		logger:   logger.With(zap.String("component", "redis"), zap.String("addr", cfg.Addr)),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.up.Store(true)
	m.notify(true)

	loopCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	m.cancel = stop
	if m.interval > 0 {
		go m.watch(loopCtx)
	} else {
		close(m.done)
	}

	m.logger.Info("redis connected", zap.Int("pool_size", cfg.PoolSize))
	return m, nil
}

// Client 返回底层客户端
func (m *Manager) Client() *redis.Client {
	return m.client
}

// Ping 供就绪探针使用
func (m *Manager) Ping(ctx context.Context) error {
	if m.closed.Load() {
		return ErrClosed
	}
	return m.client.Ping(ctx).Err()
}

// Close 停止后台检查并关闭连接。重复调用返回 nil。
func (m *Manager) Close() error {
	var err error
	m.once.Do(func() {
		m.closed.Store(true)
		m.cancel()
		<-m.done
		err = m.client.Close()
		m.logger.Info("redis closed")
	})
	return err
}

func (m *Manager) watch(ctx context.Context) {
	defer close(m.done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

// probe Ping 一次，状态翻转时记录日志并回调
func (m *Manager) probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	err := m.client.Ping(ctx).Err()
	up := err == nil
	if m.up.Swap(up) == up {
		return
	}
	if up {
		m.logger.Info("redis reachable again")
	} else {
		m.logger.Error("redis unreachable", zap.Error(err))
	}
	m.notify(up)
}

func (m *Manager) notify(up bool) {
	if m.onHealth != nil {
		m.onHealth(up)
	}
}
