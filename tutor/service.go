package tutor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/BaSui01/studyflow/llm"
	"github.com/BaSui01/studyflow/llm/cache"
	"github.com/BaSui01/studyflow/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const tracerName = "github.com/BaSui01/studyflow/tutor"

// 调用结果标签
const (
	OutcomeSuccess     = "success"
	OutcomeEmpty       = "empty"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
)

// Recorder 指标记录接口，internal/metrics.Collector 实现之
type Recorder interface {
	RecordCacheLookup(agent string, hit bool)
	RecordInvocation(agent, outcome string, duration time.Duration)
	RecordSharedFlight(agent string)
}

type nopRecorder struct{}

func (nopRecorder) RecordCacheLookup(string, bool)                 {}
func (nopRecorder) RecordInvocation(string, string, time.Duration) {}
func (nopRecorder) RecordSharedFlight(string)                      {}

// Config 服务配置
type Config struct {
	// APIKey 仅用于判断凭据是否就绪，实际认证由 Provider 完成
	APIKey string

	Invoker InvokerConfig

	// SingleFlight 合并同一缓存键的并发未命中
	SingleFlight bool
}

// DefaultConfig 返回默认配置（不含凭据）
func DefaultConfig() Config {
	return Config{
		Invoker:      DefaultInvokerConfig(),
		SingleFlight: true,
	}
}

// Option 服务选项
type Option func(*Service)

// WithCache 指定响应缓存，默认无界内存缓存
func WithCache(c cache.ResponseCache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithKeyStrategy 指定缓存键策略，默认按是否带图区分
func WithKeyStrategy(ks cache.KeyStrategy) Option {
	return func(s *Service) {
		if ks != nil {
			s.keys = ks
		}
	}
}

// WithRegistry 指定 Agent 配置表，默认内置配置
func WithRegistry(r *Registry) Option {
	return func(s *Service) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithRecorder 指定指标记录器
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithLogger 指定日志
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// Service 辅导任务入口
type Service struct {
	cfg       Config
	invoker   *Invoker
	cache     cache.ResponseCache
	keys      cache.KeyStrategy
	registry  *Registry
	recorder  Recorder
	logger    *zap.Logger
	tracer    trace.Tracer
	configErr error

	flights  singleflight.Group
	flightMu sync.Mutex
	inflight map[string]*flight
}

// flight 同一缓存键的共享调用。waiters 归零时取消 ctx。
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// New 创建服务。凭据是否存在只在此处判断一次；缺失时服务仍可构建，
// 但每次调用都返回 CONFIGURATION_MISSING。
func New(cfg Config, provider llm.Provider, opts ...Option) *Service {
	s := &Service{
		cfg:      cfg,
		cache:    cache.NewMemoryCache(),
		keys:     cache.NewPresenceKeyStrategy(),
		recorder: nopRecorder{},
		logger:   zap.NewNop(),
		tracer:   otel.Tracer(tracerName),
		inflight: make(map[string]*flight),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = DefaultRegistry()
	}
	s.logger = s.logger.With(zap.String("component", "tutor"))

	switch {
	case strings.TrimSpace(cfg.APIKey) == "":
		s.configErr = types.NewConfigurationMissingError("API key")
	case provider == nil:
		s.configErr = types.NewConfigurationMissingError("model provider")
	}
	if s.configErr != nil {
		s.logger.Error("tutor service is not configured", zap.Error(s.configErr))
	} else {
		s.invoker = NewInvoker(provider, cfg.Invoker, s.logger)
	}

	return s
}

// Ready 凭据是否就绪
func (s *Service) Ready() bool {
	return s.configErr == nil
}

// ConfigError 返回构建时检测到的配置错误
func (s *Service) ConfigError() error {
	return s.configErr
}

// Registry 返回 Agent 配置表
func (s *Service) Registry() *Registry {
	return s.registry
}

// ProcessTask 处理一次辅导请求，image 为空白表示无图
func (s *Service) ProcessTask(ctx context.Context, subject string, agent AgentID, input, image string) (string, error) {
	return s.Process(ctx, CompletionRequest{
		Subject:   subject,
		Agent:     agent,
		InputText: input,
		Image:     image,
	})
}

// Process 处理一次辅导请求
func (s *Service) Process(ctx context.Context, req CompletionRequest) (string, error) {
	ctx, span := s.tracer.Start(ctx, "tutor.ProcessTask",
		trace.WithAttributes(
			attribute.String("tutor.subject", req.Subject),
			attribute.String("tutor.agent", string(req.Agent)),
			attribute.Bool("tutor.has_image", req.HasImage()),
		))
	defer span.End()

	text, err := s.process(ctx, req, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return text, err
}

func (s *Service) process(ctx context.Context, req CompletionRequest, span trace.Span) (string, error) {
	if s.configErr != nil {
		s.logger.Warn("task rejected", zap.String("agent", string(req.Agent)), zap.Error(s.configErr))
		return "", s.configErr
	}

	profile, ok := s.registry.Lookup(req.Agent)
	if !ok {
		err := types.NewInvalidRequestError(fmt.Sprintf("unknown agent %q", req.Agent))
		s.logger.Debug("task rejected", zap.String("agent", string(req.Agent)), zap.Error(err))
		return "", err
	}
	req.Agent = profile.ID
	req.InputText = strings.TrimSpace(req.InputText)
	agent := string(profile.ID)

	key := s.keys.Key(cache.KeyRequest{
		Subject:   req.Subject,
		Agent:     agent,
		InputText: req.InputText,
		Image:     req.Image,
	})

	if text, hit := s.cache.Get(ctx, key); hit {
		s.recorder.RecordCacheLookup(agent, true)
		span.SetAttributes(attribute.Bool("tutor.cache_hit", true))
		return text, nil
	}
	s.recorder.RecordCacheLookup(agent, false)
	span.SetAttributes(attribute.Bool("tutor.cache_hit", false))

	if !s.cfg.SingleFlight {
		return s.invokeAndStore(ctx, key, req, profile)
	}

	return s.shared(ctx, key, req, profile)
}

// shared 合并同一键的并发未命中，共享调用在最后一个等待者离开时取消
func (s *Service) shared(ctx context.Context, key string, req CompletionRequest, profile AgentProfile) (string, error) {
	s.flightMu.Lock()
	f, ok := s.inflight[key]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		s.inflight[key] = f
	}
	f.waiters++
	ch := s.flights.DoChan(key, func() (v any, err error) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("shared invocation panicked",
					zap.String("agent", string(profile.ID)),
					zap.Any("panic", r),
					zap.Stack("stack"))
				err = types.NewError(types.ErrInternalError, fmt.Sprintf("invocation panicked: %v", r))
			}
		}()
		if text, hit := s.cache.Get(f.ctx, key); hit {
			return text, nil
		}
		return s.invokeAndStore(f.ctx, key, req, profile)
	})
	s.flightMu.Unlock()
	defer s.leave(key, f)

	select {
	case res := <-ch:
		if res.Shared {
			s.recorder.RecordSharedFlight(string(profile.ID))
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Service) leave(key string, f *flight) {
	s.flightMu.Lock()
	defer s.flightMu.Unlock()
	if f.waiters--; f.waiters > 0 {
		return
	}
	f.cancel()
	if s.inflight[key] == f {
		delete(s.inflight, key)
		// 被取消的调用可能尚未返回，后续请求需要发起新的调用
		s.flights.Forget(key)
	}
}

func (s *Service) invokeAndStore(ctx context.Context, key string, req CompletionRequest, profile AgentProfile) (string, error) {
	agent := string(profile.ID)
	content := Assemble(req, profile)

	start := time.Now()
	text, err := s.invoker.Invoke(ctx, content, profile)
	s.recorder.RecordInvocation(agent, outcomeOf(text, err), time.Since(start))
	if err != nil {
		return "", err
	}

	if text == "" {
		s.logger.Warn("empty completion is not cached", zap.String("agent", agent))
		return "", nil
	}
	s.cache.Set(ctx, key, text)
	return text, nil
}

func outcomeOf(text string, err error) string {
	switch {
	case err == nil && text == "":
		return OutcomeEmpty
	case err == nil:
		return OutcomeSuccess
	case types.IsRateLimited(err):
		return OutcomeRateLimited
	default:
		return OutcomeError
	}
}
