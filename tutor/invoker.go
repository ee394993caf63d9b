package tutor

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/BaSui01/studyflow/llm"
	"github.com/BaSui01/studyflow/llm/providers/gemini"
	"github.com/BaSui01/studyflow/types"

	"go.uber.org/zap"
)

// 默认生成参数，模型沿用 gemini.DefaultModel
const (
	DefaultTemperature = float32(0.2)
	DefaultTopP        = float32(0.8)
)

// FailureKind 外部调用失败分类
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureRateLimited
	FailureOther
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureRateLimited:
		return "rate_limited"
	default:
		return "other"
	}
}

// Classify 对调用错误分类。
// 优先看结构化状态（HTTPStatus 429 或 RATE_LIMITED 错误码），
// 否则回退到错误文本是否包含 "429"。
func Classify(err error) FailureKind {
	if err == nil {
		return FailureNone
	}
	if e, ok := types.AsError(err); ok {
		if e.Code == types.ErrRateLimited || e.HTTPStatus == http.StatusTooManyRequests {
			return FailureRateLimited
		}
	}
	if strings.Contains(err.Error(), "429") {
		return FailureRateLimited
	}
	return FailureOther
}

// InvokerConfig 调用参数
type InvokerConfig struct {
	Model       string
	Temperature float32
	TopP        float32

	// RequestTimeout 单次调用的截止时间，0 表示不设置
	RequestTimeout time.Duration
}

// DefaultInvokerConfig 返回默认调用参数
func DefaultInvokerConfig() InvokerConfig {
	return InvokerConfig{
		Model:       gemini.DefaultModel,
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
	}
}

// Invoker 单次调用 Provider 并对失败分类。不重试。
type Invoker struct {
	provider llm.Provider
	cfg      InvokerConfig
	logger   *zap.Logger
}

// NewInvoker 创建调用器
func NewInvoker(provider llm.Provider, cfg InvokerConfig, logger *zap.Logger) *Invoker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Model == "" {
		cfg.Model = gemini.DefaultModel
	}
	return &Invoker{
		provider: provider,
		cfg:      cfg,
		logger:   logger.With(zap.String("component", "tutor_invoker")),
	}
}

// Invoke 发送一轮内容并返回文本。
// 限流类失败转换为 RATE_LIMITED（固定提示语），其余错误原样返回。
func (i *Invoker) Invoke(ctx context.Context, content llm.Content, profile AgentProfile) (string, error) {
	if i.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.cfg.RequestTimeout)
		defer cancel()
	}

	req := &llm.GenerateRequest{
		Model:    i.cfg.Model,
		Contents: []llm.Content{content},
		Config: llm.GenerationConfig{
			Temperature:    i.cfg.Temperature,
			TopP:           i.cfg.TopP,
			ResponseFormat: profile.ResponseFormat,
		},
	}

	resp, err := i.provider.Generate(ctx, req)
	if err != nil {
		kind := Classify(err)
		i.logger.Warn("model invocation failed",
			zap.String("agent", string(profile.ID)),
			zap.String("model", i.cfg.Model),
			zap.Stringer("failure", kind),
			zap.Error(err))
		if kind == FailureRateLimited {
			return "", types.NewRateLimitedError()
		}
		return "", err
	}
	if resp == nil {
		return "", nil
	}
	return resp.Text, nil
}
