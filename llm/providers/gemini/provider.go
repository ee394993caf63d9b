package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/BaSui01/studyflow/internal/tlsutil"
	"github.com/BaSui01/studyflow/llm"
	"github.com/BaSui01/studyflow/llm/providers"
	"github.com/BaSui01/studyflow/types"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultModel 默认模型
const DefaultModel = "gemini-1.5-flash"

// GeminiProvider 实现 Google Gemini 的 llm.Provider
type GeminiProvider struct {
	cfg    providers.GeminiConfig
	client *genai.Client
	logger *zap.Logger
}

// NewGeminiProvider 创建 Gemini Provider
func NewGeminiProvider(ctx context.Context, cfg providers.GeminiConfig, logger *zap.Logger) (*GeminiProvider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, types.NewConfigurationMissingError("gemini api key")
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	cc.HTTPClient = tlsutil.HTTPClient(cfg.Timeout)

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiProvider{
		cfg:    cfg,
		client: client,
		logger: logger.With(zap.String("provider", "gemini")),
	}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

// Generate 调用 generateContent
func (p *GeminiProvider) Generate(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	if req == nil {
		return nil, types.NewInvalidRequestError("nil generate request").WithProvider(p.Name())
	}

	contents, err := toGenaiContents(req.Contents)
	if err != nil {
		return nil, types.NewInvalidRequestError(err.Error()).WithProvider(p.Name()).WithCause(err)
	}

	model := providers.ChooseModel(req, p.cfg.Model, DefaultModel)
	resp, err := p.client.Models.GenerateContent(ctx, model, contents, toGenaiConfig(req.Config))
	if err != nil {
		return nil, mapGenaiError(err, p.Name())
	}

	out := &llm.GenerateResponse{
		Text:     resp.Text(),
		Provider: p.Name(),
		Model:    model,
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		out.FinishReason = string(resp.Candidates[0].FinishReason)
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = llm.Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}

	p.logger.Debug("generate completed",
		zap.String("model", model),
		zap.String("finish_reason", out.FinishReason),
		zap.Int("total_tokens", out.Usage.TotalTokens),
	)
	return out, nil
}

// toGenaiContents 将统一格式转换为 genai 格式，内联数据在此解码
func toGenaiContents(contents []llm.Content) ([]*genai.Content, error) {
	out := make([]*genai.Content, 0, len(contents))
	for _, c := range contents {
		gc := &genai.Content{Role: string(c.Role)}
		if gc.Role == "" {
			gc.Role = string(llm.RoleUser)
		}
		for _, part := range c.Parts {
			switch {
			case part.InlineData != nil:
				data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if err != nil {
					return nil, fmt.Errorf("inline data is not valid base64: %w", err)
				}
				if len(data) == 0 {
					return nil, errors.New("inline data is empty")
				}
				gc.Parts = append(gc.Parts, &genai.Part{
					InlineData: &genai.Blob{MIMEType: part.InlineData.MIMEType, Data: data},
				})
			case part.Text != "":
				gc.Parts = append(gc.Parts, &genai.Part{Text: part.Text})
			}
		}
		if len(gc.Parts) > 0 {
			out = append(out, gc)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("request has no content parts")
	}
	return out, nil
}

func toGenaiConfig(cfg llm.GenerationConfig) *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(cfg.Temperature),
		TopP:        genai.Ptr(cfg.TopP),
	}
	if cfg.ResponseFormat.Valid() {
		gc.ResponseMIMEType = cfg.ResponseFormat.MIMEType()
	}
	return gc
}

// mapGenaiError 将 SDK 错误转换为携带 HTTPStatus 的 *types.Error
func mapGenaiError(err error, provider string) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return providers.MapHTTPError(apiErr.Code, apiErrMessage(apiErr), provider).WithCause(err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return providers.MapHTTPError(apiErrPtr.Code, apiErrMessage(*apiErrPtr), provider).WithCause(err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return types.NewError(types.ErrUpstreamTimeout, "gemini request timed out").
			WithHTTPStatus(http.StatusGatewayTimeout).
			WithRetryable(true).
			WithProvider(provider).
			WithCause(err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return types.NewError(types.ErrUpstreamError, err.Error()).
		WithHTTPStatus(http.StatusBadGateway).
		WithRetryable(true).
		WithProvider(provider).
		WithCause(err)
}

func apiErrMessage(e genai.APIError) string {
	if e.Status != "" {
		return fmt.Sprintf("%s (status: %s)", e.Message, e.Status)
	}
	return e.Message
}
