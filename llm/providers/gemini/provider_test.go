package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/BaSui01/studyflow/llm"
	"github.com/BaSui01/studyflow/llm/providers"
	"github.com/BaSui01/studyflow/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

func newTestProvider(t *testing.T, baseURL string) *GeminiProvider {
	t.Helper()
	p, err := NewGeminiProvider(context.Background(), providers.GeminiConfig{
		BaseProviderConfig: providers.BaseProviderConfig{
			APIKey:  "test-key",
			BaseURL: baseURL,
		},
	}, zap.NewNop())
	require.NoError(t, err)
	return p
}

func TestGeminiProvider_Name(t *testing.T) {
	p := newTestProvider(t, "")
	assert.Equal(t, "gemini", p.Name())
}

func TestNewGeminiProvider_MissingAPIKey(t *testing.T) {
	p, err := NewGeminiProvider(context.Background(), providers.GeminiConfig{}, zap.NewNop())
	assert.Nil(t, p)
	require.Error(t, err)
	assert.Equal(t, types.ErrConfigurationMissing, types.GetErrorCode(err))
}

func TestToGenaiContents(t *testing.T) {
	contents, err := toGenaiContents([]llm.Content{{
		Role: llm.RoleUser,
		Parts: []llm.Part{
			llm.NewTextPart("Subject: Math"),
			llm.NewInlinePart(llm.MIMETypeJPEG, "QUJD"),
		},
	}})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	require.Len(t, contents[0].Parts, 2)

	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "Subject: Math", contents[0].Parts[0].Text)
	require.NotNil(t, contents[0].Parts[1].InlineData)
	assert.Equal(t, "image/jpeg", contents[0].Parts[1].InlineData.MIMEType)
	assert.Equal(t, []byte("ABC"), contents[0].Parts[1].InlineData.Data)
}

func TestToGenaiContents_RejectsMalformedImage(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "非 base64", data: "not base64 !!"},
		{name: "剥离后为空", data: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := toGenaiContents([]llm.Content{{
				Role:  llm.RoleUser,
				Parts: []llm.Part{llm.NewTextPart("x"), llm.NewInlinePart(llm.MIMETypeJPEG, tt.data)},
			}})
			assert.Error(t, err)
		})
	}
}

func TestToGenaiConfig(t *testing.T) {
	gc := toGenaiConfig(llm.GenerationConfig{Temperature: 0.2, TopP: 0.8, ResponseFormat: llm.ResponseFormatJSON})
	require.NotNil(t, gc.Temperature)
	require.NotNil(t, gc.TopP)
	assert.InDelta(t, 0.2, *gc.Temperature, 1e-6)
	assert.InDelta(t, 0.8, *gc.TopP, 1e-6)
	assert.Equal(t, "application/json", gc.ResponseMIMEType)

	gc = toGenaiConfig(llm.GenerationConfig{Temperature: 0.2, TopP: 0.8})
	assert.Empty(t, gc.ResponseMIMEType)
}

func TestMapGenaiError(t *testing.T) {
	t.Run("429 映射为 RATE_LIMITED", func(t *testing.T) {
		err := mapGenaiError(genai.APIError{Code: 429, Message: "quota", Status: "RESOURCE_EXHAUSTED"}, "gemini")
		e, ok := types.AsError(err)
		require.True(t, ok)
		assert.Equal(t, types.ErrRateLimited, e.Code)
		assert.Equal(t, http.StatusTooManyRequests, e.HTTPStatus)
		assert.Contains(t, e.Message, "RESOURCE_EXHAUSTED")
	})

	t.Run("500 映射为 UPSTREAM_ERROR", func(t *testing.T) {
		err := mapGenaiError(genai.APIError{Code: 500, Message: "internal"}, "gemini")
		assert.Equal(t, types.ErrUpstreamError, types.GetErrorCode(err))
		assert.True(t, types.IsRetryable(err))
	})

	t.Run("超时映射为 UPSTREAM_TIMEOUT", func(t *testing.T) {
		err := mapGenaiError(context.DeadlineExceeded, "gemini")
		assert.Equal(t, types.ErrUpstreamTimeout, types.GetErrorCode(err))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("取消原样返回", func(t *testing.T) {
		err := mapGenaiError(context.Canceled, "gemini")
		assert.Same(t, context.Canceled, err)
	})

	t.Run("网络错误映射为 UPSTREAM_ERROR", func(t *testing.T) {
		root := errors.New("connection reset")
		err := mapGenaiError(root, "gemini")
		assert.Equal(t, types.ErrUpstreamError, types.GetErrorCode(err))
		assert.ErrorIs(t, err, root)
	})
}

func TestGeminiProvider_Generate(t *testing.T) {
	var calls atomic.Int32
	var captured map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.True(t, strings.HasSuffix(r.URL.Path, "gemini-1.5-flash:generateContent"), r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "4"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 3, "candidatesTokenCount": 1, "totalTokenCount": 4}
		}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL+"/")
	resp, err := p.Generate(context.Background(), &llm.GenerateRequest{
		Contents: []llm.Content{{Role: llm.RoleUser, Parts: []llm.Part{llm.NewTextPart("2+2")}}},
		Config:   llm.GenerationConfig{Temperature: 0.2, TopP: 0.8, ResponseFormat: llm.ResponseFormatJSON},
	})
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "4", resp.Text)
	assert.Equal(t, "gemini", resp.Provider)
	assert.Equal(t, DefaultModel, resp.Model)
	assert.Equal(t, "STOP", resp.FinishReason)
	assert.Equal(t, 4, resp.Usage.TotalTokens)

	genCfg, ok := captured["generationConfig"].(map[string]any)
	require.True(t, ok, "请求应包含 generationConfig")
	assert.Equal(t, "application/json", genCfg["responseMimeType"])
}

func TestGeminiProvider_Generate_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"code": 429, "message": "Resource has been exhausted", "status": "RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL+"/")
	_, err := p.Generate(context.Background(), &llm.GenerateRequest{
		Contents: []llm.Content{{Role: llm.RoleUser, Parts: []llm.Part{llm.NewTextPart("2+2")}}},
	})
	require.Error(t, err)

	e, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrRateLimited, e.Code)
	assert.Equal(t, http.StatusTooManyRequests, e.HTTPStatus)
	assert.Equal(t, "gemini", e.Provider)
}

func TestGeminiProvider_Generate_InvalidImageNeverSent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL+"/")
	_, err := p.Generate(context.Background(), &llm.GenerateRequest{
		Contents: []llm.Content{{Role: llm.RoleUser, Parts: []llm.Part{
			llm.NewTextPart("x"),
			llm.NewInlinePart(llm.MIMETypeJPEG, "%%%"),
		}}},
	})
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))
	assert.Equal(t, int32(0), calls.Load())
}
