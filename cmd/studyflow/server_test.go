package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/studyflow/config"
)

func newTestServer(t *testing.T, cfg *config.Config) (*Server, http.Handler) {
	t.Helper()
	srv, err := NewServer(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		srv.rateLimiterCancel()
		_ = srv.deps.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return srv, srv.Handler(ctx)
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	r.RemoteAddr = "192.0.2.1:5000"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestServer_WithoutCredential(t *testing.T) {
	cfg := config.DefaultConfig()
	_, h := newTestServer(t, cfg)

	health := serve(h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, health.Code)
	assert.Contains(t, health.Body.String(), `"credential_configured":false`)

	ready := serve(h, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, ready.Code)

	task := serve(h, http.MethodPost, "/api/v1/tasks", `{"subject":"math","agent":"SPEED","input":"1+1"}`)
	assert.Equal(t, http.StatusServiceUnavailable, task.Code)
	assert.Contains(t, task.Body.String(), "CONFIGURATION_MISSING")

	agents := serve(h, http.MethodGet, "/api/v1/agents", "")
	assert.Equal(t, http.StatusOK, agents.Code)
	assert.Contains(t, agents.Body.String(), "SOCRATIC")

	m := serve(h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, m.Code)
	assert.Contains(t, m.Body.String(), "studyflow_http_requests_total")
}

// fakeGemini 模拟 generateContent 端点
func fakeGemini(t *testing.T, calls *atomic.Int32, status int, body string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestServer_TaskIsCached(t *testing.T) {
	var calls atomic.Int32
	upstream := fakeGemini(t, &calls, http.StatusOK,
		`{"candidates": [{"content": {"role": "model", "parts": [{"text": "x = 2"}]}, "finishReason": "STOP"}]}`)

	cfg := config.DefaultConfig()
	cfg.LLM.APIKey = "test-key"
	cfg.LLM.BaseURL = upstream.URL + "/"
	_, h := newTestServer(t, cfg)

	body := `{"subject":"math","agent":"SPEED","input":"Solve 2x + 3 = 7"}`
	for i := 0; i < 3; i++ {
		w := serve(h, http.MethodPost, "/api/v1/tasks", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp struct {
			Success bool `json:"success"`
			Data    struct {
				Text  string `json:"text"`
				Agent string `json:"agent"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "x = 2", resp.Data.Text)
	}
	assert.Equal(t, int32(1), calls.Load())

	m := serve(h, http.MethodGet, "/metrics", "")
	assert.Contains(t, m.Body.String(), `studyflow_response_cache_lookups_total{agent="SPEED",result="hit"} 2`)
}

func TestServer_RateLimitedUpstream(t *testing.T) {
	var calls atomic.Int32
	upstream := fakeGemini(t, &calls, http.StatusTooManyRequests,
		`{"error": {"code": 429, "message": "Resource has been exhausted", "status": "RESOURCE_EXHAUSTED"}}`)

	cfg := config.DefaultConfig()
	cfg.LLM.APIKey = "test-key"
	cfg.LLM.BaseURL = upstream.URL + "/"
	_, h := newTestServer(t, cfg)

	body := `{"subject":"math","agent":"COACH","input":"help"}`
	w := serve(h, http.MethodPost, "/api/v1/tasks", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "The system is overloaded")
	first := calls.Load()
	require.Positive(t, first)

	// 失败不写缓存，重复请求再次到达上游
	w = serve(h, http.MethodPost, "/api/v1/tasks", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Greater(t, calls.Load(), first)
}

func TestServer_TieredCacheWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	var calls atomic.Int32
	upstream := fakeGemini(t, &calls, http.StatusOK,
		`{"candidates": [{"content": {"role": "model", "parts": [{"text": "F = ma"}]}, "finishReason": "STOP"}]}`)

	cfg := config.DefaultConfig()
	cfg.LLM.APIKey = "test-key"
	cfg.LLM.BaseURL = upstream.URL + "/"
	cfg.Cache.Backend = "tiered"
	cfg.Redis.Addr = mr.Addr()
	cfg.Redis.HealthCheckInterval = 0
	srv, h := newTestServer(t, cfg)
	require.NotNil(t, srv.deps.redis)

	w := serve(h, http.MethodPost, "/api/v1/tasks", `{"subject":"physics","agent":"PERFECT","input":"Newton's second law"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], cfg.Cache.RedisPrefix))

	ready := serve(h, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, ready.Code)
	assert.Contains(t, ready.Body.String(), `"redis"`)

	m := serve(h, http.MethodGet, "/metrics", "")
	assert.Contains(t, m.Body.String(), `studyflow_dependency_up{dependency="redis"} 1`)
}

func TestServer_UnknownProfilesFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Agents.ProfilesPath = t.TempDir() + "/missing.yaml"

	_, err := NewServer(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
}
