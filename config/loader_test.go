// 配置加载器与默认配置测试。
package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BaSui01/studyflow/llm/providers/gemini"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearCredentialEnv 避免宿主环境中的凭据干扰测试
func clearCredentialEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STUDYFLOW_LLM_API_KEY", "")
	t.Setenv(FallbackAPIKeyEnv, "")
}

// --- 默认配置测试 ---

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxBodyBytes)

	assert.Equal(t, gemini.DefaultModel, cfg.LLM.Model)
	assert.InDelta(t, 0.2, cfg.LLM.Temperature, 1e-9)
	assert.InDelta(t, 0.8, cfg.LLM.TopP, 1e-9)
	assert.Zero(t, cfg.LLM.RequestTimeout)
	assert.Empty(t, cfg.LLM.APIKey)

	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, "presence", cfg.Cache.KeyStrategy)
	assert.True(t, cfg.Cache.SingleFlight)
	assert.Zero(t, cfg.Cache.TTL)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Empty(t, cfg.Agents.ProfilesPath)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Telemetry.Enabled)

	assert.NoError(t, cfg.Validate())
}

// --- Loader 测试 ---

func TestLoader_LoadDefaults(t *testing.T) {
	clearCredentialEnv(t)

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, gemini.DefaultModel, cfg.LLM.Model)
}

func TestLoader_LoadFromYAML(t *testing.T) {
	clearCredentialEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
server:
  http_port: 8888
  read_timeout: 60s

llm:
  api_key: "yaml-key"
  model: "gemini-1.5-pro"
  request_timeout: 45s
  temperature: 0.5

cache:
  backend: lru
  max_entries: 500
  ttl: 1h
  key_strategy: content_hash
  single_flight: false

redis:
  addr: "redis.example.com:6379"
  password: "secret"
  db: 1

agents:
  profiles_path: "/etc/studyflow/agents.yaml"

log:
  level: "debug"
  format: "console"
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o644))

	cfg, err := NewLoader().WithConfigPath(configPath).Load()
	require.NoError(t, err)

	assert.Equal(t, 8888, cfg.Server.HTTPPort)
	assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout)

	assert.Equal(t, "yaml-key", cfg.LLM.APIKey)
	assert.Equal(t, "gemini-1.5-pro", cfg.LLM.Model)
	assert.Equal(t, 45*time.Second, cfg.LLM.RequestTimeout)
	assert.InDelta(t, 0.5, cfg.LLM.Temperature, 1e-9)
	assert.InDelta(t, 0.8, cfg.LLM.TopP, 1e-9)

	assert.Equal(t, "lru", cfg.Cache.Backend)
	assert.Equal(t, 500, cfg.Cache.MaxEntries)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "content_hash", cfg.Cache.KeyStrategy)
	assert.False(t, cfg.Cache.SingleFlight)

	assert.Equal(t, "redis.example.com:6379", cfg.Redis.Addr)
	assert.Equal(t, "secret", cfg.Redis.Password)
	assert.Equal(t, 1, cfg.Redis.DB)

	assert.Equal(t, "/etc/studyflow/agents.yaml", cfg.Agents.ProfilesPath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoader_LoadFromEnv(t *testing.T) {
	clearCredentialEnv(t)
	envVars := map[string]string{
		"STUDYFLOW_SERVER_HTTP_PORT":     "7777",
		"STUDYFLOW_LLM_API_KEY":          "env-key",
		"STUDYFLOW_LLM_TEMPERATURE":      "0.9",
		"STUDYFLOW_LLM_REQUEST_TIMEOUT":  "30s",
		"STUDYFLOW_CACHE_BACKEND":        "tiered",
		"STUDYFLOW_CACHE_SINGLE_FLIGHT":  "false",
		"STUDYFLOW_REDIS_ADDR":           "env-redis:6379",
		"STUDYFLOW_LOG_LEVEL":            "warn",
		"STUDYFLOW_LOG_OUTPUT_PATHS":     "stdout, /var/log/studyflow.log",
		"STUDYFLOW_AGENTS_PROFILES_PATH": "agents.yaml",
	}
	for k, v := range envVars {
		t.Setenv(k, v)
	}

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.HTTPPort)
	assert.Equal(t, "env-key", cfg.LLM.APIKey)
	assert.InDelta(t, 0.9, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 30*time.Second, cfg.LLM.RequestTimeout)
	assert.Equal(t, "tiered", cfg.Cache.Backend)
	assert.False(t, cfg.Cache.SingleFlight)
	assert.Equal(t, "env-redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, []string{"stdout", "/var/log/studyflow.log"}, cfg.Log.OutputPaths)
	assert.Equal(t, "agents.yaml", cfg.Agents.ProfilesPath)
}

func TestLoader_FallbackAPIKey(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv(FallbackAPIKeyEnv, "gemini-key")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "gemini-key", cfg.LLM.APIKey)

	t.Setenv("STUDYFLOW_LLM_API_KEY", "primary-key")
	cfg, err = NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "primary-key", cfg.LLM.APIKey)
}

func TestLoader_EnvOverridesYAML(t *testing.T) {
	clearCredentialEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
server:
  http_port: 8888
llm:
  model: "yaml-model"
  api_key: "yaml-key"
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o644))

	t.Setenv("STUDYFLOW_SERVER_HTTP_PORT", "9999")
	t.Setenv("STUDYFLOW_LLM_API_KEY", "env-key")

	cfg, err := NewLoader().WithConfigPath(configPath).Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.HTTPPort)
	assert.Equal(t, "env-key", cfg.LLM.APIKey)
	assert.Equal(t, "yaml-model", cfg.LLM.Model)
}

func TestLoader_CustomEnvPrefix(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("MYAPP_SERVER_HTTP_PORT", "6666")
	t.Setenv("MYAPP_LLM_MODEL", "custom-model")

	cfg, err := NewLoader().WithEnvPrefix("MYAPP").Load()
	require.NoError(t, err)

	assert.Equal(t, 6666, cfg.Server.HTTPPort)
	assert.Equal(t, "custom-model", cfg.LLM.Model)
}

func TestLoader_InvalidEnvValue(t *testing.T) {
	t.Setenv("STUDYFLOW_CACHE_TTL", "forever")

	_, err := NewLoader().Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STUDYFLOW_CACHE_TTL")
}

func TestLoader_InvalidEnvValuesAreJoined(t *testing.T) {
	t.Setenv("STUDYFLOW_CACHE_TTL", "forever")
	t.Setenv("STUDYFLOW_SERVER_HTTP_PORT", "eighty")

	_, err := NewLoader().Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STUDYFLOW_CACHE_TTL")
	assert.Contains(t, err.Error(), "STUDYFLOW_SERVER_HTTP_PORT")
}

func TestLoader_LookupIsolatedFromProcessEnv(t *testing.T) {
	t.Setenv("STUDYFLOW_LLM_MODEL", "from-process")
	env := map[string]string{
		"STUDYFLOW_LLM_MODEL": "from-map",
		"STUDYFLOW_CACHE_TTL": "90s",
		FallbackAPIKeyEnv:     "fallback-key",
	}

	cfg, err := NewLoader().withLookup(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}).Load()
	require.NoError(t, err)
	assert.Equal(t, "from-map", cfg.LLM.Model)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "fallback-key", cfg.LLM.APIKey)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b ,"))
	assert.Nil(t, splitList(" , "))
}

func TestLoader_WithValidator(t *testing.T) {
	t.Setenv("STUDYFLOW_SERVER_HTTP_PORT", "80")

	_, err := NewLoader().
		WithValidator(func(cfg *Config) error {
			if cfg.Server.HTTPPort < 1024 {
				return assert.AnError
			}
			return nil
		}).
		Load()
	assert.Error(t, err)
}

func TestLoader_NonExistentFile(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/non/existent/path/config.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
}

func TestLoader_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server:\n  http_port: [invalid\n"), 0o644))

	_, err := NewLoader().WithConfigPath(configPath).Load()
	assert.Error(t, err)
}

// --- Config 方法测试 ---

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "valid default config", modify: func(c *Config) {}},
		{name: "missing api key is allowed", modify: func(c *Config) { c.LLM.APIKey = "" }},
		{name: "negative port", modify: func(c *Config) { c.Server.HTTPPort = -1 }, wantErr: "invalid HTTP port"},
		{name: "port too large", modify: func(c *Config) { c.Server.HTTPPort = 70000 }, wantErr: "invalid HTTP port"},
		{name: "empty model", modify: func(c *Config) { c.LLM.Model = " " }, wantErr: "llm.model"},
		{name: "temperature too high", modify: func(c *Config) { c.LLM.Temperature = 3 }, wantErr: "temperature"},
		{name: "top_p too high", modify: func(c *Config) { c.LLM.TopP = 1.5 }, wantErr: "top_p"},
		{name: "negative request timeout", modify: func(c *Config) { c.LLM.RequestTimeout = -time.Second }, wantErr: "timeouts"},
		{name: "unknown backend", modify: func(c *Config) { c.Cache.Backend = "memcached" }, wantErr: "cache.backend"},
		{name: "unknown key strategy", modify: func(c *Config) { c.Cache.KeyStrategy = "md5" }, wantErr: "cache.key_strategy"},
		{name: "redis without addr", modify: func(c *Config) { c.Cache.Backend = "redis"; c.Redis.Addr = "" }, wantErr: "redis.addr"},
		{name: "bad log level", modify: func(c *Config) { c.Log.Level = "trace" }, wantErr: "log.level"},
		{name: "bad sample rate", modify: func(c *Config) { c.Telemetry.SampleRate = 2 }, wantErr: "sample_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_ValidateFieldErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Level = "trace"
	cfg.Cache.Backend = "memcached"

	err := cfg.Validate()
	require.Error(t, err)

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "cache.backend", fe.Field)
	assert.Contains(t, err.Error(), "log.level")
}

func TestConfig_UsesRedis(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.UsesRedis())
	cfg.Cache.Backend = "tiered"
	assert.True(t, cfg.UsesRedis())
}

// --- MustLoad 测试 ---

func TestMustLoad_Success(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server:\n  http_port: 8081\n"), 0o644))

	assert.NotPanics(t, func() {
		cfg := MustLoad(configPath)
		assert.Equal(t, 8081, cfg.Server.HTTPPort)
	})
}

func TestMustLoad_InvalidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("invalid: [yaml"), 0o644))

	assert.Panics(t, func() {
		MustLoad(configPath)
	})
}

func TestLoadFromEnv_Function(t *testing.T) {
	t.Setenv("STUDYFLOW_LLM_MODEL", "env-only-model")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "env-only-model", cfg.LLM.Model)
}
