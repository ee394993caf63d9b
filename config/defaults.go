package config

import (
	"time"

	"github.com/BaSui01/studyflow/llm/providers/gemini"
)

// DefaultConfig 返回所有配置项的默认值。凭据为空，需要由文件或环境变量提供。
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    2 * time.Minute,
			ShutdownTimeout: 15 * time.Second,
			RateLimitRPS:    10,
			RateLimitBurst:  20,
			MaxBodyBytes:    10 << 20,
		},
		LLM: LLMConfig{
			Model:       gemini.DefaultModel,
			Temperature: 0.2,
			TopP:        0.8,
		},
		Cache: CacheConfig{
			Backend:      "memory",
			MaxEntries:   10_000,
			KeyStrategy:  "presence",
			SingleFlight: true,
			RedisPrefix:  "studyflow:response:",
		},
		Redis: RedisConfig{
			Addr:                "localhost:6379",
			PoolSize:            10,
			MinIdleConns:        2,
			HealthCheckInterval: 30 * time.Second,
		},
		Log: DefaultLogConfig(),
		Telemetry: TelemetryConfig{
			OTLPEndpoint: "localhost:4317",
			ServiceName:  "studyflow",
			SampleRate:   0.1,
		},
	}
}

// DefaultLogConfig JSON 格式、info 级别、输出到 stdout
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:        "info",
		Format:       "json",
		OutputPaths:  []string{"stdout"},
		EnableCaller: true,
	}
}
