package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	validCacheBackends = []string{"memory", "lru", "redis", "tiered"}
	validKeyStrategies = []string{"presence", "content_hash"}
	validLogLevels     = []string{"debug", "info", "warn", "error"}
	validLogFormats    = []string{"json", "console"}
)

// FieldError 单个配置项的校验失败
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

type checks []error

func (c *checks) require(ok bool, field, reason string) {
	if !ok {
		*c = append(*c, &FieldError{Field: field, Reason: reason})
	}
}

func (c *checks) oneOf(v, field string, allowed []string) {
	c.require(slices.Contains(allowed, v), field, fmt.Sprintf("%q is not one of %v", v, allowed))
}

// Validate 检查取值范围。API Key 缺失不算配置错误，由服务在调用时报告。
func (c *Config) Validate() error {
	var ck checks

	ck.require(c.Server.HTTPPort > 0 && c.Server.HTTPPort <= 65535,
		"server.http_port", fmt.Sprintf("invalid HTTP port %d", c.Server.HTTPPort))
	ck.require(c.Server.RateLimitRPS >= 0 && c.Server.RateLimitBurst >= 0,
		"server.rate_limit", "must not be negative")

	ck.require(strings.TrimSpace(c.LLM.Model) != "", "llm.model", "required")
	ck.require(c.LLM.Temperature >= 0 && c.LLM.Temperature <= 2, "llm.temperature", "must be within [0, 2]")
	ck.require(c.LLM.TopP >= 0 && c.LLM.TopP <= 1, "llm.top_p", "must be within [0, 1]")
	ck.require(c.LLM.Timeout >= 0 && c.LLM.RequestTimeout >= 0, "llm.timeouts", "must not be negative")

	ck.oneOf(c.Cache.Backend, "cache.backend", validCacheBackends)
	ck.oneOf(c.Cache.KeyStrategy, "cache.key_strategy", validKeyStrategies)
	ck.require(c.Cache.MaxEntries >= 0 && c.Cache.TTL >= 0, "cache.limits", "must not be negative")
	ck.require(!c.UsesRedis() || strings.TrimSpace(c.Redis.Addr) != "",
		"redis.addr", "required by cache backend "+c.Cache.Backend)

	ck.oneOf(c.Log.Level, "log.level", validLogLevels)
	ck.oneOf(c.Log.Format, "log.format", validLogFormats)

	ck.require(c.Telemetry.SampleRate >= 0 && c.Telemetry.SampleRate <= 1,
		"telemetry.sample_rate", "must be within [0, 1]")

	return errors.Join(ck...)
}
