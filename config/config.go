package config

import "time"

// FallbackAPIKeyEnv 未设置 STUDYFLOW_LLM_API_KEY 时读取的凭据变量
const FallbackAPIKeyEnv = "GEMINI_API_KEY"

// Config 根配置。yaml 标签对应配置文件，env 标签拼接成 STUDYFLOW_<SECTION>_<KEY>。
type Config struct {
	Server    ServerConfig    `yaml:"server" env:"SERVER"`
	LLM       LLMConfig       `yaml:"llm" env:"LLM"`
	Cache     CacheConfig     `yaml:"cache" env:"CACHE"`
	Redis     RedisConfig     `yaml:"redis" env:"REDIS"` // cache.backend 为 redis/tiered 时使用
	Agents    AgentsConfig    `yaml:"agents" env:"AGENTS"`
	Log       LogConfig       `yaml:"log" env:"LOG"`
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`
}

// ServerConfig HTTP 服务
type ServerConfig struct {
	HTTPPort        int           `yaml:"http_port" env:"HTTP_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`

	// 每个客户端 IP 的令牌桶，RPS 为 0 时关闭限流
	RateLimitRPS   int `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	RateLimitBurst int `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`

	// 图片以 base64 放在请求体里，上限需要足够大
	MaxBodyBytes int64 `yaml:"max_body_bytes" env:"MAX_BODY_BYTES"`
}

// LLMConfig 模型调用
type LLMConfig struct {
	APIKey         string        `yaml:"api_key" env:"API_KEY"`
	Model          string        `yaml:"model" env:"MODEL"`
	BaseURL        string        `yaml:"base_url" env:"BASE_URL"`               // 空值使用 SDK 默认端点
	Timeout        time.Duration `yaml:"timeout" env:"TIMEOUT"`                 // HTTP 客户端超时，0 不设置
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"` // 单次调用截止时间，0 不设置
	Temperature    float64       `yaml:"temperature" env:"TEMPERATURE"`
	TopP           float64       `yaml:"top_p" env:"TOP_P"`
}

// CacheConfig 响应缓存
type CacheConfig struct {
	Backend      string        `yaml:"backend" env:"BACKEND"`         // memory, lru, redis, tiered
	MaxEntries   int           `yaml:"max_entries" env:"MAX_ENTRIES"` // lru/tiered 的 L1 容量
	TTL          time.Duration `yaml:"ttl" env:"TTL"`                 // 0 不过期
	KeyStrategy  string        `yaml:"key_strategy" env:"KEY_STRATEGY"`
	SingleFlight bool          `yaml:"single_flight" env:"SINGLE_FLIGHT"`
	RedisPrefix  string        `yaml:"redis_prefix" env:"REDIS_PREFIX"`
}

type RedisConfig struct {
	Addr                string        `yaml:"addr" env:"ADDR"`
	Password            string        `yaml:"password" env:"PASSWORD"`
	DB                  int           `yaml:"db" env:"DB"`
	PoolSize            int           `yaml:"pool_size" env:"POOL_SIZE"`
	MinIdleConns        int           `yaml:"min_idle_conns" env:"MIN_IDLE_CONNS"`
	HealthCheckInterval time.Duration `yaml:"health_check_interval" env:"HEALTH_CHECK_INTERVAL"`
}

// AgentsConfig ProfilesPath 为空时使用内置的 Agent 配置表
type AgentsConfig struct {
	ProfilesPath string `yaml:"profiles_path" env:"PROFILES_PATH"`
}

// LogConfig 传给 zap 的日志设置
type LogConfig struct {
	Level            string   `yaml:"level" env:"LEVEL"`
	Format           string   `yaml:"format" env:"FORMAT"`
	OutputPaths      []string `yaml:"output_paths" env:"OUTPUT_PATHS"` // 环境变量中逗号分隔
	EnableCaller     bool     `yaml:"enable_caller" env:"ENABLE_CALLER"`
	EnableStacktrace bool     `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// TelemetryConfig OTLP/gRPC 导出
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled" env:"ENABLED"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	ServiceName  string  `yaml:"service_name" env:"SERVICE_NAME"`
	SampleRate   float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// UsesRedis 缓存后端是否依赖 Redis
func (c *Config) UsesRedis() bool {
	return c.Cache.Backend == "redis" || c.Cache.Backend == "tiered"
}
