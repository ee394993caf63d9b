// =============================================================================
// 📦 StudyFlow 配置加载器
// =============================================================================
// 三层叠加：DefaultConfig → YAML 文件 → 环境变量。
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("config.yaml").
//	    Load()
// =============================================================================
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultEnvPrefix = "STUDYFLOW"

// Loader 按固定顺序组装 Config
type Loader struct {
	configPath string
	envPrefix  string
	lookup     func(string) (string, bool)
	validators []func(*Config) error
}

// NewLoader 创建加载器，环境变量前缀默认为 STUDYFLOW
func NewLoader() *Loader {
	return &Loader{envPrefix: defaultEnvPrefix, lookup: os.LookupEnv}
}

// WithConfigPath 指定 YAML 文件；文件不存在时跳过该层
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix 替换环境变量前缀
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = strings.TrimSuffix(prefix, "_")
	return l
}

// withLookup 替换环境变量来源，测试用
func (l *Loader) withLookup(fn func(string) (string, bool)) *Loader {
	l.lookup = fn
	return l
}

// WithValidator 追加加载后的校验
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load 组装配置。Load 不调用 Validate，由调用方决定何时校验。
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := l.applyFile(cfg); err != nil {
		return nil, fmt.Errorf("config file %s: %w", l.configPath, err)
	}

	b := &envBinder{prefix: l.envPrefix, lookup: l.lookup}
	if err := b.bind(cfg); err != nil {
		return nil, fmt.Errorf("config env: %w", err)
	}

	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		if key, ok := l.lookup(FallbackAPIKeyEnv); ok {
			cfg.LLM.APIKey = key
		}
	}

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config rejected: %w", err)
		}
	}
	return cfg, nil
}

func (l *Loader) applyFile(cfg *Config) error {
	if l.configPath == "" {
		return nil
	}
	raw, err := os.ReadFile(l.configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return err
	}
	return yaml.Unmarshal(raw, cfg)
}

// MustLoad 加载配置，失败时 panic
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("studyflow: %v", err))
	}
	return cfg
}

// LoadFromEnv 只使用默认值与环境变量
func LoadFromEnv() (*Config, error) {
	return NewLoader().Load()
}
