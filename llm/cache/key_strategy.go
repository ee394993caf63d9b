package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/BaSui01/studyflow/llm"
)

// 策略名称
const (
	KeyStrategyPresence    = "presence"
	KeyStrategyContentHash = "content_hash"
)

// keyPrefix 所有缓存键共享的前缀
const keyPrefix = "tutor:"

// keySeparator ASCII 单元分隔符，正常输入中不会出现
const keySeparator = "\x1f"

// KeyRequest 参与缓存键推导的请求字段
type KeyRequest struct {
	Subject   string
	Agent     string
	InputText string
	Image     string // base64，可带 data URI 前缀；空白表示无图
}

// KeyStrategy 缓存键生成策略接口
type KeyStrategy interface {
	// Key 生成缓存键
	Key(req KeyRequest) string

	// Name 返回策略名称（用于日志和调试）
	Name() string
}

// DeriveKey 由 (subject, agent, 去首尾空白的 input, 是否带图) 生成缓存键。
// 图片内容不参与，只记录是否存在。
func DeriveKey(subject, agent, inputText string, hasImage bool) string {
	imageFlag := "noimg"
	if hasImage {
		imageFlag = "img"
	}

	var b strings.Builder
	b.Grow(len(keyPrefix) + len(subject) + len(agent) + len(inputText) + len(imageFlag) + 3)
	b.WriteString(keyPrefix)
	b.WriteString(subject)
	b.WriteString(keySeparator)
	b.WriteString(agent)
	b.WriteString(keySeparator)
	b.WriteString(strings.TrimSpace(inputText))
	b.WriteString(keySeparator)
	b.WriteString(imageFlag)
	return b.String()
}

// PresenceKeyStrategy 默认策略：图片只贡献“是否存在”
type PresenceKeyStrategy struct{}

// NewPresenceKeyStrategy 创建 presence 策略
func NewPresenceKeyStrategy() *PresenceKeyStrategy {
	return &PresenceKeyStrategy{}
}

// Name 返回策略名称
func (s *PresenceKeyStrategy) Name() string {
	return KeyStrategyPresence
}

// Key 生成缓存键
func (s *PresenceKeyStrategy) Key(req KeyRequest) string {
	return DeriveKey(req.Subject, req.Agent, req.InputText, llm.HasImage(req.Image))
}

// ContentHashKeyStrategy 在 presence 键后追加图片内容哈希，
// 同一问题配不同图片不再共享缓存
type ContentHashKeyStrategy struct{}

// NewContentHashKeyStrategy 创建 content_hash 策略
func NewContentHashKeyStrategy() *ContentHashKeyStrategy {
	return &ContentHashKeyStrategy{}
}

// Name 返回策略名称
func (s *ContentHashKeyStrategy) Name() string {
	return KeyStrategyContentHash
}

// Key 生成缓存键
func (s *ContentHashKeyStrategy) Key(req KeyRequest) string {
	hasImage := llm.HasImage(req.Image)
	key := DeriveKey(req.Subject, req.Agent, req.InputText, hasImage)
	if !hasImage {
		return key
	}
	sum := sha256.Sum256([]byte(llm.StripDataURIPrefix(req.Image)))
	return key + keySeparator + hex.EncodeToString(sum[:])
}

// NewKeyStrategy 按名称创建策略，空名称返回 presence
func NewKeyStrategy(name string) (KeyStrategy, error) {
	switch name {
	case "", KeyStrategyPresence:
		return NewPresenceKeyStrategy(), nil
	case KeyStrategyContentHash:
		return NewContentHashKeyStrategy(), nil
	default:
		return nil, fmt.Errorf("unknown cache key strategy %q", name)
	}
}
