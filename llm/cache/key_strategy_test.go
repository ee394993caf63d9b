package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	key1 := DeriveKey("Math", "SPEED", "2+2", false)
	key2 := DeriveKey("Math", "SPEED", "2+2", false)

	assert.NotEmpty(t, key1, "缓存键不应为空")
	assert.Equal(t, key1, key2, "相同输入应生成相同的键")
	assert.True(t, strings.HasPrefix(key1, "tutor:"), "键应包含前缀")
}

func TestDeriveKey_WhitespaceInsensitive(t *testing.T) {
	assert.Equal(t,
		DeriveKey("Math", "SPEED", "x", false),
		DeriveKey("Math", "SPEED", "  x  ", false),
	)
	assert.Equal(t,
		DeriveKey("Math", "SPEED", "2+2", true),
		DeriveKey("Math", "SPEED", "\n\t2+2 \n", true),
	)
}

func TestDeriveKey_FieldsChangeKey(t *testing.T) {
	base := DeriveKey("Math", "SPEED", "2+2", false)

	tests := []struct {
		name string
		key  string
	}{
		{name: "学科不同", key: DeriveKey("Physics", "SPEED", "2+2", false)},
		{name: "Agent 不同", key: DeriveKey("Math", "SOCRATIC", "2+2", false)},
		{name: "输入不同", key: DeriveKey("Math", "SPEED", "2+3", false)},
		{name: "是否带图不同", key: DeriveKey("Math", "SPEED", "2+2", true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base, tt.key)
		})
	}
}

func TestDeriveKey_FieldBoundaries(t *testing.T) {
	// 字段拼接不能因边界移动而碰撞
	assert.NotEqual(t,
		DeriveKey("ab", "c", "x", false),
		DeriveKey("a", "bc", "x", false),
	)
}

func TestPresenceKeyStrategy_IgnoresImageContent(t *testing.T) {
	s := NewPresenceKeyStrategy()
	assert.Equal(t, KeyStrategyPresence, s.Name())

	withA := s.Key(KeyRequest{Subject: "Math", Agent: "SPEED", InputText: "2+2", Image: "data:image/jpeg;base64,QUFB"})
	withB := s.Key(KeyRequest{Subject: "Math", Agent: "SPEED", InputText: "2+2", Image: "QkJC"})
	without := s.Key(KeyRequest{Subject: "Math", Agent: "SPEED", InputText: "2+2"})
	blank := s.Key(KeyRequest{Subject: "Math", Agent: "SPEED", InputText: "2+2", Image: "  "})

	assert.Equal(t, withA, withB, "图片内容不应影响键")
	assert.NotEqual(t, withA, without, "是否带图应影响键")
	assert.Equal(t, without, blank, "空白图片视为无图")
	assert.Equal(t, DeriveKey("Math", "SPEED", "2+2", true), withA)
}

func TestContentHashKeyStrategy(t *testing.T) {
	s := NewContentHashKeyStrategy()
	assert.Equal(t, KeyStrategyContentHash, s.Name())

	withA := s.Key(KeyRequest{Subject: "Math", Agent: "SPEED", InputText: "2+2", Image: "QUFB"})
	withAPrefixed := s.Key(KeyRequest{Subject: "Math", Agent: "SPEED", InputText: "2+2", Image: "data:image/jpeg;base64,QUFB"})
	withB := s.Key(KeyRequest{Subject: "Math", Agent: "SPEED", InputText: "2+2", Image: "QkJC"})
	without := s.Key(KeyRequest{Subject: "Math", Agent: "SPEED", InputText: "2+2"})

	assert.NotEqual(t, withA, withB, "不同图片内容应生成不同的键")
	assert.Equal(t, withA, withAPrefixed, "data URI 前缀不应影响键")
	assert.Equal(t, DeriveKey("Math", "SPEED", "2+2", false), without)
}

func TestNewKeyStrategy(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantName string
		wantErr  bool
	}{
		{name: "空名称使用 presence", input: "", wantName: KeyStrategyPresence},
		{name: "presence", input: KeyStrategyPresence, wantName: KeyStrategyPresence},
		{name: "content_hash", input: KeyStrategyContentHash, wantName: KeyStrategyContentHash},
		{name: "未知策略", input: "sha1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewKeyStrategy(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, s.Name())
		})
	}
}

// 任意字段组合下，推导两次结果一致；去空白后输入相同则键相同
func TestProperty_DeriveKey_Deterministic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		subject := rapid.StringMatching(`[A-Za-z ]{1,12}`).Draw(rt, "subject")
		agent := rapid.SampledFrom([]string{"SPEED", "SOCRATIC", "PERFECT", "COACH"}).Draw(rt, "agent")
		input := rapid.StringMatching(`[a-z0-9+*/= ]{0,40}`).Draw(rt, "input")
		hasImage := rapid.Bool().Draw(rt, "hasImage")
		pad := rapid.StringMatching(`[ \t\n]{0,4}`).Draw(rt, "pad")

		key := DeriveKey(subject, agent, input, hasImage)
		assert.Equal(rt, key, DeriveKey(subject, agent, input, hasImage))
		assert.Equal(rt, key, DeriveKey(subject, agent, pad+input+pad, hasImage))
	})
}

// 任一字段（去空白后）变化都会改变键
func TestProperty_DeriveKey_Injective(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		subject := rapid.StringMatching(`[A-Za-z]{1,10}`).Draw(rt, "subject")
		agent := rapid.StringMatching(`[A-Z]{1,10}`).Draw(rt, "agent")
		input := rapid.StringMatching(`[a-z0-9+]{1,20}`).Draw(rt, "input")
		hasImage := rapid.Bool().Draw(rt, "hasImage")
		suffix := rapid.StringMatching(`[a-z0-9]{1,5}`).Draw(rt, "suffix")

		key := DeriveKey(subject, agent, input, hasImage)
		assert.NotEqual(rt, key, DeriveKey(subject+suffix, agent, input, hasImage))
		assert.NotEqual(rt, key, DeriveKey(subject, agent+suffix, input, hasImage))
		assert.NotEqual(rt, key, DeriveKey(subject, agent, input+suffix, hasImage))
		assert.NotEqual(rt, key, DeriveKey(subject, agent, input, !hasImage))
	})
}
