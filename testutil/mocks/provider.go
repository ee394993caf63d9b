// Package mocks 提供 llm.Provider 的可编排测试替身。
package mocks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/BaSui01/studyflow/llm"
)

// ErrFailAfter WithFailAfter 触发后返回的错误
var ErrFailAfter = errors.New("mock provider: call budget exhausted")

// GenerateFunc 自定义 Generate 行为
type GenerateFunc func(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error)

// MockProvider 按配置返回固定文本、按序文本或错误，并记录每次调用。
// 阻塞顺序：gate → delay → 生成；两者都响应 ctx 取消。
type MockProvider struct {
	mu        sync.Mutex
	text      string
	queue     []string
	err       error
	fn        GenerateFunc
	delay     time.Duration
	gate      <-chan struct{}
	failAfter int
	calls     []*llm.GenerateRequest
}

// NewMockProvider 默认返回 "Mock response"
func NewMockProvider() *MockProvider {
	return &MockProvider{text: "Mock response"}
}

func (m *MockProvider) with(apply func()) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	apply()
	return m
}

// WithResponse 固定响应文本
func (m *MockProvider) WithResponse(text string) *MockProvider {
	return m.with(func() { m.text = text })
}

// WithResponses 依次返回，用尽后回到固定响应
func (m *MockProvider) WithResponses(texts ...string) *MockProvider {
	return m.with(func() { m.queue = append([]string(nil), texts...) })
}

// WithError 每次调用返回 err
func (m *MockProvider) WithError(err error) *MockProvider {
	return m.with(func() { m.err = err })
}

// WithDelay 生成前等待 d
func (m *MockProvider) WithDelay(d time.Duration) *MockProvider {
	return m.with(func() { m.delay = d })
}

// WithFailAfter 前 n 次正常，之后返回 ErrFailAfter
func (m *MockProvider) WithFailAfter(n int) *MockProvider {
	return m.with(func() { m.failAfter = n })
}

// WithGate 调用阻塞到 gate 关闭
func (m *MockProvider) WithGate(gate <-chan struct{}) *MockProvider {
	return m.with(func() { m.gate = gate })
}

// WithGenerateFunc 替换生成逻辑；gate 与 delay 仍然生效
func (m *MockProvider) WithGenerateFunc(fn GenerateFunc) *MockProvider {
	return m.with(func() { m.fn = fn })
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Generate(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	n := len(m.calls)
	gate, delay, fn := m.gate, m.delay, m.fn
	m.mu.Unlock()

	if err := wait(ctx, gate, delay); err != nil {
		return nil, err
	}
	if fn != nil {
		return fn(ctx, req)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.failAfter > 0 && n > m.failAfter:
		return nil, ErrFailAfter
	case m.err != nil:
		return nil, m.err
	}
	text := m.text
	if len(m.queue) > 0 {
		text, m.queue = m.queue[0], m.queue[1:]
	}
	return &llm.GenerateResponse{Text: text, Provider: "mock", Model: req.Model, FinishReason: "STOP"}, nil
}

func wait(ctx context.Context, gate <-chan struct{}, delay time.Duration) error {
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if delay <= 0 {
		return nil
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CallCount 已收到的调用次数
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastCall 最后一次调用的请求，没有调用时为 nil
func (m *MockProvider) LastCall() *llm.GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	return m.calls[len(m.calls)-1]
}
