package llm

import "context"

// Role 内容角色。
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ResponseFormat 响应格式提示。
type ResponseFormat string

const (
	ResponseFormatText ResponseFormat = "text" // 纯文本
	ResponseFormatJSON ResponseFormat = "json" // 结构化 JSON
)

// MIMEType 返回格式对应的响应 MIME 类型。
func (f ResponseFormat) MIMEType() string {
	if f == ResponseFormatJSON {
		return "application/json"
	}
	return "text/plain"
}

// Valid 判断格式是否受支持。
func (f ResponseFormat) Valid() bool {
	return f == ResponseFormatText || f == ResponseFormatJSON
}

// InlineData 内联二进制数据，Data 为 base64 编码（不含 data URI 前缀）。
type InlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

// Part 内容片段，Text 与 InlineData 二选一。
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inline_data,omitempty"`
}

// Content 单个角色的一轮内容。
type Content struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

// GenerationConfig 生成配置。
type GenerationConfig struct {
	Temperature    float32        `json:"temperature"`
	TopP           float32        `json:"top_p"`
	ResponseFormat ResponseFormat `json:"response_format,omitempty"`
}

// GenerateRequest 单轮生成请求。
type GenerateRequest struct {
	Model    string           `json:"model"`
	Contents []Content        `json:"contents"`
	Config   GenerationConfig `json:"config"`
}

// Usage token 用量。
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// GenerateResponse 生成结果。
type GenerateResponse struct {
	Text         string `json:"text"`
	Provider     string `json:"provider,omitempty"`
	Model        string `json:"model,omitempty"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        Usage  `json:"usage,omitempty"`
}

// Provider 外部补全服务。
type Provider interface {
	// Name 返回服务商名称（用于日志和指标）
	Name() string

	// Generate 执行一次生成；失败时返回 transport 定义的错误
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
}

// NewTextPart 创建文本片段。
func NewTextPart(text string) Part {
	return Part{Text: text}
}

// NewInlinePart 创建内联数据片段。
func NewInlinePart(mimeType, data string) Part {
	return Part{InlineData: &InlineData{MIMEType: mimeType, Data: data}}
}
