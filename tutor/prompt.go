package tutor

import (
	"fmt"
	"strings"

	"github.com/BaSui01/studyflow/llm"
)

// promptTemplate 固定的文本模板：学科、Agent 指令、输入
const promptTemplate = "Subject: %s. Expert: %s. Content: %s"

// CompletionRequest 一次辅导请求
type CompletionRequest struct {
	Subject   string
	Agent     AgentID
	InputText string
	Image     string // base64，可带 data URI 前缀；空白表示无图
}

// HasImage 是否带图
func (r CompletionRequest) HasImage() bool {
	return llm.HasImage(r.Image)
}

// Assemble 组装单轮 user 内容：文本片段在前，图片片段（若有）在后。
// 纯函数；图片数据不做校验，由 transport 负责拒绝非法输入。
func Assemble(req CompletionRequest, profile AgentProfile) llm.Content {
	text := fmt.Sprintf(promptTemplate, req.Subject, profile.Instruction, strings.TrimSpace(req.InputText))

	parts := make([]llm.Part, 0, 2)
	parts = append(parts, llm.NewTextPart(text))
	if req.HasImage() {
		parts = append(parts, llm.NewInlinePart(llm.MIMETypeJPEG, llm.StripDataURIPrefix(req.Image)))
	}

	return llm.Content{Role: llm.RoleUser, Parts: parts}
}
