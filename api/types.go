package api

// TaskRequest 辅导任务请求
type TaskRequest struct {
	// 学科，例如 math、physics
	Subject string `json:"subject" example:"math"`
	// Agent 标识：SPEED、SOCRATIC、PERFECT、COACH
	Agent string `json:"agent" example:"SPEED"`
	// 题目文本
	Input string `json:"input" example:"Solve 2x + 3 = 7"`
	// 可选图片，base64，可带 data URI 前缀
	Image string `json:"image,omitempty"`
}

// TaskResponse 辅导任务结果
type TaskResponse struct {
	Agent string `json:"agent"`
	Text  string `json:"text"`
}

// AgentInfo Agent 描述
type AgentInfo struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ResponseFormat string `json:"response_format"`
}
