package handlers

import (
	"net/http"

	"github.com/BaSui01/studyflow/api"
	"github.com/BaSui01/studyflow/tutor"
	"go.uber.org/zap"
)

// AgentHandler Agent 列表处理器
type AgentHandler struct {
	registry *tutor.Registry
	logger   *zap.Logger
}

// NewAgentHandler 创建 Agent 处理器
func NewAgentHandler(registry *tutor.Registry, logger *zap.Logger) *AgentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AgentHandler{registry: registry, logger: logger}
}

// HandleListAgents 处理 GET /api/v1/agents
// @Summary 列出 Agent
// @Tags 辅导
// @Produce json
// @Success 200 {object} Response "Agent 列表"
// @Router /api/v1/agents [get]
func (h *AgentHandler) HandleListAgents(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, h.logger) {
		return
	}

	profiles := h.registry.List()
	infos := make([]api.AgentInfo, 0, len(profiles))
	for _, p := range profiles {
		infos = append(infos, api.AgentInfo{
			ID:             string(p.ID),
			Name:           p.Name,
			ResponseFormat: string(p.ResponseFormat),
		})
	}

	WriteSuccess(w, r, infos)
}
