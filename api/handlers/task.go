package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/BaSui01/studyflow/api"
	"github.com/BaSui01/studyflow/tutor"
	"github.com/BaSui01/studyflow/types"
	"go.uber.org/zap"
)

// =============================================================================
// 📚 辅导任务 Handler
// =============================================================================

// TaskProcessor 辅导任务处理接口，由 tutor.Service 实现
type TaskProcessor interface {
	Process(ctx context.Context, req tutor.CompletionRequest) (string, error)
}

// TaskHandler 辅导任务处理器
type TaskHandler struct {
	processor    TaskProcessor
	maxBodyBytes int64
	logger       *zap.Logger
}

// NewTaskHandler 创建辅导任务处理器
func NewTaskHandler(processor TaskProcessor, maxBodyBytes int64, logger *zap.Logger) *TaskHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskHandler{
		processor:    processor,
		maxBodyBytes: maxBodyBytes,
		logger:       logger.With(zap.String("handler", "task")),
	}
}

// HandleCreateTask 处理 POST /api/v1/tasks
// @Summary 提交辅导任务
// @Tags 辅导
// @Accept json
// @Produce json
// @Param request body api.TaskRequest true "任务"
// @Success 200 {object} Response "模型回答"
// @Failure 400 {object} Response "请求无效"
// @Failure 429 {object} Response "上游过载"
// @Failure 502 {object} Response "上游失败"
// @Failure 503 {object} Response "凭据未配置"
// @Router /api/v1/tasks [post]
func (h *TaskHandler) HandleCreateTask(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost, h.logger) {
		return
	}
	if !ValidateContentType(w, r, h.logger) {
		return
	}

	var req api.TaskRequest
	if err := DecodeJSONBody(w, r, &req, h.maxBodyBytes, h.logger); err != nil {
		return
	}
	if err := validateTaskRequest(req); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	agent := tutor.ParseAgentID(req.Agent)
	text, err := h.processor.Process(r.Context(), tutor.CompletionRequest{
		Subject:   strings.TrimSpace(req.Subject),
		Agent:     agent,
		InputText: req.Input,
		Image:     req.Image,
	})
	if err != nil {
		apiErr, status := toTaskError(err)
		writeErrorStatus(w, r, status, apiErr, h.logger)
		return
	}

	WriteSuccess(w, r, api.TaskResponse{Agent: string(agent), Text: text})
}

func validateTaskRequest(req api.TaskRequest) *types.Error {
	switch {
	case strings.TrimSpace(req.Subject) == "":
		return types.NewInvalidRequestError("subject is required")
	case strings.TrimSpace(req.Agent) == "":
		return types.NewInvalidRequestError("agent is required")
	case strings.TrimSpace(req.Input) == "" && strings.TrimSpace(req.Image) == "":
		return types.NewInvalidRequestError("input or image is required")
	}
	return nil
}

// toTaskError 将服务错误映射到 API 错误：限流 429，凭据缺失 503，
// 请求无效 400，调用方取消或超时 504，其余一律 502。
func toTaskError(err error) (*types.Error, int) {
	if e, ok := types.AsError(err); ok {
		switch e.Code {
		case types.ErrRateLimited:
			return e, http.StatusTooManyRequests
		case types.ErrConfigurationMissing:
			return e, http.StatusServiceUnavailable
		case types.ErrInvalidRequest:
			return e, http.StatusBadRequest
		case types.ErrUpstreamTimeout:
			return e, http.StatusGatewayTimeout
		default:
			return e, http.StatusBadGateway
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return types.NewError(types.ErrUpstreamTimeout, "model request did not complete").WithCause(err), http.StatusGatewayTimeout
	}
	return types.NewError(types.ErrUpstreamError, err.Error()).WithCause(err), http.StatusBadGateway
}
