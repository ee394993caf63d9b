package providers

import (
	"net/http"
	"strings"

	"github.com/BaSui01/studyflow/llm"
	"github.com/BaSui01/studyflow/types"
)

// statusCodes 上游 HTTP 状态到错误码；未列出的归为 UPSTREAM_ERROR
var statusCodes = map[int]types.ErrorCode{
	http.StatusBadRequest:      types.ErrInvalidRequest,
	http.StatusUnauthorized:    types.ErrUnauthorized,
	http.StatusForbidden:       types.ErrForbidden,
	http.StatusTooManyRequests: types.ErrRateLimited,
	http.StatusRequestTimeout:  types.ErrUpstreamTimeout,
	http.StatusGatewayTimeout:  types.ErrUpstreamTimeout,
}

// MapHTTPError 把上游状态码转成 *types.Error。
// 429、超时与 5xx 标记为可重试；HTTPStatus 保留原始状态码供分类使用。
func MapHTTPError(status int, msg string, provider string) *types.Error {
	code, ok := statusCodes[status]
	if !ok {
		code = types.ErrUpstreamError
	}
	return &types.Error{
		Code:       code,
		Message:    msg,
		HTTPStatus: status,
		Retryable:  code == types.ErrRateLimited || code == types.ErrUpstreamTimeout || status >= 500,
		Provider:   provider,
	}
}

// ChooseModel 依次取请求中的模型、provider 默认模型、fallback
func ChooseModel(req *llm.GenerateRequest, defaultModel, fallbackModel string) string {
	if req != nil {
		if m := strings.TrimSpace(req.Model); m != "" {
			return m
		}
	}
	if defaultModel != "" {
		return defaultModel
	}
	return fallbackModel
}
