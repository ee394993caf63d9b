package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/studyflow/internal/ctxkeys"
	"github.com/BaSui01/studyflow/types"
)

// Response 所有 JSON 接口共用的外层结构
type Response struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorInfo `json:"error,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	RequestID string     `json:"request_id,omitempty"`
}

// ErrorInfo 失败响应中的错误体
type ErrorInfo struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Retryable  bool   `json:"retryable,omitempty"`
	HTTPStatus int    `json:"-"`
}

// codeStatus 未显式设置 HTTPStatus 时按错误码取状态码，缺省 500
var codeStatus = map[types.ErrorCode]int{
	types.ErrInvalidRequest:       http.StatusBadRequest,
	types.ErrUnauthorized:         http.StatusUnauthorized,
	types.ErrForbidden:            http.StatusForbidden,
	types.ErrRateLimited:          http.StatusTooManyRequests,
	types.ErrConfigurationMissing: http.StatusServiceUnavailable,
	types.ErrUpstreamTimeout:      http.StatusGatewayTimeout,
	types.ErrUpstreamError:        http.StatusBadGateway,
}

func statusFor(err *types.Error) int {
	if err.HTTPStatus != 0 {
		return err.HTTPStatus
	}
	if s, ok := codeStatus[err.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// WriteJSON 以 status 写出 v 的 JSON 编码
func WriteJSON(w http.ResponseWriter, status int, v any) {
	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func envelope(r *http.Request) Response {
	return Response{Timestamp: time.Now().UTC(), RequestID: requestID(r)}
}

// WriteSuccess 200 + {success: true, data}
func WriteSuccess(w http.ResponseWriter, r *http.Request, data any) {
	resp := envelope(r)
	resp.Success = true
	resp.Data = data
	WriteJSON(w, http.StatusOK, resp)
}

// WriteError 把 types.Error 写成失败响应；logger 非空时 5xx 记 Error，其余记 Warn
func WriteError(w http.ResponseWriter, r *http.Request, err *types.Error, logger *zap.Logger) {
	writeErrorStatus(w, r, statusFor(err), err, logger)
}

// writeErrorStatus 以显式 status 写出失败响应，不修改 err 本身
func writeErrorStatus(w http.ResponseWriter, r *http.Request, status int, err *types.Error, logger *zap.Logger) {
	if logger != nil {
		logAPIError(logger, r, status, err)
	}

	resp := envelope(r)
	resp.Error = &ErrorInfo{
		Code:       string(err.Code),
		Message:    err.Message,
		Retryable:  err.Retryable,
		HTTPStatus: status,
	}
	WriteJSON(w, status, resp)
}

// WriteErrorMessage 以指定状态码写出 code/message
func WriteErrorMessage(w http.ResponseWriter, r *http.Request, status int, code types.ErrorCode, message string, logger *zap.Logger) {
	WriteError(w, r, types.NewError(code, message).WithHTTPStatus(status), logger)
}

func logAPIError(logger *zap.Logger, r *http.Request, status int, err *types.Error) {
	level := zapcore.WarnLevel
	if status >= http.StatusInternalServerError {
		level = zapcore.ErrorLevel
	}
	ce := logger.Check(level, "api error")
	if ce == nil {
		return
	}
	fields := []zap.Field{
		zap.String("code", string(err.Code)),
		zap.String("message", err.Message),
		zap.Int("status", status),
		zap.String("request_id", requestID(r)),
	}
	if err.Cause != nil {
		fields = append(fields, zap.NamedError("cause", err.Cause))
	}
	ce.Write(fields...)
}

func requestID(r *http.Request) string {
	if r == nil {
		return ""
	}
	id, _ := ctxkeys.RequestID(r.Context())
	return id
}
