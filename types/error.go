package types

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode 统一错误码，贯穿 transport、tutor 与 api 层。
type ErrorCode string

const (
	ErrConfigurationMissing ErrorCode = "CONFIGURATION_MISSING" // 必需的凭据缺失
	ErrRateLimited          ErrorCode = "RATE_LIMITED"          // 上游限流/过载
	ErrInvalidRequest       ErrorCode = "INVALID_REQUEST"       // 参数/格式错误
	ErrUnauthorized         ErrorCode = "UNAUTHORIZED"          // 密钥无效
	ErrForbidden            ErrorCode = "FORBIDDEN"             // 权限或内容策略拒绝
	ErrUpstreamTimeout      ErrorCode = "UPSTREAM_TIMEOUT"      // 上游超时
	ErrUpstreamError        ErrorCode = "UPSTREAM_ERROR"        // 上游 5xx/网络错误
	ErrInternalError        ErrorCode = "INTERNAL_ERROR"
)

// OverloadedMessage 限流时返回给用户的固定提示。
const OverloadedMessage = "The system is overloaded, please wait a moment and try again."

// Error 结构化错误，携带错误码、HTTP 状态与可重试标记。
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Provider   string    `json:"provider,omitempty"`
	Cause      error     `json:"-"`
}

func (e *Error) Error() string {
	msg := "[" + string(e.Code) + "] " + e.Message
	if e.Cause == nil {
		return msg
	}
	return msg + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError 只带错误码与消息
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause 以下 With* 方法原地修改并返回 e，便于链式构造
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

func (e *Error) WithProvider(provider string) *Error {
	e.Provider = provider
	return e
}

// NewConfigurationMissingError 凭据缺失错误，所有调用立即失败。
func NewConfigurationMissingError(what string) *Error {
	return NewError(ErrConfigurationMissing, fmt.Sprintf("required configuration %s is missing", what)).
		WithHTTPStatus(http.StatusServiceUnavailable)
}

// NewRateLimitedError 上游过载错误，消息固定为 OverloadedMessage。
func NewRateLimitedError() *Error {
	return NewError(ErrRateLimited, OverloadedMessage).
		WithHTTPStatus(http.StatusTooManyRequests).
		WithRetryable(true)
}

// NewInvalidRequestError 请求校验失败。
func NewInvalidRequestError(message string) *Error {
	return NewError(ErrInvalidRequest, message).WithHTTPStatus(http.StatusBadRequest)
}

// AsError 沿错误链查找 *Error。
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsErrorCode 判断错误链中是否存在指定错误码。
func IsErrorCode(err error, code ErrorCode) bool {
	e, ok := AsError(err)
	return ok && e.Code == code
}

// IsRateLimited 判断是否为限流错误。
func IsRateLimited(err error) bool {
	return IsErrorCode(err, ErrRateLimited)
}

// IsRetryable 错误链中的 *Error 是否标记为可重试
func IsRetryable(err error) bool {
	if e, ok := AsError(err); ok {
		return e.Retryable
	}
	return false
}

// GetErrorCode 错误链中没有 *Error 时返回空串
func GetErrorCode(err error) ErrorCode {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}
