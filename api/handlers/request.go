package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"go.uber.org/zap"

	"github.com/BaSui01/studyflow/types"
)

// DecodeJSONBody 严格解码请求体到 dst，失败时已写出错误响应。
// maxBytes <= 0 不限制大小；超限返回 413。
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst any, maxBytes int64, logger *zap.Logger) error {
	if err := decodeStrict(w, r, dst, maxBytes); err != nil {
		WriteError(w, r, err, logger)
		return err
	}
	return nil
}

func decodeStrict(w http.ResponseWriter, r *http.Request, dst any, maxBytes int64) *types.Error {
	if r.Body == nil || r.Body == http.NoBody {
		return types.NewInvalidRequestError("request body is empty")
	}
	body := r.Body
	if maxBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)

	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &tooLarge):
		return types.NewInvalidRequestError("request body too large").
			WithCause(err).
			WithHTTPStatus(http.StatusRequestEntityTooLarge)
	case errors.Is(err, io.EOF):
		return types.NewInvalidRequestError("request body is empty")
	default:
		return types.NewInvalidRequestError("invalid JSON body").WithCause(err)
	}
}

// ValidateContentType 要求 application/json，否则写出 415
func ValidateContentType(w http.ResponseWriter, r *http.Request, logger *zap.Logger) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err == nil && mediaType == "application/json" {
		return true
	}
	WriteError(w, r, types.NewInvalidRequestError("Content-Type must be application/json").
		WithHTTPStatus(http.StatusUnsupportedMediaType), logger)
	return false
}

// RequireMethod 方法不符时写出 405 并设置 Allow
func RequireMethod(w http.ResponseWriter, r *http.Request, method string, logger *zap.Logger) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	WriteErrorMessage(w, r, http.StatusMethodNotAllowed, types.ErrInvalidRequest, "method not allowed", logger)
	return false
}
