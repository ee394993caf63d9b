package types

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_ChainingAndHelpers(t *testing.T) {
	t.Parallel()

	root := errors.New("root")
	err := NewError(ErrUpstreamError, "upstream failed").
		WithCause(root).
		WithHTTPStatus(502).
		WithRetryable(true).
		WithProvider("gemini")

	assert.Equal(t, ErrUpstreamError, GetErrorCode(err))
	assert.True(t, IsRetryable(err))
	assert.ErrorIs(t, err, root)
	assert.Equal(t, "[UPSTREAM_ERROR] upstream failed: root", err.Error())
}

func TestError_AsErrorThroughWrapping(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("process task: %w", NewRateLimitedError())

	e, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Equal(t, OverloadedMessage, e.Message)
	assert.Equal(t, http.StatusTooManyRequests, e.HTTPStatus)
	assert.True(t, IsRateLimited(wrapped))
	assert.True(t, IsRetryable(wrapped))
}

func TestError_PlainErrors(t *testing.T) {
	t.Parallel()

	plain := errors.New("boom")
	_, ok := AsError(plain)
	assert.False(t, ok)
	assert.Equal(t, ErrorCode(""), GetErrorCode(plain))
	assert.False(t, IsRateLimited(plain))
	assert.False(t, IsRetryable(plain))
}

func TestNewConfigurationMissingError(t *testing.T) {
	t.Parallel()

	err := NewConfigurationMissingError("llm.api_key")
	assert.Equal(t, ErrConfigurationMissing, err.Code)
	assert.Equal(t, http.StatusServiceUnavailable, err.HTTPStatus)
	assert.Contains(t, err.Message, "llm.api_key")
	assert.False(t, err.Retryable)
}
