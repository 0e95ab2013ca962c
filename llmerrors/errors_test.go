package llmerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_RetryableByKind(t *testing.T) {
	assert.True(t, New(KindRateLimit, "slow down").Retryable())
	assert.True(t, New(KindTimeout, "timed out").Retryable())
	assert.True(t, New(KindNetworkError, "conn reset").Retryable())
	assert.False(t, New(KindInvalidInput, "bad request").Retryable())
	assert.False(t, New(KindQuotaExceeded, "no credits").Retryable())
}

func TestError_APIErrorRetryableByStatusCode(t *testing.T) {
	assert.True(t, NewAPIError(429, "rate limited", nil).Retryable())
	assert.True(t, NewAPIError(503, "unavailable", nil).Retryable())
	assert.True(t, NewAPIError(AnthropicOverloadCode, "overloaded", nil).Retryable())
	assert.False(t, NewAPIError(400, "bad request", nil).Retryable())
}

func TestError_AuthenticationIsRetryableOnce(t *testing.T) {
	assert.True(t, New(KindAuthentication, "expired token").Retryable())
}

func TestWrap_PreservesUnderlyingError(t *testing.T) {
	underlying := errors.New("boom")
	wrapped := Wrap(KindParseError, "decode failed", underlying)
	assert.Equal(t, underlying, errors.Unwrap(wrapped))
	assert.ErrorIs(t, wrapped, underlying)
}

func TestIsPredicates(t *testing.T) {
	err := New(KindNotFound, "no such model")
	assert.True(t, IsNotFound(err))
	assert.False(t, IsRateLimit(err))
	assert.True(t, IsRetryable(NewAPIError(500, "oops", nil)))
	assert.False(t, IsRetryable(errors.New("plain error, not ours")))
}

func TestError_ErrorStringIncludesCodeWhenPresent(t *testing.T) {
	err := NewAPIError(404, "model not found", nil)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "model not found")
}
