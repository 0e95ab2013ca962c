package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taipm/go-llm-gateway/llmerrors"
)

func TestClassifyError_KindMapping(t *testing.T) {
	cases := []struct {
		name       string
		statusCode int
		body       string
		want       llmerrors.Kind
	}{
		{"quota", 429, `{"error":{"message":"quota","type":"insufficient_quota"}}`, llmerrors.KindQuotaExceeded},
		{"invalid", 400, `{"error":{"message":"bad","type":"invalid_request_error"}}`, llmerrors.KindInvalidInput},
		{"auth", 401, `{"error":{"message":"unauthorized"}}`, llmerrors.KindAuthentication},
		{"not_found", 404, `{"error":{"message":"missing"}}`, llmerrors.KindNotFound},
		{"rate_limit", 429, `{"error":{"message":"slow down"}}`, llmerrors.KindRateLimit},
		{"unclassified", 500, `{"error":{"message":"oops"}}`, llmerrors.KindAPIError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ClassifyError(tc.statusCode, []byte(tc.body))
			apiErr, ok := err.(*llmerrors.Error)
			assert.True(t, ok)
			assert.Equal(t, tc.want, apiErr.Kind)
		})
	}
}

func TestClassifyError_RateLimitIsRetryable(t *testing.T) {
	err := ClassifyError(429, []byte(`{"error":{"message":"slow down"}}`))
	assert.True(t, llmerrors.IsRetryable(err))
}
