package gemini

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
		{"unauthenticated", 401, `{"error":{"code":401,"message":"bad key","status":"UNAUTHENTICATED"}}`, llmerrors.KindAuthentication},
		{"resource_exhausted", 429, `{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`, llmerrors.KindRateLimit},
		{"invalid_argument", 400, `{"error":{"code":400,"message":"bad field","status":"INVALID_ARGUMENT"}}`, llmerrors.KindInvalidInput},
		{"not_found", 404, `{"error":{"code":404,"message":"missing","status":"NOT_FOUND"}}`, llmerrors.KindNotFound},
		{"unclassified_5xx", 503, `{"error":{"code":503,"message":"down"}}`, llmerrors.KindAPIError},
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
