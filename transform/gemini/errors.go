package gemini

import (
	"encoding/json"

	"github.com/taipm/go-llm-gateway/llmerrors"
)

type googleAPIErrorWire struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// ClassifyError maps the standard Google API error envelope
// ({error:{code,message,status}}) to an llmerrors.Error.
func ClassifyError(statusCode int, body []byte) error {
	var wire googleAPIErrorWire
	_ = json.Unmarshal(body, &wire)

	msg := wire.Error.Message
	if msg == "" {
		msg = "gemini: request failed"
	}

	return &llmerrors.Error{
		Kind:    kindForStatus(wire.Error.Status, statusCode),
		Message: msg,
		Code:    statusCode,
		Details: map[string]any{"status": wire.Error.Status},
	}
}

func kindForStatus(status string, statusCode int) llmerrors.Kind {
	switch status {
	case "UNAUTHENTICATED":
		return llmerrors.KindAuthentication
	case "PERMISSION_DENIED":
		return llmerrors.KindAuthentication
	case "NOT_FOUND":
		return llmerrors.KindNotFound
	case "INVALID_ARGUMENT", "FAILED_PRECONDITION":
		return llmerrors.KindInvalidInput
	case "RESOURCE_EXHAUSTED":
		return llmerrors.KindRateLimit
	default:
		switch {
		case statusCode == 401:
			return llmerrors.KindAuthentication
		case statusCode == 403:
			return llmerrors.KindAuthentication
		case statusCode == 404:
			return llmerrors.KindNotFound
		case statusCode == 429:
			return llmerrors.KindRateLimit
		case statusCode >= 500:
			return llmerrors.KindAPIError
		default:
			return llmerrors.KindAPIError
		}
	}
}
