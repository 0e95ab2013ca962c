package openai

import (
	"encoding/json"

	"github.com/taipm/go-llm-gateway/llmerrors"
)

type apiErrorWire struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Param   string `json:"param"`
		Code    string `json:"code"`
	} `json:"error"`
}

// ClassifyError maps an OpenAI {"error":{"message","type","code"}} envelope
// onto a Kind, falling back on statusCode when the body doesn't parse.
func ClassifyError(statusCode int, body []byte) error {
	var wire apiErrorWire
	msg := ""
	errType := ""
	if err := json.Unmarshal(body, &wire); err == nil {
		msg = wire.Error.Message
		errType = wire.Error.Type
	}
	if msg == "" {
		msg = "openai: request failed"
	}

	kind := kindForStatus(statusCode, errType)
	return &llmerrors.Error{
		Kind:    kind,
		Message: msg,
		Code:    statusCode,
		Details: map[string]any{"type": errType},
	}
}

func kindForStatus(statusCode int, errType string) llmerrors.Kind {
	switch errType {
	case "insufficient_quota":
		return llmerrors.KindQuotaExceeded
	case "invalid_request_error":
		return llmerrors.KindInvalidInput
	}
	switch statusCode {
	case 401, 403:
		return llmerrors.KindAuthentication
	case 404:
		return llmerrors.KindNotFound
	case 422:
		return llmerrors.KindInvalidInput
	case 429:
		return llmerrors.KindRateLimit
	case 408:
		return llmerrors.KindTimeout
	default:
		return llmerrors.KindAPIError
	}
}
