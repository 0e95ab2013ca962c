package openairesponses

import (
	"encoding/json"

	"github.com/taipm/go-llm-gateway/llmerrors"
)

type apiErrorWire struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// ClassifyError maps a Responses API error envelope onto a Kind; the
// envelope shape is identical to Chat Completions' (spec §4.1).
func ClassifyError(statusCode int, body []byte) error {
	var wire apiErrorWire
	msg, errType := "", ""
	if err := json.Unmarshal(body, &wire); err == nil {
		msg, errType = wire.Error.Message, wire.Error.Type
	}
	if msg == "" {
		msg = "openai responses: request failed"
	}

	kind := llmerrors.KindAPIError
	switch {
	case errType == "insufficient_quota":
		kind = llmerrors.KindQuotaExceeded
	case errType == "invalid_request_error":
		kind = llmerrors.KindInvalidInput
	case statusCode == 401 || statusCode == 403:
		kind = llmerrors.KindAuthentication
	case statusCode == 404:
		kind = llmerrors.KindNotFound
	case statusCode == 429:
		kind = llmerrors.KindRateLimit
	case statusCode == 408:
		kind = llmerrors.KindTimeout
	}
	return &llmerrors.Error{Kind: kind, Message: msg, Code: statusCode, Details: map[string]any{"type": errType}}
}
