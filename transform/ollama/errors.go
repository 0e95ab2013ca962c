package ollama

import (
	"encoding/json"

	"github.com/taipm/go-llm-gateway/llmerrors"
)

type errorWire struct {
	Error string `json:"error"`
}

// ClassifyError maps Ollama's flat {"error": "message"} envelope to an
// llmerrors.Error, grounded in original_source's
// ollama_http_error_fixtures_alignment_test.rs (message passed through
// verbatim, kind derived from the HTTP status alone since Ollama carries no
// error-type field).
func ClassifyError(statusCode int, body []byte) error {
	var wire errorWire
	_ = json.Unmarshal(body, &wire)

	msg := wire.Error
	if msg == "" {
		msg = "ollama: request failed"
	}

	return &llmerrors.Error{
		Kind:    kindForStatus(statusCode),
		Message: msg,
		Code:    statusCode,
	}
}

func kindForStatus(statusCode int) llmerrors.Kind {
	switch {
	case statusCode == 401 || statusCode == 403:
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
