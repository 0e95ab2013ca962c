package openai

import (
	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/types"
)

// TTSTransformer renders a TTSRequest into an OpenAI /audio/speech body.
type TTSTransformer struct{}

func (TTSTransformer) TransformTTS(req *types.TTSRequest) (map[string]any, error) {
	if req.Model == "" {
		return nil, llmerrors.New(llmerrors.KindInvalidInput, "model is required")
	}
	if req.Input == "" {
		return nil, llmerrors.New(llmerrors.KindInvalidInput, "input is required")
	}

	body := map[string]any{
		"model": req.Model,
		"input": req.Input,
	}
	if req.Voice != "" {
		body["voice"] = req.Voice
	}
	if req.Format != "" {
		body["response_format"] = req.Format
	}
	if opts := req.Options.Get("openai"); opts != nil {
		for k, v := range opts {
			body[k] = v
		}
	}
	return body, nil
}

// ParseTTS wraps the raw audio bytes OpenAI returns for /audio/speech; there
// is no JSON envelope to parse on this response (spec §4.1).
func ParseTTS(body []byte, contentType string) (*types.TTSResponse, error) {
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return &types.TTSResponse{AudioData: body, MimeType: contentType}, nil
}
