package openai

import (
	"encoding/json"

	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/types"
)

// STTTransformer renders an STTRequest into the multipart/form-data body
// OpenAI's /audio/transcriptions endpoint expects.
type STTTransformer struct{}

func (STTTransformer) TransformSTT(req *types.STTRequest) (*types.MultipartForm, error) {
	if req.Model == "" {
		return nil, llmerrors.New(llmerrors.KindInvalidInput, "model is required")
	}
	if len(req.AudioData) == 0 {
		return nil, llmerrors.New(llmerrors.KindInvalidInput, "audio data is required")
	}

	fields := map[string]string{"model": req.Model}
	if req.Language != "" {
		fields["language"] = req.Language
	}
	if opts := req.Options.Get("openai"); opts != nil {
		for k, v := range opts {
			if s, ok := v.(string); ok {
				fields[k] = s
			}
		}
	}

	filename := "audio"
	if req.AudioMime != "" {
		if ext, ok := extensionForMime(req.AudioMime); ok {
			filename += ext
		}
	}

	return &types.MultipartForm{
		Fields:          fields,
		FileFieldName:   "file",
		Filename:        filename,
		FileData:        req.AudioData,
		FileContentType: req.AudioMime,
	}, nil
}

func extensionForMime(mime string) (string, bool) {
	switch mime {
	case "audio/mpeg", "audio/mp3":
		return ".mp3", true
	case "audio/wav", "audio/x-wav":
		return ".wav", true
	case "audio/webm":
		return ".webm", true
	case "audio/mp4", "audio/m4a":
		return ".m4a", true
	default:
		return "", false
	}
}

type sttWire struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// ParseSTT parses an OpenAI /audio/transcriptions response.
func ParseSTT(body []byte) (*types.STTResponse, error) {
	var wire sttWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, llmerrors.Wrap(llmerrors.KindParseError, "openai: decode transcription response", err)
	}
	return &types.STTResponse{Text: wire.Text, Language: wire.Language}, nil
}
