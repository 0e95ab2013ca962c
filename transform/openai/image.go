package openai

import (
	"encoding/json"

	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/types"
)

// ImageTransformer renders an ImageGenerationRequest into an OpenAI
// /images/generations body.
type ImageTransformer struct{}

func (ImageTransformer) TransformImage(req *types.ImageGenerationRequest) (map[string]any, []string, error) {
	if req.Prompt == "" {
		return nil, nil, llmerrors.New(llmerrors.KindInvalidInput, "prompt is required")
	}

	count := req.Count
	if count <= 0 {
		count = 1
	}

	body := map[string]any{
		"model":  req.Model,
		"prompt": req.Prompt,
		"n":      count,
	}
	if req.Size != "" {
		body["size"] = req.Size
	}

	var warnings []string
	if req.Seed != nil {
		warnings = append(warnings, "unsupported_setting: seed — This model does not support the `seed` option.")
	}

	if opts := req.Options.Get("openai"); opts != nil {
		for k, v := range opts {
			body[k] = v
		}
	}
	return body, warnings, nil
}

type imageGenWire struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
}

// ParseImage parses an OpenAI /images/generations response.
func ParseImage(body []byte) (*types.ImageGenerationResponse, error) {
	var wire imageGenWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, llmerrors.Wrap(llmerrors.KindParseError, "openai: decode image response", err)
	}
	resp := &types.ImageGenerationResponse{}
	for _, d := range wire.Data {
		img := types.GeneratedImage{MimeType: "image/png"}
		if d.B64JSON != "" {
			img.Data = d.B64JSON
		} else {
			img.URL = d.URL
		}
		resp.Images = append(resp.Images, img)
	}
	return resp, nil
}
