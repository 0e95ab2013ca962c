package gemini

import (
	"encoding/json"

	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/types"
)

// ImageTransformer renders Imagen :predict requests. Imagen takes no `size`
// or `seed` the way OpenAI does; both are downgraded to warnings, grounded
// in original_source's gemini_imagen_image_generation_alignment_test.rs.
type ImageTransformer struct{}

func (ImageTransformer) TransformImage(req *types.ImageGenerationRequest) (map[string]any, []string, error) {
	if req.Prompt == "" {
		return nil, nil, llmerrors.New(llmerrors.KindInvalidInput, "prompt is required")
	}

	count := req.Count
	if count <= 0 {
		count = 1
	}

	params := map[string]any{
		"sampleCount": count,
		"aspectRatio": "1:1",
	}

	var warnings []string
	if req.Size != "" {
		warnings = append(warnings, "unsupported_setting: size — This model does not support the `size` option. Use `aspectRatio` instead.")
	}
	if req.Seed != nil {
		warnings = append(warnings, "unsupported_setting: seed — This model does not support the `seed` option through this provider.")
	}

	if opts := req.Options.Get("gemini"); opts != nil {
		if vertex, ok := opts["vertex"].(map[string]any); ok {
			for k, v := range vertex {
				params[k] = v
			}
		}
	}

	body := map[string]any{
		"instances":  []map[string]any{{"prompt": req.Prompt}},
		"parameters": params,
	}
	return body, warnings, nil
}

type imagenPredictWire struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType            string `json:"mimeType"`
	} `json:"predictions"`
}

// ParseImage parses an Imagen :predict response body.
func ParseImage(body []byte) (*types.ImageGenerationResponse, error) {
	var wire imagenPredictWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, llmerrors.Wrap(llmerrors.KindParseError, "gemini: decode imagen predict", err)
	}
	resp := &types.ImageGenerationResponse{}
	for _, p := range wire.Predictions {
		mime := p.MimeType
		if mime == "" {
			mime = "image/png"
		}
		resp.Images = append(resp.Images, types.GeneratedImage{Data: p.BytesBase64Encoded, MimeType: mime})
	}
	return resp, nil
}
