package openai

import (
	"encoding/json"

	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/types"
)

// FilesTransformer renders a FileUploadRequest into the multipart/form-data
// body OpenAI's /files endpoint expects.
type FilesTransformer struct{}

func (FilesTransformer) TransformFilesUpload(req *types.FileUploadRequest) (*types.MultipartForm, error) {
	if req.Filename == "" {
		return nil, llmerrors.New(llmerrors.KindInvalidInput, "filename is required")
	}
	if len(req.Data) == 0 {
		return nil, llmerrors.New(llmerrors.KindInvalidInput, "file data is required")
	}

	purpose := req.Purpose
	if purpose == "" {
		purpose = "assistants"
	}

	return &types.MultipartForm{
		Fields:          map[string]string{"purpose": purpose},
		FileFieldName:   "file",
		Filename:        req.Filename,
		FileData:        req.Data,
		FileContentType: req.MimeType,
	}, nil
}

type fileUploadWire struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Bytes    int64  `json:"bytes"`
}

// ParseFilesUpload parses an OpenAI /files response.
func ParseFilesUpload(body []byte) (*types.FileUploadResponse, error) {
	var wire fileUploadWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, llmerrors.Wrap(llmerrors.KindParseError, "openai: decode file upload response", err)
	}
	return &types.FileUploadResponse{ID: wire.ID, Filename: wire.Filename, Bytes: wire.Bytes}, nil
}
