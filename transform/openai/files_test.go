package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/types"
)

func TestFilesTransformer_Basic(t *testing.T) {
	form, err := FilesTransformer{}.TransformFilesUpload(&types.FileUploadRequest{
		Filename: "doc.pdf",
		Data:     []byte("%PDF-1.4"),
		MimeType: "application/pdf",
		Purpose:  "fine-tune",
	})
	require.NoError(t, err)
	assert.Equal(t, "fine-tune", form.Fields["purpose"])
	assert.Equal(t, "doc.pdf", form.Filename)
	assert.Equal(t, []byte("%PDF-1.4"), form.FileData)
}

func TestFilesTransformer_DefaultPurpose(t *testing.T) {
	form, err := FilesTransformer{}.TransformFilesUpload(&types.FileUploadRequest{
		Filename: "doc.pdf",
		Data:     []byte("x"),
	})
	require.NoError(t, err)
	assert.Equal(t, "assistants", form.Fields["purpose"])
}

func TestFilesTransformer_MissingFilename(t *testing.T) {
	_, err := FilesTransformer{}.TransformFilesUpload(&types.FileUploadRequest{Data: []byte("x")})
	require.Error(t, err)
	assert.True(t, llmerrors.IsInvalidInput(err))
}

func TestParseFilesUpload(t *testing.T) {
	resp, err := ParseFilesUpload([]byte(`{"id":"file-abc123","filename":"doc.pdf","bytes":1024}`))
	require.NoError(t, err)
	assert.Equal(t, "file-abc123", resp.ID)
	assert.Equal(t, "doc.pdf", resp.Filename)
	assert.EqualValues(t, 1024, resp.Bytes)
}
