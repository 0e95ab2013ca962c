package types

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
)

// MultipartForm is the multipart/form-data payload a Json|Multipart
// transformer (STT, file upload) builds. The executor encodes it with
// mime/multipart and swaps the default application/json Content-Type for
// the multipart boundary one before sending (spec §4.1: transform_stt and
// transform_files_upload return `Json | Multipart`).
type MultipartForm struct {
	Fields          map[string]string
	FileFieldName   string
	Filename        string
	FileData        []byte
	FileContentType string
}

// Encode renders f as a multipart/form-data body, returning the body bytes
// and the Content-Type header value (including the boundary) to send it
// with.
func (f *MultipartForm) Encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range f.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	if f.FileFieldName != "" {
		var part io.Writer
		var err error
		if f.FileContentType != "" {
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.FileFieldName, f.Filename))
			h.Set("Content-Type", f.FileContentType)
			part, err = w.CreatePart(h)
		} else {
			part, err = w.CreateFormFile(f.FileFieldName, f.Filename)
		}
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.FileData); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
