package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"nibblify/internal/apierr"
	"nibblify/internal/model"
	"nibblify/internal/transport"
)

// DefaultMaxUploadBytes matches the backend's upload cap.
const DefaultMaxUploadBytes int64 = 10 * 1024 * 1024

// UploadInput is a file to upload as a new document.
type UploadInput struct {
	Filename string
	// Title defaults to the file name without its extension.
	Title  string
	Data   []byte
	TagIDs []model.ID
	// Progress, when set, receives the request body as it is sent.
	Progress io.Writer
}

// Upload checks the file locally, then submits it as multipart form data.
// Non-PDF input fails with a validation error before any request is made;
// the backend's own rejection is reported the same way.
func (d *Documents) Upload(ctx context.Context, in UploadInput) (model.Document, error) {
	pages, err := ValidatePDF(in.Filename, in.Data, d.maxUpload)
	if err != nil {
		return model.Document{}, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(in.Filename), filepath.Ext(in.Filename))
	}

	body, contentType, err := uploadBody(filepath.Base(in.Filename), title, in.Data, in.TagIDs)
	if err != nil {
		return model.Document{}, err
	}

	d.log.Debug("uploading document",
		zap.String("filename", in.Filename),
		zap.Int("bytes", len(in.Data)),
		zap.Int("pages", pages),
	)

	var doc model.Document
	err = d.c.Call(ctx, &transport.Request{
		Method:      http.MethodPost,
		Path:        pathUpload,
		Body:        body,
		ContentType: contentType,
		Progress:    in.Progress,
	}, &doc)
	if err != nil {
		return model.Document{}, err
	}
	return doc, nil
}

// ValidatePDF is the client-side fast-fail for uploads: the name must end in
// .pdf, the size must be within limit, and the bytes must open as a PDF. It
// returns the page count.
func ValidatePDF(filename string, data []byte, limit int64) (int, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return 0, apierr.Validation("Only PDF files are supported", apierr.FieldError{Field: "file", Message: "must be a .pdf file"})
	}
	if len(data) == 0 {
		return 0, apierr.Validation("File is empty", apierr.FieldError{Field: "file", Message: "empty"})
	}
	if limit > 0 && int64(len(data)) > limit {
		return 0, apierr.Validation(fmt.Sprintf("File exceeds the %d byte upload limit", limit), apierr.FieldError{Field: "file", Message: "too large"})
	}
	pages, err := pageCount(data)
	if err != nil {
		return 0, &apierr.Error{
			Kind:   apierr.ErrValidation,
			Detail: "File is not a readable PDF",
			Fields: []apierr.FieldError{{Field: "file", Message: "not a PDF"}},
			Err:    err,
		}
	}
	return pages, nil
}

// pageCount opens data as a PDF. The parser panics on some malformed input,
// so panics are turned into errors.
func pageCount(data []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	return r.NumPage(), nil
}

func uploadBody(filename, title string, data []byte, tagIDs []model.ID) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", "application/pdf")
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("build upload body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("build upload body: %w", err)
	}
	if err := w.WriteField("title", title); err != nil {
		return nil, "", fmt.Errorf("build upload body: %w", err)
	}
	for _, id := range tagIDs {
		if err := w.WriteField("tag_ids", id.String()); err != nil {
			return nil, "", fmt.Errorf("build upload body: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("build upload body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
