package views

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"nibblify/internal/api"
	"nibblify/internal/apierr"
	"nibblify/internal/model"
)

// UploadView submits a PDF and shows a byte progress bar while it is sent.
type UploadView struct {
	state
	docs DocumentsAPI
	nav  Navigator
	list Refresher
	// out receives the progress bar; nil hides it.
	out io.Writer
	doc model.Document
}

// NewUploadView creates the upload screen.
func NewUploadView(docs DocumentsAPI, nav Navigator, list Refresher, progressOut io.Writer) *UploadView {
	return &UploadView{docs: docs, nav: nav, list: list, out: progressOut}
}

// Submit uploads data as filename. Only .pdf files are accepted here; the
// resource module and the backend check again.
func (v *UploadView) Submit(ctx context.Context, filename string, data []byte, title string, tagIDs []model.ID) error {
	if err := v.begin(); err != nil {
		return err
	}
	if err := v.required("Please select a file", filename); err != nil {
		return err
	}
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		const msg = "Only PDF files are supported"
		v.fail(msg)
		return apierr.Validation(msg)
	}

	in := api.UploadInput{Filename: filename, Title: title, Data: data, TagIDs: tagIDs}
	var bar *progressbar.ProgressBar
	if v.out != nil {
		bar = progressBar(v.out, int64(len(data)), filepath.Base(filename))
		in.Progress = bar
	}
	doc, err := v.docs.Upload(ctx, in)
	if bar != nil {
		_ = bar.Finish()
	}
	if err := v.finish(v.nav, err, "Failed to upload document"); err != nil {
		return err
	}
	v.doc = doc

	if v.list != nil {
		if err := v.list.Load(ctx); err != nil {
			return err
		}
	}
	navigate(v.nav, RouteDocuments)
	return nil
}

// Render prints the outcome of the last upload.
func (v *UploadView) Render(w io.Writer) {
	if !v.renderState(w, "Uploading...") {
		return
	}
	okColor.Fprintf(w, "Uploaded %s as document %s (%s)\n", v.doc.Title, v.doc.ID, v.doc.FileType)
}

// Document returns the uploaded document.
func (v *UploadView) Document() model.Document {
	return v.doc
}

func progressBar(w io.Writer, total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() { _, _ = io.WriteString(w, "\n") }),
	)
}
