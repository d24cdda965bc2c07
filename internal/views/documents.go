package views

import (
	"context"
	"errors"
	"io"
	"strings"

	"nibblify/internal/apierr"
	"nibblify/internal/model"
)

// ListView shows the caller's documents.
type ListView struct {
	state
	docs DocumentsAPI
	nav  Navigator
	list []model.Document
}

// NewListView creates the document list screen.
func NewListView(docs DocumentsAPI, nav Navigator) *ListView {
	return &ListView{docs: docs, nav: nav}
}

// Load fetches the list.
func (v *ListView) Load(ctx context.Context) error {
	if err := v.begin(); err != nil {
		return err
	}
	list, err := v.docs.GetAll(ctx)
	if err := v.finish(v.nav, err, "Error loading documents"); err != nil {
		return err
	}
	v.list = list
	return nil
}

// Delete removes a document and reloads the list.
func (v *ListView) Delete(ctx context.Context, id model.ID) error {
	if err := v.begin(); err != nil {
		return err
	}
	err := v.docs.Delete(ctx, id)
	if err := v.finish(v.nav, err, "Error deleting document"); err != nil {
		return err
	}
	return v.Load(ctx)
}

// Documents returns the last loaded list.
func (v *ListView) Documents() []model.Document {
	return v.list
}

// Render prints the list as a table.
func (v *ListView) Render(w io.Writer) {
	if !v.renderState(w, "Loading...") {
		return
	}
	heading(w, "Documents")
	if len(v.list) == 0 {
		dimColor.Fprintln(w, "No documents yet.")
		return
	}
	fprintf(w, "%-6s  %-40s  %-5s  %s\n", "ID", "TITLE", "TYPE", "CREATED AT")
	for _, d := range v.list {
		typ := d.FileType
		if typ == "" {
			typ = "text"
		}
		fprintf(w, "%-6s  %-40s  %-5s  %s\n", d.ID, truncate(d.Title, 40), typ, formatDate(d.CreatedAt))
	}
}

// DetailView shows one document.
type DetailView struct {
	state
	docs DocumentsAPI
	nav  Navigator
	doc  model.Document
}

// NewDetailView creates the document screen.
func NewDetailView(docs DocumentsAPI, nav Navigator) *DetailView {
	return &DetailView{docs: docs, nav: nav}
}

// Load fetches the document.
func (v *DetailView) Load(ctx context.Context, id model.ID) error {
	if err := v.begin(); err != nil {
		return err
	}
	doc, err := v.docs.GetByID(ctx, id)
	fallback := "Error loading document"
	if errors.Is(err, apierr.ErrNotFound) {
		fallback = "Document not found"
	}
	if err := v.finish(v.nav, err, fallback); err != nil {
		return err
	}
	v.doc = doc
	return nil
}

// Document returns the loaded document.
func (v *DetailView) Document() model.Document {
	return v.doc
}

// Render prints the document with its content.
func (v *DetailView) Render(w io.Writer) {
	if !v.renderState(w, "Loading document...") {
		return
	}
	heading(w, "%s", v.doc.Title)
	dimColor.Fprintf(w, "Created on %s", formatDate(v.doc.CreatedAt))
	if v.doc.UpdatedAt != nil {
		dimColor.Fprintf(w, ", updated %s", formatDate(*v.doc.UpdatedAt))
	}
	fprintf(w, "\n")
	if v.doc.IsArchived {
		dimColor.Fprintln(w, "archived")
	}
	if len(v.doc.Tags) > 0 {
		names := make([]string, 0, len(v.doc.Tags))
		for _, t := range v.doc.Tags {
			names = append(names, t.Name)
		}
		fprintf(w, "tags: %s\n", strings.Join(names, ", "))
	}
	if v.doc.FileBacked() {
		fprintf(w, "file: %s (%s)\n", v.doc.FilePath, v.doc.FileType)
	}
	if v.doc.URL != "" {
		fprintf(w, "url:  %s\n", v.doc.URL)
	}
	fprintf(w, "\n%s\n", v.doc.Text())
}

// FormView creates and edits documents.
type FormView struct {
	state
	docs  DocumentsAPI
	nav   Navigator
	list  Refresher
	saved model.Document
}

// NewFormView creates the editor. list, when set, is reloaded after a save.
func NewFormView(docs DocumentsAPI, nav Navigator, list Refresher) *FormView {
	return &FormView{docs: docs, nav: nav, list: list}
}

// Create saves a new document.
func (v *FormView) Create(ctx context.Context, in model.CreateDocumentInput) error {
	if err := v.begin(); err != nil {
		return err
	}
	if err := v.required("Title is required", in.Title); err != nil {
		return err
	}
	doc, err := v.docs.Create(ctx, in)
	if err := v.finish(v.nav, err, "Error creating document"); err != nil {
		return err
	}
	v.saved = doc
	return v.done(ctx)
}

// Edit sends the fields set in patch. A title, when given, must not be blank.
func (v *FormView) Edit(ctx context.Context, id model.ID, patch model.UpdateDocumentInput) error {
	if err := v.begin(); err != nil {
		return err
	}
	if patch.Title != nil {
		if err := v.required("Title is required", *patch.Title); err != nil {
			return err
		}
	}
	doc, err := v.docs.Update(ctx, id, patch)
	if err := v.finish(v.nav, err, "Error updating document"); err != nil {
		return err
	}
	v.saved = doc
	return v.done(ctx)
}

func (v *FormView) done(ctx context.Context) error {
	if v.list != nil {
		if err := v.list.Load(ctx); err != nil {
			return err
		}
	}
	navigate(v.nav, RouteDocuments)
	return nil
}

// Saved returns the document from the last successful save.
func (v *FormView) Saved() model.Document {
	return v.saved
}

// Render prints the outcome of the last save.
func (v *FormView) Render(w io.Writer) {
	if !v.renderState(w, "Saving...") {
		return
	}
	okColor.Fprintf(w, "Saved document %s: %s\n", v.saved.ID, v.saved.Title)
}
