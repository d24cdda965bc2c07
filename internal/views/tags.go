package views

import (
	"context"
	"io"

	"nibblify/internal/model"
)

// TagsView lists and creates tags.
type TagsView struct {
	state
	tags TagsAPI
	nav  Navigator
	list []model.Tag
}

// NewTagsView creates the tag screen.
func NewTagsView(tags TagsAPI, nav Navigator) *TagsView {
	return &TagsView{tags: tags, nav: nav}
}

// Load fetches the tags.
func (v *TagsView) Load(ctx context.Context) error {
	if err := v.begin(); err != nil {
		return err
	}
	list, err := v.tags.List(ctx)
	if err := v.finish(v.nav, err, "Error loading tags"); err != nil {
		return err
	}
	v.list = list
	return nil
}

// Create adds a tag and reloads the list.
func (v *TagsView) Create(ctx context.Context, name string) error {
	if err := v.begin(); err != nil {
		return err
	}
	if err := v.required("Tag name is required", name); err != nil {
		return err
	}
	_, err := v.tags.Create(ctx, name)
	if err := v.finish(v.nav, err, "Error creating tag"); err != nil {
		return err
	}
	return v.Load(ctx)
}

// Render prints the tags.
func (v *TagsView) Render(w io.Writer) {
	if !v.renderState(w, "Loading tags...") {
		return
	}
	heading(w, "Tags")
	if len(v.list) == 0 {
		dimColor.Fprintln(w, "No tags yet.")
		return
	}
	for _, t := range v.list {
		fprintf(w, "%-6s  %s\n", t.ID, t.Name)
	}
}
