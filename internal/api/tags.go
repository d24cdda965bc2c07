package api

import (
	"context"
	"net/http"
	"strings"

	"nibblify/internal/apierr"
	"nibblify/internal/client"
	"nibblify/internal/model"
	"nibblify/internal/transport"
)

const pathTags = "/knowledge/tags"

// Tags is the resource module for document tags.
type Tags struct {
	c *client.Client
}

// List returns the caller's tags.
func (t *Tags) List(ctx context.Context) ([]model.Tag, error) {
	tags := make([]model.Tag, 0)
	if err := t.c.Call(ctx, &transport.Request{Method: http.MethodGet, Path: pathTags}, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// Create adds a tag. The backend returns the existing tag when the name is taken.
func (t *Tags) Create(ctx context.Context, name string) (model.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Tag{}, apierr.Validation("Tag name is required", apierr.FieldError{Field: "name", Message: "required"})
	}
	req, err := client.JSON(http.MethodPost, pathTags, "", map[string]string{"name": name})
	if err != nil {
		return model.Tag{}, err
	}
	var tag model.Tag
	if err := t.c.Call(ctx, req, &tag); err != nil {
		return model.Tag{}, err
	}
	return tag, nil
}
