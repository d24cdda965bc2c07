package model

import "time"

// Document is a knowledge entry owned by a user. It is either content-bearing
// (Content set) or file-backed (FilePath/FileType set); Title and ID are always present.
type Document struct {
	ID         ID         `json:"id"`
	Title      string     `json:"title"`
	Content    *string    `json:"content"`
	FilePath   string     `json:"file_path,omitempty"`
	FileType   string     `json:"file_type,omitempty"`
	URL        string     `json:"url,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
	UserID     ID         `json:"user_id"`
	IsArchived bool       `json:"is_archived"`
	Tags       []Tag      `json:"tags,omitempty"`
}

// Text returns the document content, or an empty string for file-backed documents.
func (d Document) Text() string {
	if d.Content == nil {
		return ""
	}
	return *d.Content
}

// FileBacked reports whether the document was created from an uploaded file.
func (d Document) FileBacked() bool {
	return d.FilePath != "" || d.FileType != ""
}

// CreateDocumentInput is the body of a create call.
type CreateDocumentInput struct {
	Title      string  `json:"title"`
	Content    *string `json:"content,omitempty"`
	FilePath   string  `json:"file_path,omitempty"`
	FileType   string  `json:"file_type,omitempty"`
	URL        string  `json:"url,omitempty"`
	IsArchived bool    `json:"is_archived"`
	TagIDs     []ID    `json:"tag_ids,omitempty"`
}

// UpdateDocumentInput is a partial patch: nil fields are not sent and stay
// unchanged on the server.
type UpdateDocumentInput struct {
	Title      *string `json:"title,omitempty"`
	Content    *string `json:"content,omitempty"`
	FilePath   *string `json:"file_path,omitempty"`
	FileType   *string `json:"file_type,omitempty"`
	URL        *string `json:"url,omitempty"`
	IsArchived *bool   `json:"is_archived,omitempty"`
	TagIDs     []ID    `json:"tag_ids,omitempty"`
}

// Empty reports whether the patch carries no field at all.
func (in UpdateDocumentInput) Empty() bool {
	return in.Title == nil && in.Content == nil && in.FilePath == nil &&
		in.FileType == nil && in.URL == nil && in.IsArchived == nil && in.TagIDs == nil
}

// Tag is a user-defined label.
type Tag struct {
	ID        ID        `json:"id"`
	Name      string    `json:"name"`
	UserID    ID        `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool { return &b }
