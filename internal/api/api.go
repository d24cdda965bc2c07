// Package api maps user intent onto knowledge API calls: one typed module per
// REST resource. Modules shape inputs and decode outputs; they never catch
// errors, which surface as *apierr.Error values.
package api

import (
	"go.uber.org/zap"

	"nibblify/internal/client"
	"nibblify/internal/session"
)

// Options tune the resource modules.
type Options struct {
	// MaxUploadBytes caps uploads client-side. Zero means DefaultMaxUploadBytes.
	MaxUploadBytes int64
	Logger         *zap.Logger
}

// API bundles the resource modules over one client.
type API struct {
	Auth      *Auth
	Documents *Documents
	Tags      *Tags
}

// New builds every resource module on c. sessions receives sign-ins and
// sign-outs performed through Auth.
func New(c *client.Client, sessions *session.Store, opts Options) *API {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &API{
		Auth:      &Auth{c: c, sessions: sessions, log: log},
		Documents: &Documents{c: c, maxUpload: maxUpload, log: log},
		Tags:      &Tags{c: c},
	}
}
