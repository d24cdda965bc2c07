package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusOK, nil},
		{http.StatusNoContent, nil},
		{http.StatusBadRequest, ErrValidation},
		{http.StatusUnauthorized, ErrAuth},
		{http.StatusForbidden, ErrAuth},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusUnprocessableEntity, ErrValidation},
		{http.StatusInternalServerError, ErrServer},
		{http.StatusBadGateway, ErrServer},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, KindForStatus(tt.status))
		})
	}
}

func TestFromResponse(t *testing.T) {
	t.Run("string detail", func(t *testing.T) {
		err := FromResponse(http.StatusBadRequest, []byte(`{"detail":"Only PDF files are supported"}`), "rid-1")
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "Only PDF files are supported", err.Detail)
		assert.Equal(t, "rid-1", err.RequestID)
	})

	t.Run("field detail list", func(t *testing.T) {
		body := []byte(`{"detail":[{"loc":["body","title"],"msg":"field required","type":"value_error.missing"}]}`)
		err := FromResponse(http.StatusUnprocessableEntity, body, "")
		assert.ErrorIs(t, err, ErrValidation)
		require.Len(t, err.Fields, 1)
		assert.Equal(t, "title", err.Fields[0].Field)
		assert.Equal(t, "title: field required", err.Detail)
	})

	t.Run("error envelope", func(t *testing.T) {
		err := FromResponse(http.StatusNotFound, []byte(`{"request_id":"x","error":{"code":"NOT_FOUND","message":"document not found"}}`), "")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, "document not found", err.Detail)
	})

	t.Run("non json body falls back to status text", func(t *testing.T) {
		err := FromResponse(http.StatusBadGateway, []byte("<html>"), "")
		assert.ErrorIs(t, err, ErrServer)
		assert.Equal(t, "Bad Gateway", err.Detail)
	})
}

func TestErrorMatching(t *testing.T) {
	base := Network(errors.New("connection refused"))
	wrapped := fmt.Errorf("list documents: %w", base)

	assert.ErrorIs(t, wrapped, ErrNetwork)
	assert.NotErrorIs(t, wrapped, ErrAuth)
	assert.Equal(t, "network error: connection refused", base.Error())

	e, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Same(t, base, e)
}

func TestIsSessionExpired(t *testing.T) {
	err := Auth(http.StatusUnauthorized, "Could not validate credentials")
	assert.False(t, IsSessionExpired(err))
	err.SessionExpired = true
	assert.True(t, IsSessionExpired(fmt.Errorf("me: %w", err)))
	assert.Equal(t, "Could not validate credentials", DetailOf(err))
	assert.False(t, IsSessionExpired(errors.New("plain")))
}
