package views

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nibblify/internal/api"
	"nibblify/internal/client"
	"nibblify/internal/model"
	"nibblify/internal/session"
	"nibblify/internal/standin/standintest"
	"nibblify/internal/storage"
	"nibblify/internal/transport"
)

func newStack(t *testing.T) (*api.API, *session.Store) {
	t.Helper()
	srv := standintest.Start(t)
	sessions := session.NewStore(storage.NewMemory(), zap.NewNop())
	tr, err := transport.New(transport.Options{BaseURL: srv.BaseURL(), Timeout: 5 * time.Second, Tokens: sessions})
	require.NoError(t, err)
	return api.New(client.New(tr, sessions, zap.NewNop()), sessions, api.Options{}), sessions
}

func TestFlow_LoginCreateList(t *testing.T) {
	a, sessions := newStack(t)
	ctx := context.Background()
	nav := NewRouter(RouteLogin)

	login := NewLoginView(a.Auth, nav)
	require.NoError(t, login.Submit(ctx, standintest.Email, standintest.Password))
	assert.True(t, sessions.IsAuthenticated())

	list := NewListView(a.Documents, nav)
	form := NewFormView(a.Documents, nav, list)
	require.NoError(t, form.Create(ctx, model.CreateDocumentInput{Title: "Notes", Content: model.StringPtr("hello")}))
	require.Len(t, list.Documents(), 1)
	assert.Equal(t, "Notes", list.Documents()[0].Title)
	assert.Equal(t, []string{RouteDocuments, RouteDocuments}, nav.Visits())
}

func TestFlow_ExpiredSessionRedirectsOnce(t *testing.T) {
	a, sessions := newStack(t)
	ctx := context.Background()
	nav := NewRouter(RouteLogin)
	require.NoError(t, NewLoginView(a.Auth, nav).Submit(ctx, standintest.Email, standintest.Password))

	user, _ := sessions.User()
	require.NoError(t, sessions.Login("expired-token", user))

	list := NewListView(a.Documents, nav)
	require.Error(t, list.Load(ctx))
	assert.False(t, sessions.IsAuthenticated())
	assert.Equal(t, RouteLogin, nav.Current())
	assert.Equal(t, []string{RouteDocuments, RouteLogin}, nav.Visits())

	// Already on login: a further failure does not navigate again.
	require.Error(t, NewWhoAmIView(a.Auth, nav).Load(ctx))
	assert.Len(t, nav.Visits(), 2)
}

func TestFlow_BadCredentialsStayOnLogin(t *testing.T) {
	a, sessions := newStack(t)
	nav := NewRouter(RouteLogin)

	v := NewLoginView(a.Auth, nav)
	require.Error(t, v.Submit(context.Background(), standintest.Email, "nope"))
	assert.Equal(t, "Incorrect email or password", v.ErrorMessage())
	assert.False(t, sessions.IsAuthenticated())
	assert.Empty(t, nav.Visits())
}
