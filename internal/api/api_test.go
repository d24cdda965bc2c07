package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nibblify/internal/apierr"
	"nibblify/internal/client"
	"nibblify/internal/model"
	"nibblify/internal/session"
	"nibblify/internal/standin/standintest"
	"nibblify/internal/storage"
	"nibblify/internal/testutil"
	"nibblify/internal/transport"
)

type harness struct {
	srv      *standintest.Server
	kv       *storage.Memory
	sessions *session.Store
	api      *API
}

func newAPI(t *testing.T, baseURL string, sessions *session.Store) *API {
	t.Helper()
	tr, err := transport.New(transport.Options{BaseURL: baseURL, Timeout: 5 * time.Second, Tokens: sessions})
	require.NoError(t, err)
	return New(client.New(tr, sessions, zap.NewNop()), sessions, Options{})
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv := standintest.Start(t)
	kv := storage.NewMemory()
	sessions := session.NewStore(kv, zap.NewNop())
	return &harness{srv: srv, kv: kv, sessions: sessions, api: newAPI(t, srv.BaseURL(), sessions)}
}

func (h *harness) signIn(t *testing.T) model.User {
	t.Helper()
	u, err := h.api.Auth.SignIn(context.Background(), model.LoginCredentials{
		Username: standintest.Email,
		Password: standintest.Password,
	})
	require.NoError(t, err)
	return u
}

func TestSignIn_ValidCredentials(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u := h.signIn(t)
	assert.Equal(t, standintest.Email, u.Email)
	assert.True(t, h.sessions.IsAuthenticated())
	assert.Equal(t, 2, h.kv.Len())

	me, err := h.api.Auth.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, u, me)
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	h := newHarness(t)

	_, err := h.api.Auth.SignIn(context.Background(), model.LoginCredentials{
		Username: standintest.Email,
		Password: "wrong",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ErrAuth)
	assert.Equal(t, "Incorrect email or password", apierr.DetailOf(err))
	assert.False(t, apierr.IsSessionExpired(err))
	assert.False(t, h.sessions.IsAuthenticated())
	assert.Zero(t, h.kv.Len())
}

func TestRegisterThenSignIn(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u, err := h.api.Auth.Register(ctx, model.RegisterCredentials{Email: "new@example.com", Password: "pw", FullName: "New"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", u.Email)
	assert.False(t, h.sessions.IsAuthenticated(), "registering does not sign in")

	_, err = h.api.Auth.Register(ctx, model.RegisterCredentials{Email: "new@example.com", Password: "pw"})
	assert.ErrorIs(t, err, apierr.ErrValidation)

	signed, err := h.api.Auth.SignIn(ctx, model.LoginCredentials{Username: "new@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, signed.ID)
}

func TestCurrentUser_WithoutTokenMakesNoRequest(t *testing.T) {
	h := newHarness(t)

	before := h.srv.Requests()
	_, err := h.api.Auth.CurrentUser(context.Background())
	assert.ErrorIs(t, err, apierr.ErrAuth)
	assert.Equal(t, before, h.srv.Requests())
}

func TestSession_LogoutAndRestart(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	restarted := session.NewStore(h.kv, zap.NewNop())
	assert.True(t, restarted.IsAuthenticated(), "a persisted token and user survive a restart")

	require.NoError(t, h.api.Auth.Logout())
	assert.False(t, h.sessions.IsAuthenticated())

	restarted = session.NewStore(h.kv, zap.NewNop())
	assert.False(t, restarted.IsAuthenticated())
}

func TestUnauthorized_ClearsSession(t *testing.T) {
	h := newHarness(t)
	u := h.signIn(t)

	// A token the server no longer accepts.
	require.NoError(t, h.sessions.Login("expired-token", u))

	_, err := h.api.Documents.GetAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ErrAuth)
	assert.True(t, apierr.IsSessionExpired(err))
	assert.False(t, h.sessions.IsAuthenticated())
	assert.Zero(t, h.kv.Len())
}

func TestUnauthorizedLogin_LeavesSessionAlone(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	_, err := h.api.Auth.Login(context.Background(), model.LoginCredentials{Username: standintest.Email, Password: "wrong"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ErrAuth)
	assert.False(t, apierr.IsSessionExpired(err))
	assert.True(t, h.sessions.IsAuthenticated())
}

func TestDocuments_CreateThenGet(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	ctx := context.Background()

	created, err := h.api.Documents.Create(ctx, model.CreateDocumentInput{Title: "Notes", Content: model.StringPtr("hello")})
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())

	got, err := h.api.Documents.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Notes", got.Title)
	assert.Equal(t, "hello", got.Text())
	assert.Equal(t, created.ID, got.ID)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = h.api.Documents.GetByID(ctx, "999")
	assert.ErrorIs(t, err, apierr.ErrNotFound)

	_, err = h.api.Documents.GetByID(ctx, "")
	assert.ErrorIs(t, err, apierr.ErrValidation)
}

func TestDocuments_UpdateIsPartialAndIdempotent(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	ctx := context.Background()

	doc, err := h.api.Documents.Create(ctx, model.CreateDocumentInput{
		Title:   "Draft",
		Content: model.StringPtr("body"),
		URL:     "https://example.com/a",
	})
	require.NoError(t, err)

	patch := model.UpdateDocumentInput{Title: model.StringPtr("Final")}
	once, err := h.api.Documents.Update(ctx, doc.ID, patch)
	require.NoError(t, err)
	twice, err := h.api.Documents.Update(ctx, doc.ID, patch)
	require.NoError(t, err)

	assert.Equal(t, "Final", once.Title)
	assert.Equal(t, "body", once.Text())
	assert.Equal(t, doc.URL, once.URL)
	assert.Equal(t, doc.IsArchived, once.IsArchived)
	assert.Equal(t, doc.CreatedAt.Unix(), once.CreatedAt.Unix())

	assert.Equal(t, once.Title, twice.Title)
	assert.Equal(t, once.Text(), twice.Text())
	assert.Equal(t, once.URL, twice.URL)
}

func TestDocuments_DeleteThenGetAll(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	ctx := context.Background()

	keep, err := h.api.Documents.Create(ctx, model.CreateDocumentInput{Title: "keep"})
	require.NoError(t, err)
	gone, err := h.api.Documents.Create(ctx, model.CreateDocumentInput{Title: "gone"})
	require.NoError(t, err)

	require.NoError(t, h.api.Documents.Delete(ctx, gone.ID))

	all, err := h.api.Documents.GetAll(ctx)
	require.NoError(t, err)
	ids := make([]model.ID, 0, len(all))
	for _, d := range all {
		ids = append(ids, d.ID)
	}
	assert.Contains(t, ids, keep.ID)
	assert.NotContains(t, ids, gone.ID)

	assert.ErrorIs(t, h.api.Documents.Delete(ctx, gone.ID), apierr.ErrNotFound)
}

func TestDocuments_List(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	ctx := context.Background()

	for _, title := range []string{"a", "b", "c"} {
		_, err := h.api.Documents.Create(ctx, model.CreateDocumentInput{Title: title})
		require.NoError(t, err)
	}

	page, err := h.api.Documents.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].Title)
}

func TestUpload_NonPDFMakesNoRequest(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	tests := []struct {
		name string
		in   UploadInput
	}{
		{name: "wrong extension", in: UploadInput{Filename: "notes.txt", Data: []byte("hello")}},
		{name: "empty file", in: UploadInput{Filename: "empty.pdf"}},
		{name: "not a pdf inside", in: UploadInput{Filename: "fake.pdf", Data: []byte("plain text pretending")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := h.srv.Requests()
			_, err := h.api.Documents.Upload(context.Background(), tt.in)
			assert.ErrorIs(t, err, apierr.ErrValidation)
			assert.Equal(t, before, h.srv.Requests())
		})
	}
}

func TestUpload_PDFIssuesOneMultipartRequest(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	before := h.srv.Requests()
	doc, err := h.api.Documents.Upload(context.Background(), UploadInput{
		Filename: "Quarterly Report.pdf",
		Data:     testutil.MinimalPDF("Quarterly numbers"),
	})
	require.NoError(t, err)
	assert.Equal(t, before+1, h.srv.Requests())
	assert.Equal(t, "pdf", doc.FileType)
	assert.Equal(t, "Quarterly Report", doc.Title)
	assert.True(t, doc.FileBacked())
}

func TestUpload_TooLarge(t *testing.T) {
	_, err := ValidatePDF("big.pdf", make([]byte, 11), 10)
	assert.ErrorIs(t, err, apierr.ErrValidation)

	pages, err := ValidatePDF("ok.pdf", testutil.MinimalPDF("x"), DefaultMaxUploadBytes)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
}

func TestSearch_Pages(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	ctx := context.Background()

	for _, title := range []string{"budget one", "budget two", "budget three", "holiday"} {
		_, err := h.api.Documents.Create(ctx, model.CreateDocumentInput{Title: title})
		require.NoError(t, err)
	}

	first, err := h.api.Documents.Search(ctx, "budget", nil, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Total)
	assert.Len(t, first.Documents, 2)
	assert.True(t, first.HasMore())

	second, err := h.api.Documents.Search(ctx, "budget", nil, 2, 2)
	require.NoError(t, err)
	assert.Len(t, second.Documents, 1)
	assert.False(t, second.HasMore())

	none, err := h.api.Documents.Search(ctx, "nothing", nil, 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, none.Documents)
	assert.Empty(t, none.Documents)
	assert.Equal(t, model.DefaultSearchPage, none.Page)
	assert.Equal(t, model.DefaultSearchLimit, none.Limit)
}

func TestSearch_TruncatesOversizedPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var q model.SearchQuery
		_ = json.NewDecoder(r.Body).Decode(&q)
		docs := make([]model.Document, q.Limit+3)
		for i := range docs {
			docs[i] = model.Document{ID: model.ID(strconv.Itoa(i + 1)), Title: "x"}
		}
		_ = json.NewEncoder(w).Encode(model.SearchResult{Documents: docs, Total: 50, Page: q.Page, Limit: q.Limit})
	}))
	t.Cleanup(srv.Close)

	a := newAPI(t, srv.URL, session.NewStore(storage.NewMemory(), nil))
	res, err := a.Documents.Search(context.Background(), "x", nil, 1, 2)
	require.NoError(t, err)
	assert.Len(t, res.Documents, 2)
	assert.Equal(t, 50, res.Total)
}

func TestTags(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	ctx := context.Background()

	work, err := h.api.Tags.Create(ctx, "work")
	require.NoError(t, err)
	again, err := h.api.Tags.Create(ctx, "work")
	require.NoError(t, err)
	assert.Equal(t, work.ID, again.ID)

	_, err = h.api.Tags.Create(ctx, "  ")
	assert.ErrorIs(t, err, apierr.ErrValidation)

	tags, err := h.api.Tags.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 1)

	doc, err := h.api.Documents.Create(ctx, model.CreateDocumentInput{Title: "tagged", TagIDs: []model.ID{work.ID}})
	require.NoError(t, err)
	require.Len(t, doc.Tags, 1)
	assert.Equal(t, "work", doc.Tags[0].Name)
}

func TestAuthCalls_AreAnonymousWhileSignedIn(t *testing.T) {
	var mu sync.Mutex
	auth := map[string]string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		auth[r.URL.Path] = r.Header.Get("Authorization")
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/access-token") {
			_, _ = w.Write([]byte(`{"access_token":"new","token_type":"bearer"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"2","email":"b@example.com","full_name":"B"}`))
	}))
	t.Cleanup(srv.Close)

	sessions := session.NewStore(storage.NewMemory(), zap.NewNop())
	require.NoError(t, sessions.Login("old", model.User{ID: "1", Email: "a@example.com"}))
	a := newAPI(t, srv.URL+"/api/v1", sessions)
	ctx := context.Background()

	_, err := a.Auth.Login(ctx, model.LoginCredentials{Username: "b@example.com", Password: "pw"})
	require.NoError(t, err)
	_, err = a.Auth.Register(ctx, model.RegisterCredentials{Email: "b@example.com", Password: "pw", FullName: "B"})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, auth["/api/v1/auth/login/access-token"])
	assert.Empty(t, auth["/api/v1/auth/register"])
}
