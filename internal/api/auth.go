package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"nibblify/internal/apierr"
	"nibblify/internal/client"
	"nibblify/internal/model"
	"nibblify/internal/session"
	"nibblify/internal/transport"
)

const (
	pathLogin    = client.LoginPath
	pathRegister = client.RegisterPath
	pathMe       = "/auth/me"
)

// Auth is the resource module for accounts and tokens.
type Auth struct {
	c        *client.Client
	sessions *session.Store
	log      *zap.Logger
}

// Login exchanges credentials for a token. It does not touch the session;
// see SignIn. Every non-2xx answer is reported as an auth error carrying the
// backend's detail.
func (a *Auth) Login(ctx context.Context, creds model.LoginCredentials) (model.Token, error) {
	form := url.Values{}
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)

	var tok model.Token
	err := a.c.Call(ctx, &transport.Request{
		Method:      http.MethodPost,
		Path:        pathLogin,
		Anonymous:   true,
		Body:        []byte(form.Encode()),
		ContentType: "application/x-www-form-urlencoded",
	}, &tok)
	if err != nil {
		return model.Token{}, asAuthError(err)
	}
	if tok.AccessToken == "" {
		return model.Token{}, apierr.Auth(http.StatusOK, "no access token in response")
	}
	return tok, nil
}

// Register creates an account. The caller must sign in separately.
func (a *Auth) Register(ctx context.Context, creds model.RegisterCredentials) (model.User, error) {
	req, err := client.JSON(http.MethodPost, pathRegister, "", creds)
	if err != nil {
		return model.User{}, err
	}
	req.Anonymous = true
	var user model.User
	if err := a.c.Call(ctx, req, &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// CurrentUser returns the account the session token belongs to. Without a
// token it fails immediately with an auth error.
func (a *Auth) CurrentUser(ctx context.Context) (model.User, error) {
	token := ""
	if a.sessions != nil {
		token = a.sessions.Token()
	}
	if token == "" {
		return model.User{}, apierr.Auth(0, "not signed in")
	}
	return a.currentUser(ctx, token)
}

func (a *Auth) currentUser(ctx context.Context, token string) (model.User, error) {
	var user model.User
	err := a.c.Call(ctx, &transport.Request{Method: http.MethodGet, Path: pathMe, Token: token}, &user)
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

// SignIn logs in, fetches the account with the fresh token, then records
// both in the session. Nothing is persisted unless every step succeeds.
func (a *Auth) SignIn(ctx context.Context, creds model.LoginCredentials) (model.User, error) {
	tok, err := a.Login(ctx, creds)
	if err != nil {
		return model.User{}, err
	}
	user, err := a.currentUser(ctx, tok.AccessToken)
	if err != nil {
		return model.User{}, asAuthError(err)
	}
	if a.sessions == nil {
		return user, nil
	}
	if err := a.sessions.Login(tok.AccessToken, user); err != nil {
		return model.User{}, fmt.Errorf("save session: %w", err)
	}
	a.log.Info("signed in", zap.String("user", user.Email))
	return user, nil
}

// Logout ends the local session. Tokens are stateless on the server, so
// there is no call to make.
func (a *Auth) Logout() error {
	if a.sessions == nil {
		return nil
	}
	return a.sessions.Logout()
}

// asAuthError reclassifies HTTP failures as auth errors, keeping network
// failures as they are.
func asAuthError(err error) error {
	e, ok := apierr.AsError(err)
	if !ok || e.Kind == apierr.ErrNetwork || e.Kind == apierr.ErrAuth {
		return err
	}
	out := *e
	out.Kind = apierr.ErrAuth
	return &out
}
