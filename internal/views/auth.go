package views

import (
	"context"
	"io"

	"nibblify/internal/model"
)

// LoginView signs a user in and moves on to the document list.
type LoginView struct {
	state
	auth AuthAPI
	nav  Navigator
	user model.User
}

// NewLoginView creates a login screen.
func NewLoginView(auth AuthAPI, nav Navigator) *LoginView {
	return &LoginView{auth: auth, nav: nav}
}

// Submit signs in with email and password.
func (v *LoginView) Submit(ctx context.Context, email, password string) error {
	if err := v.begin(); err != nil {
		return err
	}
	if err := v.required("All fields are required", email, password); err != nil {
		return err
	}
	u, err := v.auth.SignIn(ctx, model.LoginCredentials{Username: email, Password: password})
	if err := v.finish(v.nav, err, "Invalid email or password"); err != nil {
		return err
	}
	v.user = u
	navigate(v.nav, RouteDocuments)
	return nil
}

// Render prints the outcome of the last submit.
func (v *LoginView) Render(w io.Writer) {
	if !v.renderState(w, "Signing in...") {
		return
	}
	okColor.Fprintf(w, "Signed in as %s\n", v.user.Email)
}

// RegisterView creates an account and then signs it in.
type RegisterView struct {
	state
	auth AuthAPI
	nav  Navigator
	user model.User
}

// NewRegisterView creates a registration screen.
func NewRegisterView(auth AuthAPI, nav Navigator) *RegisterView {
	return &RegisterView{auth: auth, nav: nav}
}

// Submit registers the account and signs in with the same credentials.
func (v *RegisterView) Submit(ctx context.Context, email, password, fullName string) error {
	if err := v.begin(); err != nil {
		return err
	}
	if err := v.required("All fields are required", email, password, fullName); err != nil {
		return err
	}
	if _, err := v.auth.Register(ctx, model.RegisterCredentials{Email: email, Password: password, FullName: fullName}); err != nil {
		return v.finish(v.nav, err, "Registration failed")
	}
	u, err := v.auth.SignIn(ctx, model.LoginCredentials{Username: email, Password: password})
	if err != nil {
		v.fail("Registration successful but login failed")
		HandleError(v.nav, err)
		return err
	}
	v.succeed()
	v.user = u
	navigate(v.nav, RouteDocuments)
	return nil
}

// Render prints the outcome of the last submit.
func (v *RegisterView) Render(w io.Writer) {
	if !v.renderState(w, "Creating account...") {
		return
	}
	okColor.Fprintf(w, "Welcome, %s\n", v.user.FullName)
}

// WhoAmIView shows the signed-in account.
type WhoAmIView struct {
	state
	auth AuthAPI
	nav  Navigator
	user model.User
}

// NewWhoAmIView creates an account screen.
func NewWhoAmIView(auth AuthAPI, nav Navigator) *WhoAmIView {
	return &WhoAmIView{auth: auth, nav: nav}
}

// Load fetches the current account from the backend.
func (v *WhoAmIView) Load(ctx context.Context) error {
	if err := v.begin(); err != nil {
		return err
	}
	u, err := v.auth.CurrentUser(ctx)
	if err := v.finish(v.nav, err, "Not signed in"); err != nil {
		return err
	}
	v.user = u
	return nil
}

// Render prints the account.
func (v *WhoAmIView) Render(w io.Writer) {
	if !v.renderState(w, "Loading account...") {
		return
	}
	heading(w, "%s", v.user.Email)
	fprintf(w, "id:        %s\n", v.user.ID)
	fprintf(w, "name:      %s\n", v.user.FullName)
	fprintf(w, "active:    %t\n", v.user.IsActive)
	fprintf(w, "superuser: %t\n", v.user.IsSuperuser)
}
