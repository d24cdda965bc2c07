// Package session holds the client-side authentication state: the bearer
// token and the user it belongs to.
package session

import "nibblify/internal/model"

// State is an immutable snapshot of the session.
type State struct {
	Token string
	User  *model.User
}

// Authenticated reports whether a token is held.
func (s State) Authenticated() bool {
	return s.Token != ""
}

// Login returns the state after a successful sign-in.
func Login(_ State, token string, user model.User) State {
	u := user
	return State{Token: token, User: &u}
}

// Logout returns the signed-out state. It is idempotent.
func Logout(State) State {
	return State{}
}
