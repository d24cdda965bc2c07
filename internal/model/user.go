package model

// User is an account as returned by the auth endpoints.
type User struct {
	ID          ID     `json:"id"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
}

// LoginCredentials are posted form-encoded to the token endpoint. Username
// carries the account e-mail.
type LoginCredentials struct {
	Username string
	Password string
}

// RegisterCredentials create a new account.
type RegisterCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// Token is the token endpoint response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
