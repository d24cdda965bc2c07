package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"nibblify/internal/model"
	"nibblify/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInactiveUser       = errors.New("inactive user")
	ErrEmailTaken         = errors.New("a user with this email already exists")
	ErrInvalidToken       = errors.New("could not validate credentials")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordRequired   = errors.New("password is required")
)

// DefaultTokenTTL is the access token lifetime (eight days).
const DefaultTokenTTL = 8 * 24 * time.Hour

// AuthConfig configures token issuing and password hashing.
type AuthConfig struct {
	Secret     []byte
	TokenTTL   time.Duration
	BcryptCost int
}

// AuthService registers accounts, issues bearer tokens and resolves them back
// to users.
type AuthService interface {
	Register(ctx context.Context, in model.RegisterCredentials) (*model.User, error)
	// Login checks the password and returns a signed bearer token.
	Login(ctx context.Context, email, password string) (*model.Token, error)
	// Authenticate resolves a bearer token to an active user.
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	users repository.UserRepository
	cfg   AuthConfig
	now   func() time.Time
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users repository.UserRepository, cfg AuthConfig) (AuthService, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("auth: secret is required")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &authService{users: users, cfg: cfg, now: time.Now}, nil
}

func (s *authService) Register(ctx context.Context, in model.RegisterCredentials) (*model.User, error) {
	email := strings.TrimSpace(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if in.Password == "" {
		return nil, ErrPasswordRequired
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	rec, err := s.users.Create(ctx, &repository.UserRecord{
		User: model.User{
			Email:    email,
			FullName: strings.TrimSpace(in.FullName),
			IsActive: true,
		},
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &rec.User, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.Token, error) {
	rec, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !rec.IsActive {
		return nil, ErrInactiveUser
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   rec.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &model.Token{AccessToken: signed, TokenType: "bearer"}, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.cfg.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	rec, err := s.users.FindByID(ctx, model.ID(claims.Subject))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !rec.IsActive {
		return nil, ErrInactiveUser
	}
	return &rec.User, nil
}
