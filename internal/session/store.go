package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"nibblify/internal/model"
	"nibblify/internal/storage"
)

// Keys under which the session is persisted.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// Store owns the session and keeps it in durable storage so it survives
// restarts. All methods are safe for concurrent use; reads always observe
// the latest completed Login or Logout.
type Store struct {
	mu    sync.RWMutex
	state State
	kv    storage.Storage
	log   *zap.Logger
}

// NewStore hydrates a Store from kv. Both the token and the user must load;
// a half-present session resolves to signed-out and the leftover key is
// removed.
func NewStore(kv storage.Storage, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{kv: kv, log: log}
	s.state = s.hydrate()
	return s
}

func (s *Store) hydrate() State {
	token, tokErr := s.kv.Get(TokenKey)
	rawUser, userErr := s.kv.Get(UserKey)

	if tokErr != nil || userErr != nil || len(token) == 0 {
		if !(errors.Is(tokErr, storage.ErrNotFound) && errors.Is(userErr, storage.ErrNotFound)) {
			s.log.Warn("discarding partial session",
				zap.Bool("token_loaded", tokErr == nil && len(token) > 0),
				zap.Bool("user_loaded", userErr == nil),
			)
			s.clear()
		}
		return State{}
	}

	var user model.User
	if err := json.Unmarshal(rawUser, &user); err != nil {
		s.log.Warn("discarding session with unreadable user", zap.Error(err))
		s.clear()
		return State{}
	}
	if user.ID == "" && user.Email == "" {
		s.log.Warn("discarding session with empty user")
		s.clear()
		return State{}
	}
	return Login(State{}, string(token), user)
}

// clear removes both keys, logging (not returning) failures.
func (s *Store) clear() {
	for _, key := range []string{TokenKey, UserKey} {
		if err := s.kv.Delete(key); err != nil {
			s.log.Warn("failed to remove session key", zap.String("key", key), zap.Error(err))
		}
	}
}

// Login persists token and user and makes them current. When persisting
// fails the previous state is kept and nothing is left half-written.
func (s *Store) Login(token string, user model.User) error {
	if token == "" {
		return fmt.Errorf("session token is required")
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Put(UserKey, raw); err != nil {
		return fmt.Errorf("persist session user: %w", err)
	}
	if err := s.kv.Put(TokenKey, []byte(token)); err != nil {
		s.restore()
		return fmt.Errorf("persist session token: %w", err)
	}
	s.state = Login(s.state, token, user)
	s.log.Debug("session started", zap.String("user", user.Email))
	return nil
}

// restore rewrites the persisted keys from the in-memory state after a
// failed Login. Callers hold s.mu.
func (s *Store) restore() {
	if !s.state.Authenticated() {
		s.clear()
		return
	}
	raw, err := json.Marshal(s.state.User)
	if err == nil {
		err = s.kv.Put(UserKey, raw)
	}
	if err != nil {
		s.log.Warn("failed to restore previous session", zap.Error(err))
	}
}

// Logout forgets the session. Calling it while signed out is a no-op.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, key := range []string{TokenKey, UserKey} {
		if err := s.kv.Delete(key); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", key, err))
		}
	}
	if s.state.Authenticated() {
		s.log.Debug("session ended")
	}
	s.state = Logout(s.state)
	return errors.Join(errs...)
}

// IsAuthenticated reports whether a token is currently held.
func (s *Store) IsAuthenticated() bool {
	return s.State().Authenticated()
}

// Token returns the current bearer token, or "" when signed out.
func (s *Store) Token() string {
	return s.State().Token
}

// User returns the signed-in user.
func (s *Store) User() (model.User, bool) {
	st := s.State()
	if st.User == nil {
		return model.User{}, false
	}
	return *st.User, true
}

// State returns a snapshot of the session.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
