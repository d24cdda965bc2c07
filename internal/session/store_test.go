package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nibblify/internal/model"
	"nibblify/internal/storage"
	storeMocks "nibblify/internal/storage/mocks"
)

var alice = model.User{ID: "1", Email: "alice@example.com", FullName: "Alice", IsActive: true}

func TestPureTransitions(t *testing.T) {
	s := Login(State{}, "tok", alice)
	assert.True(t, s.Authenticated())
	assert.Equal(t, "alice@example.com", s.User.Email)

	out := Logout(s)
	assert.False(t, out.Authenticated())
	assert.Nil(t, out.User)
	assert.Equal(t, out, Logout(out))

	// the input snapshot is untouched
	assert.True(t, s.Authenticated())
}

func TestStore_LoginLogout(t *testing.T) {
	kv := storage.NewMemory()
	s := NewStore(kv, zap.NewNop())
	assert.False(t, s.IsAuthenticated())

	require.NoError(t, s.Login("tok", alice))
	assert.True(t, s.IsAuthenticated(), "visible immediately after Login")
	assert.Equal(t, "tok", s.Token())
	u, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, alice, u)

	tok, err := kv.Get(TokenKey)
	require.NoError(t, err)
	assert.Equal(t, "tok", string(tok))

	require.NoError(t, s.Logout())
	assert.False(t, s.IsAuthenticated())
	require.NoError(t, s.Logout(), "logout is idempotent")
	assert.Equal(t, 0, kv.Len())
}

func TestStore_SurvivesRestart(t *testing.T) {
	kv, err := storage.NewFile(t.TempDir())
	require.NoError(t, err)

	first := NewStore(kv, nil)
	require.NoError(t, first.Login("tok", alice))

	second := NewStore(kv, nil)
	assert.True(t, second.IsAuthenticated())
	assert.Equal(t, "tok", second.Token())

	require.NoError(t, second.Logout())
	third := NewStore(kv, nil)
	assert.False(t, third.IsAuthenticated())
}

func TestStore_HydrationResolvesPartialStateToSignedOut(t *testing.T) {
	tests := []struct {
		name string
		seed map[string]string
	}{
		{name: "token without user", seed: map[string]string{TokenKey: "tok"}},
		{name: "user without token", seed: map[string]string{UserKey: `{"id":1,"email":"a@b.c"}`}},
		{name: "unreadable user", seed: map[string]string{TokenKey: "tok", UserKey: `{not json`}},
		{name: "empty token", seed: map[string]string{TokenKey: "", UserKey: `{"id":1}`}},
		{name: "null user", seed: map[string]string{TokenKey: "tok", UserKey: `null`}},
		{name: "user without id or email", seed: map[string]string{TokenKey: "tok", UserKey: `{"full_name":"Ann"}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := storage.NewMemory()
			for k, v := range tt.seed {
				require.NoError(t, kv.Put(k, []byte(v)))
			}

			s := NewStore(kv, nil)
			assert.False(t, s.IsAuthenticated())
			_, ok := s.User()
			assert.False(t, ok)
			assert.Equal(t, 0, kv.Len(), "leftover keys are removed")
		})
	}
}

func TestStore_LoginPersistFailureKeepsPreviousState(t *testing.T) {
	kv := new(storeMocks.MockStorage)
	kv.On("Get", mock.Anything).Return(nil, storage.ErrNotFound)
	kv.On("Put", UserKey, mock.Anything).Return(nil)
	kv.On("Put", TokenKey, mock.Anything).Return(errors.New("disk full"))
	kv.On("Delete", mock.Anything).Return(nil)

	s := NewStore(kv, nil)
	err := s.Login("tok", alice)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.False(t, s.IsAuthenticated())
	kv.AssertCalled(t, "Delete", UserKey)
}

func TestStore_RejectsEmptyToken(t *testing.T) {
	s := NewStore(storage.NewMemory(), nil)
	assert.Error(t, s.Login("", alice))
	assert.False(t, s.IsAuthenticated())
}
