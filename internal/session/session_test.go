package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo/chatweb/internal/api"
	"github.com/diogo/chatweb/internal/config"
	apierrors "github.com/diogo/chatweb/internal/errors"
	"github.com/diogo/chatweb/internal/models"
)

type fakeMic struct{ released int }

func (f *fakeMic) Release() { f.released++ }

// stuckStore refuses to forget anything
type stuckStore struct {
	IdentityStore
	err error
}

func (s stuckStore) Remove(string) error { return s.err }

func newTestManager(t *testing.T, backend *api.MockClient, opts ...Option) (*Manager, *config.LocalStorage) {
	t.Helper()
	store := config.NewLocalStorage(filepath.Join(t.TempDir(), "storage.json"))
	return NewManager(backend, store, opts...), store
}

func TestResolveIdentity(t *testing.T) {
	mgr, store := newTestManager(t, &api.MockClient{})

	_, ok := mgr.ResolveIdentity()
	assert.False(t, ok)

	require.NoError(t, store.Set(models.IdentityKey, "17"))
	id, ok := mgr.ResolveIdentity()
	assert.True(t, ok)
	assert.Equal(t, models.UserID(17), id)

	require.NoError(t, store.Set(models.IdentityKey, "not-a-number"))
	_, ok = mgr.ResolveIdentity()
	assert.False(t, ok)
}

func TestLogin_Validation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "pw"},
		{"blank email", "   ", "pw"},
		{"empty password", "a@b.c", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &api.MockClient{LoginID: 1}
			mgr, _ := newTestManager(t, backend)

			_, err := mgr.Login(context.Background(), tt.email, tt.password)
			require.Error(t, err)
			assert.ErrorIs(t, err, apierrors.ErrValidation)
			assert.Equal(t, "Please fill in all fields", apierrors.UserMessage(err))
			assert.Zero(t, backend.LoginCalls, "validation must not reach the backend")
		})
	}
}

func TestLogin_Success(t *testing.T) {
	backend := &api.MockClient{LoginID: 42}
	mgr, store := newTestManager(t, backend)

	id, err := mgr.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, models.UserID(42), id)

	raw, ok, err := store.Get(models.IdentityKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "42", raw)

	current, authed := mgr.Identity()
	assert.True(t, authed)
	assert.Equal(t, models.UserID(42), current)
}

func TestLogin_FailureLeavesStorageUntouched(t *testing.T) {
	backend := &api.MockClient{LoginErr: apierrors.NewAuthError("Incorrect email or password")}
	mgr, store := newTestManager(t, backend)
	require.NoError(t, store.Set(models.IdentityKey, "5"))

	_, err := mgr.Login(context.Background(), "a@b.c", "bad")
	require.Error(t, err)
	assert.Equal(t, "Incorrect email or password", apierrors.UserMessage(err))

	raw, _, _ := store.Get(models.IdentityKey)
	assert.Equal(t, "5", raw)
}

func TestRegister(t *testing.T) {
	t.Run("name required", func(t *testing.T) {
		backend := &api.MockClient{}
		mgr, _ := newTestManager(t, backend)

		_, err := mgr.Register(context.Background(), " ", "a@b.c", "pw")
		assert.Equal(t, "Please enter your name", apierrors.UserMessage(err))
		assert.Zero(t, backend.RegisterCalls)
	})

	t.Run("fields required before name", func(t *testing.T) {
		mgr, _ := newTestManager(t, &api.MockClient{})

		_, err := mgr.Register(context.Background(), "", "", "")
		assert.Equal(t, "Please fill in all fields", apierrors.UserMessage(err))
	})

	t.Run("success", func(t *testing.T) {
		backend := &api.MockClient{RegisterID: 9}
		mgr, store := newTestManager(t, backend)

		id, err := mgr.Register(context.Background(), "Ana", "a@b.c", "pw")
		require.NoError(t, err)
		assert.Equal(t, models.UserID(9), id)

		raw, _, _ := store.Get(models.IdentityKey)
		assert.Equal(t, "9", raw)
	})

	t.Run("duplicate account", func(t *testing.T) {
		backend := &api.MockClient{RegisterErr: errors.New("Email already registered")}
		mgr, store := newTestManager(t, backend)

		_, err := mgr.Register(context.Background(), "Ana", "a@b.c", "pw")
		require.Error(t, err)
		_, ok, _ := store.Get(models.IdentityKey)
		assert.False(t, ok)
	})
}

func TestLogout(t *testing.T) {
	mic := &fakeMic{}
	mgr, _ := newTestManager(t, &api.MockClient{LoginID: 3}, WithMicrophone(mic))

	_, err := mgr.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	mgr.ToggleMode()

	require.NoError(t, mgr.Logout())
	assert.Equal(t, 1, mic.released)
	assert.Equal(t, ModeLogin, mgr.Mode())

	_, ok := mgr.Identity()
	assert.False(t, ok)

	_, ok = mgr.ResolveIdentity()
	assert.False(t, ok, "identity must not survive logout")
}

func TestLogout_StoreFailureKeepsIdentity(t *testing.T) {
	mic := &fakeMic{}
	store := config.NewLocalStorage(filepath.Join(t.TempDir(), "storage.json"))
	mgr := NewManager(&api.MockClient{LoginID: 3}, stuckStore{IdentityStore: store, err: errors.New("read-only")}, WithMicrophone(mic))

	_, err := mgr.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)

	require.EqualError(t, mgr.Logout(), "read-only")
	assert.Zero(t, mic.released)

	id, ok := mgr.Identity()
	assert.True(t, ok, "memory agrees with what is stored")
	assert.Equal(t, models.UserID(3), id)

	id, ok = mgr.ResolveIdentity()
	assert.True(t, ok)
	assert.Equal(t, models.UserID(3), id)
}

func TestToggleMode(t *testing.T) {
	mgr, _ := newTestManager(t, &api.MockClient{})

	assert.Equal(t, ModeLogin, mgr.Mode())
	assert.Equal(t, ModeRegister, mgr.ToggleMode())
	assert.Equal(t, "register", mgr.Mode().String())
	assert.Equal(t, ModeLogin, mgr.ToggleMode())
}
