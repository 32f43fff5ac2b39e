package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, store CredentialStore, handler http.Handler) *AuthSession {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	session, err := NewAuthSession(srv.URL, store, WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return session
}

func TestAuthSessionLoginPersists(t *testing.T) {
	store := &MemoryCredentialStore{}
	session := newTestSession(t, store, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"token":   "jwt-abc",
			"user":    map[string]interface{}{"id": "u1", "email": "alice@example.com"},
		})
	}))

	user, err := session.Login(context.Background(), "alice@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.True(t, session.LoggedIn())

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "jwt-abc", saved)
}

func TestAuthSessionVerifyClearsDeadCredential(t *testing.T) {
	store := &MemoryCredentialStore{}
	require.NoError(t, store.Save("stale-jwt"))

	session := newTestSession(t, store, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer stale-jwt", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "Authentication required. Please login again.",
		})
	}))
	require.True(t, session.LoggedIn())

	_, err := session.Verify(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)

	// credential is gone from both the session and the store
	assert.False(t, session.LoggedIn())
	saved, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestAuthSessionVerifyCachesUser(t *testing.T) {
	store := &MemoryCredentialStore{}
	require.NoError(t, store.Save("jwt-abc"))

	session := newTestSession(t, store, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"user":    map[string]interface{}{"id": "u1", "is_admin": true},
		})
	}))

	user, err := session.Verify(context.Background())
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
	assert.Equal(t, user, session.User())
}

func TestAuthSessionLogout(t *testing.T) {
	store := &MemoryCredentialStore{}
	require.NoError(t, store.Save("jwt-abc"))

	session := newTestSession(t, store, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	require.NoError(t, session.Logout())

	assert.False(t, session.LoggedIn())
	assert.Nil(t, session.User())
	saved, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestFileCredentialStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds", "session.json")
	store := &FileCredentialStore{Path: path}

	// missing file reads as logged out
	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Save("jwt-abc"))
	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "jwt-abc", token)

	require.NoError(t, store.Clear())
	token, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	// clearing twice is fine
	require.NoError(t, store.Clear())
}
