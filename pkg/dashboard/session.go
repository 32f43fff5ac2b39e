package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// CredentialStore persists the session token between runs. Load returns an
// empty string when no credential is stored.
type CredentialStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// MemoryCredentialStore keeps the credential in process memory only.
type MemoryCredentialStore struct {
	mu    sync.Mutex
	token string
}

// Load implements CredentialStore.
func (s *MemoryCredentialStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

// Save implements CredentialStore.
func (s *MemoryCredentialStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Clear implements CredentialStore.
func (s *MemoryCredentialStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// FileCredentialStore persists the credential as a small JSON file, mode 0600.
type FileCredentialStore struct {
	Path string
}

type credentialFile struct {
	Token string `json:"token"`
}

// Load implements CredentialStore.
func (s *FileCredentialStore) Load() (string, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	var f credentialFile
	if err := json.Unmarshal(data, &f); err != nil {
		return "", err
	}
	return f.Token, nil
}

// Save implements CredentialStore.
func (s *FileCredentialStore) Save(token string) error {
	data, err := json.Marshal(credentialFile{Token: token})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.Path, data, 0o600)
}

// Clear implements CredentialStore.
func (s *FileCredentialStore) Clear() error {
	err := os.Remove(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// AuthSession binds a Client to a CredentialStore. It is the Client's
// TokenSource, so every request picks up whatever credential the session
// currently holds. A 401 on Verify force-clears the stored credential so the
// next run starts logged out instead of retrying a dead token.
type AuthSession struct {
	client *Client
	store  CredentialStore

	mu    sync.RWMutex
	token string
	user  *User
}

// NewAuthSession creates a session backed by store and builds the Client on
// top of it. The returned session is the client's token source.
func NewAuthSession(baseURL string, store CredentialStore, opts ...ClientOption) (*AuthSession, error) {
	if store == nil {
		store = &MemoryCredentialStore{}
	}
	s := &AuthSession{store: store}

	token, err := store.Load()
	if err != nil {
		return nil, err
	}
	s.token = token

	client, err := NewClient(baseURL, s, opts...)
	if err != nil {
		return nil, err
	}
	s.client = client
	return s, nil
}

// Token implements TokenSource.
func (s *AuthSession) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Client returns the underlying REST client.
func (s *AuthSession) Client() *Client { return s.client }

// User returns the account verified or logged in last, nil when unknown.
func (s *AuthSession) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// LoggedIn reports whether the session holds a credential. It says nothing
// about whether the server still accepts it; Verify does.
func (s *AuthSession) LoggedIn() bool {
	return s.Token() != ""
}

func (s *AuthSession) adopt(token string, user *User) error {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	return s.store.Save(token)
}

// Login authenticates and persists the new credential.
func (s *AuthSession) Login(ctx context.Context, email, password string) (*User, error) {
	token, user, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.adopt(token, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Register creates an account and persists the returned credential.
func (s *AuthSession) Register(ctx context.Context, name, email, phone, password string) (*User, error) {
	token, user, err := s.client.Register(ctx, name, email, phone, password)
	if err != nil {
		return nil, err
	}
	if err := s.adopt(token, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Verify checks the stored credential against the server. On 401 the
// credential is cleared before ErrUnauthorized is returned.
func (s *AuthSession) Verify(ctx context.Context) (*User, error) {
	user, err := s.client.Verify(ctx)
	if errors.Is(err, ErrUnauthorized) {
		_ = s.Logout()
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return user, nil
}

// Logout drops the credential locally. There is no server-side session to
// invalidate; the token simply expires.
func (s *AuthSession) Logout() error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	return s.store.Clear()
}
