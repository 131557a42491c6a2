package aware

import (
	"sync"
	"time"
)

// expiryBuffer is subtracted from the backend-reported token lifetime so a
// refresh happens proactively, before the token is truly dead on the wire.
const expiryBuffer = 60 * time.Second

// TokenBackend is the durable tier of the token store. Only the refresh token
// and the user ID are ever written through it; access tokens live strictly in
// memory to keep their exposure window small.
type TokenBackend interface {
	// WriteSession persists the refresh token and user ID, replacing any
	// previously persisted pair.
	WriteSession(refreshToken, userID string) error
	// ReadSession returns the persisted refresh token and user ID, or empty
	// strings if nothing is persisted.
	ReadSession() (refreshToken string, userID string, err error)
	// DeleteSession erases any persisted pair. Deleting a pair that does not
	// exist is not an error.
	DeleteSession() error
}

// memoryBackend is a TokenBackend that persists nothing beyond process
// lifetime. It is the default when no durable backend is supplied.
type memoryBackend struct {
	mu           sync.Mutex
	refreshToken string
	userID       string
}

// NewMemoryBackend returns a process-local TokenBackend. Sessions stored in
// it do not survive a restart.
func NewMemoryBackend() TokenBackend {
	return &memoryBackend{}
}

func (m *memoryBackend) WriteSession(refreshToken, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshToken = refreshToken
	m.userID = userID
	return nil
}

func (m *memoryBackend) ReadSession() (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshToken, m.userID, nil
}

func (m *memoryBackend) DeleteSession() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshToken = ""
	m.userID = ""
	return nil
}

// TokenStore is the single source of truth for the current session. The
// access token and its expiry are held only in memory; the refresh token and
// user ID are written through to the backend so a session can be re-established
// after a restart.
type TokenStore struct {
	mu           sync.Mutex
	backend      TokenBackend
	accessToken  string
	refreshToken string
	userID       string
	expiresAt    time.Time
	now          func() time.Time
}

// NewTokenStore returns a TokenStore backed by the given TokenBackend. A nil
// backend gets an in-memory one.
func NewTokenStore(backend TokenBackend) *TokenStore {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	return &TokenStore{
		backend: backend,
		now:     time.Now,
	}
}

// SetTokens replaces the entire session record atomically. The expiry is
// computed from expiresIn (seconds) minus the safety buffer. Any prior session
// is silently overwritten. The backend write is best-effort: if it fails, the
// refresh token still lives in memory for the remainder of the process.
func (t *TokenStore) SetTokens(
	accessToken string,
	refreshToken string,
	expiresIn int,
	userID string,
) {
	t.mu.Lock()
	t.accessToken = accessToken
	t.refreshToken = refreshToken
	t.userID = userID
	t.expiresAt =
		t.now().Add(time.Duration(expiresIn)*time.Second - expiryBuffer)
	t.mu.Unlock()
	t.backend.WriteSession(refreshToken, userID) // nolint: errcheck
}

// AccessToken returns the in-memory access token, or "" if no live session is
// held. It never consults the backend; access tokens are deliberately not
// durable.
func (t *TokenStore) AccessToken() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.accessToken
}

// RefreshToken returns the persisted refresh token, falling back to the
// in-memory copy if the backend holds nothing.
func (t *TokenStore) RefreshToken() string {
	if refreshToken, _, err := t.backend.ReadSession(); err == nil &&
		refreshToken != "" {
		return refreshToken
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.refreshToken
}

// HasRefreshToken returns true if a refresh token is available from either
// tier.
func (t *TokenStore) HasRefreshToken() bool {
	return t.RefreshToken() != ""
}

// UserID returns the persisted user ID, falling back to the in-memory copy if
// the backend holds nothing.
func (t *TokenStore) UserID() string {
	if _, userID, err := t.backend.ReadSession(); err == nil && userID != "" {
		return userID
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.userID
}

// AccessTokenExpired returns true if no access token is held or its buffered
// expiry has passed.
func (t *TokenStore) AccessTokenExpired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.accessToken == "" {
		return true
	}
	return !t.now().Before(t.expiresAt)
}

// ClearTokens wipes both the memory and durable tiers. It is idempotent.
func (t *TokenStore) ClearTokens() {
	t.mu.Lock()
	t.accessToken = ""
	t.refreshToken = ""
	t.userID = ""
	t.expiresAt = time.Time{}
	t.mu.Unlock()
	t.backend.DeleteSession() // nolint: errcheck
}
