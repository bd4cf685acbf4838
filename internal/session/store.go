package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spec-kit/dealroom-client/internal/domain"
)

// Storage keys, matching the layout every deal room client shares: the raw
// bearer string under "token" and the serialized session under "user".
const (
	tokenKey = "token"
	userKey  = "user"
)

// Store is the durable client-side session storage, one file per key under
// a state directory. It is the local analog of the browser's localStorage.
// Stored values are plaintext; credential encryption is explicitly not a
// goal of this client.
type Store struct {
	dir string
}

// NewStore opens (creating if needed) the state directory.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save persists both entries. Called immediately when a session is created.
func (s *Store) Save(sess *domain.Session) error {
	if err := os.WriteFile(s.path(tokenKey), []byte(sess.Token), 0o600); err != nil {
		return fmt.Errorf("write token entry: %w", err)
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(s.path(userKey), raw, 0o600); err != nil {
		return fmt.Errorf("write user entry: %w", err)
	}
	return nil
}

// Load reads both entries together. A missing or corrupt entry means
// "no session", never an error.
func (s *Store) Load() (*domain.Session, bool) {
	token, err := os.ReadFile(s.path(tokenKey))
	if err != nil {
		return nil, false
	}
	raw, err := os.ReadFile(s.path(userKey))
	if err != nil {
		return nil, false
	}

	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, false
	}
	// The token entry is authoritative for the bearer string.
	sess.Token = strings.TrimSpace(string(token))
	if sess.Subject == "" || sess.Token == "" || !sess.Role.Valid() {
		return nil, false
	}
	return &sess, true
}

// Clear removes both entries, even if only one is present.
func (s *Store) Clear() error {
	var firstErr error
	for _, key := range []string{tokenKey, userKey} {
		if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = fmt.Errorf("remove %s entry: %w", key, err)
		}
	}
	return firstErr
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key)
}
