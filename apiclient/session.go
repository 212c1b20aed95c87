package apiclient

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

// Profile is the minimal user identity kept next to the credential.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Session is the credential plus profile established on login and cleared on logout or expiry.
// The JSON keys are fixed so the persisted form stays stable across versions.
type Session struct {
	Token   string  `json:"token"`
	Profile Profile `json:"user"`
}

// SessionStore persists the current session.
// Load returns ErrNoSession when nothing is stored.
// Clear reports whether a session was present before clearing.
type SessionStore interface {
	Load() (Session, error)
	Save(session Session) error
	Clear() (bool, error)
}

// MemorySessionStore keeps the session in process memory.
type MemorySessionStore struct {
	mu      sync.Mutex
	session *Session
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

// Load returns the stored session.
func (s *MemorySessionStore) Load() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return Session{}, ErrNoSession
	}

	return *s.session, nil
}

// Save replaces the stored session.
func (s *MemorySessionStore) Save(session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = &session

	return nil
}

// Clear drops the stored session.
func (s *MemorySessionStore) Clear() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hadSession := s.session != nil
	s.session = nil

	return hadSession, nil
}

// FileSessionStore persists the session as a JSON document with the keys "token" and "user".
type FileSessionStore struct {
	mu   sync.Mutex
	path string
}

// NewFileSessionStore creates a session store backed by the file at path.
// The file is created on the first Save.
func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

// Load reads the session file.
func (s *FileSessionStore) Load() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session file: %w", err)
	}

	var session Session
	if err := jsonAPI.Unmarshal(raw, &session); err != nil {
		return Session{}, fmt.Errorf("decode session file: %w", err)
	}

	if session.Token == "" {
		return Session{}, ErrNoSession
	}

	return session, nil
}

// Save writes the session file with owner-only permissions.
func (s *FileSessionStore) Save(session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := jsonAPI.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}

	return nil
}

// Clear removes the session file.
func (s *FileSessionStore) Clear() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("remove session file: %w", err)
	}

	return true, nil
}

type profileClaims struct {
	jwt.RegisteredClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// ProfileFromToken reads the profile claims (sub, name, email, role) of a bearer token.
// The signature is not verified.
func ProfileFromToken(token string) (Profile, error) {
	claims := &profileClaims{}

	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Profile{}, errors.Join(ErrMalformedToken, err)
	}

	if claims.Subject == "" {
		return Profile{}, errors.Join(ErrMalformedToken, errors.New("token has no subject"))
	}

	return Profile{
		ID:    claims.Subject,
		Name:  claims.Name,
		Email: claims.Email,
		Role:  claims.Role,
	}, nil
}
