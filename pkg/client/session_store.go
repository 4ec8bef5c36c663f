package client

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SessionStore persists the session identifier across process restarts so a
// conversation can be resumed.
type SessionStore interface {
	Load() (string, error)
	Save(id string) error
}

// FileSessionStore keeps the identifier in a single plain-text file.
type FileSessionStore struct {
	Path string
}

func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{Path: path}
}

func (s *FileSessionStore) Load() (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileSessionStore) Save(id string) error {
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.Path, []byte(id), 0o644)
}

// ResolveSessionID returns the stored identifier, or generates a fresh one
// when the store is empty or unreadable. Save failures are swallowed: the
// session then simply does not survive a restart.
func ResolveSessionID(store SessionStore) string {
	if store != nil {
		if id, err := store.Load(); err == nil && id != "" {
			return id
		}
	}
	id := uuid.NewString()
	if store != nil {
		_ = store.Save(id)
	}
	return id
}
