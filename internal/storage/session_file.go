package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bjarke-xyz/apptrack/internal/domain"
)

// sessionFileName is the fixed key the token pair is stored under.
const sessionFileName = "session.json"

// FileSessionStore persists the session token pair as a single JSON file in
// the host's durable storage directory.
type FileSessionStore struct {
	baseDir string
}

// NewFileSessionStore creates a session store rooted at baseDir.
// If baseDir is empty, uses ~/.apptrack/
func NewFileSessionStore(baseDir string) (*FileSessionStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".apptrack")
	}

	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &FileSessionStore{baseDir: baseDir}, nil
}

// Save overwrites any previously stored session.
func (s *FileSessionStore) Save(session domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// Write to temp file first, then rename into place.
	sessionPath := s.sessionPath()
	tempPath := sessionPath + ".tmp"

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}

	if err := os.Rename(tempPath, sessionPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Load returns nil when no session is stored, or when the stored value is
// malformed or missing either token field.
func (s *FileSessionStore) Load() (*domain.Session, error) {
	data, err := os.ReadFile(s.sessionPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, nil
	}
	if !session.Valid() {
		return nil, nil
	}

	return &session, nil
}

// Clear removes the stored session. Clearing an empty store is not an error.
func (s *FileSessionStore) Clear() error {
	if err := os.Remove(s.sessionPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

func (s *FileSessionStore) sessionPath() string {
	return filepath.Join(s.baseDir, sessionFileName)
}
