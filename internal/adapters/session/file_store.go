package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"pricetrail/internal/domain/shared"

	"github.com/rs/zerolog"
)

// FileStore persists the session blob as a single file, mirroring the
// one-key persisted state of the client: read at startup, overwritten on
// every auth transition, removed on sign-out.
type FileStore struct {
	path   string
	logger zerolog.Logger
}

type FileStoreParams struct {
	Path   string
	Logger zerolog.Logger
}

// NewFileStore creates a file-backed session store
func NewFileStore(params FileStoreParams) *FileStore {
	return &FileStore{
		path:   params.Path,
		logger: params.Logger.With().Str("component", "session_file_store").Logger(),
	}
}

// Load returns the persisted blob, or ok=false when no session file exists
func (s *FileStore) Load(_ context.Context) ([]byte, bool, error) {
	blob, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: %v", shared.ErrSessionStorage, err)
	}
	if len(blob) == 0 {
		return nil, false, nil
	}
	return blob, true, nil
}

// Save persists the blob, creating parent directories as needed
func (s *FileStore) Save(_ context.Context, blob []byte) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrSessionStorage, err)
		}
	}

	if err := os.WriteFile(s.path, blob, 0o600); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrSessionStorage, err)
	}

	s.logger.Debug().Str("path", s.path).Msg("Session persisted")
	return nil
}

// Clear removes the session file; a missing file is not an error
func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", shared.ErrSessionStorage, err)
	}

	s.logger.Debug().Str("path", s.path).Msg("Session cleared")
	return nil
}
