package repositories

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/wabdevconsult/batuta/domain"
)

// FileSessionRepository keeps the session record in a single JSON file
type FileSessionRepository struct {
	mu   sync.Mutex
	path string
}

// NewFileSessionRepository creates a persister writing to path
func NewFileSessionRepository(path string) domain.SessionPersister {
	return &FileSessionRepository{path: path}
}

// Load implements domain.SessionPersister
func (r *FileSessionRepository) Load(ctx context.Context) (*domain.PersistedSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return decodeSession(data)
}

// Save implements domain.SessionPersister. The file is replaced atomically.
func (r *FileSessionRepository) Save(ctx context.Context, session *domain.PersistedSession) error {
	data, err := encodeSession(session)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".session-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}

// Clear implements domain.SessionPersister
func (r *FileSessionRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
