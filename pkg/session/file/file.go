// Package file provides file-based session storage for single-host
// deployments and local development.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/auditflow/auditflow/pkg/session"
)

const sessionFileName = "session.json"

// Store keeps the whole session in one JSON file. Every mutation rewrites
// the file so a reload immediately after a write observes consistent data.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a file store rooted at the given directory. Accepts a
// file:// URL or a plain path.
func NewStore(root string) *Store {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Store{path: filepath.Join(cleanRoot, sessionFileName)}
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", err
	}

	value, ok := values[key]
	if !ok {
		return "", session.ErrKeyNotFound
	}

	return value, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}

	values[key] = value

	return s.write(values)
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}

	delete(values, key)

	return s.write(values)
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}

	return nil
}

func (s *Store) HealthCheck(_ context.Context) error {
	dir := filepath.Dir(s.path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (s *Store) Close(_ context.Context) error {
	return nil
}

func (s *Store) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}

		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	values := make(map[string]string)

	err = json.Unmarshal(data, &values)
	if err != nil {
		return nil, fmt.Errorf("failed to decode session file: %w", err)
	}

	return values, nil
}

func (s *Store) write(values map[string]string) error {
	err := os.MkdirAll(filepath.Dir(s.path), 0o755)
	if err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	err = os.WriteFile(s.path, data, 0o644)
	if err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}
