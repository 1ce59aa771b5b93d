// Package prompt loads role behavioral contracts and assembles the final
// instruction payload handed to an agent.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store is a path-addressable text store for role contracts. The kernel's
// only expectation is that Load returns UTF-8 text or fails.
type Store interface {
	Load(path string) (string, error)
}

// FileStore reads contracts from files under a root directory.
type FileStore struct {
	root string
}

// NewFileStore returns a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir}
}

// Load reads the contract at path relative to the store root.
func (s *FileStore) Load(path string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.root, path))
	if err != nil {
		return "", fmt.Errorf("load contract %q: %w", path, err)
	}
	return string(data), nil
}

// MapStore serves contracts from memory. Intended for tests.
type MapStore map[string]string

// Load implements Store.
func (s MapStore) Load(path string) (string, error) {
	text, ok := s[path]
	if !ok {
		return "", fmt.Errorf("load contract %q: not found", path)
	}
	return text, nil
}
