package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"claimsportal/internal/errors"
)

const stateFileName = "session.json"

// FileStore implements ports.ClientStorage as one JSON object on local disk.
// The file is readable by the owner only since it holds the bearer token.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store rooted at dir, creating the directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.StorageError(fmt.Sprintf("failed to create state directory %s", dir), err)
	}
	return &FileStore{path: filepath.Join(dir, stateFileName)}, nil
}

// Path returns the backing file
func (fs *FileStore) Path() string {
	return fs.path
}

// Get reads a single key
func (fs *FileStore) Get(key string) (string, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	values, err := fs.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

// Set writes a single key
func (fs *FileStore) Set(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	values, err := fs.load()
	if err != nil {
		return err
	}
	values[key] = value
	return fs.save(values)
}

// Remove deletes the keys in one write
func (fs *FileStore) Remove(keys ...string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	values, err := fs.load()
	if err != nil {
		return err
	}
	changed := false
	for _, k := range keys {
		if _, ok := values[k]; ok {
			delete(values, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return fs.save(values)
}

func (fs *FileStore) load() (map[string]string, error) {
	raw, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, errors.StorageError(fmt.Sprintf("failed to read %s", fs.path), err)
	}
	values := map[string]string{}
	if len(raw) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(raw, &values); err != nil {
		// A corrupt state file is treated as empty; the next write replaces it.
		return map[string]string{}, nil
	}
	return values, nil
}

// save writes through a temp file and renames so readers never see a partial file
func (fs *FileStore) save(values map[string]string) error {
	content, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return errors.StorageError("failed to encode state", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fs.path), stateFileName+".*")
	if err != nil {
		return errors.StorageError("failed to create temp file", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.StorageError("failed to set permissions", err)
	}
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return errors.StorageError("failed to write state", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.StorageError("failed to close temp file", err)
	}
	if err := os.Rename(tmp.Name(), fs.path); err != nil {
		return errors.StorageError(fmt.Sprintf("failed to replace %s", fs.path), err)
	}
	return nil
}
