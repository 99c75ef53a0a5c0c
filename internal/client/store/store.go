// Package store provides the client's durable key-value state file.
// The session manager keeps the auth token, the serialized user record
// and the device id here so they survive process restarts.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Well-known keys used by the session manager and the device helper.
const (
	KeyToken    = "auth_token"
	KeyUser     = "auth_user"
	KeyDeviceID = "device_id"
)

// FileStore is a file-backed string key-value store. All mutations are
// written through to disk immediately.
type FileStore struct {
	path   string
	mu     sync.Mutex
	values map[string]string
}

// Open loads the store file at path, creating an empty store if the
// file does not exist yet. Parent directories are created as needed.
func Open(path string) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		values: make(map[string]string),
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
				return nil, fmt.Errorf("create state dir: %w", err)
			}
			return s, nil
		}
		return nil, fmt.Errorf("open state file: %w", err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&s.values); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}
	return s, nil
}

// Get returns the value for key and whether it was present.
func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores the value for key and writes the file.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.save()
}

// Delete removes key and writes the file. Deleting an absent key is
// not an error.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.save()
}

// save writes the store to disk. Caller must hold the mutex.
func (s *FileStore) save() error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(s.values)
}
