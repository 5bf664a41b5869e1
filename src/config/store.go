package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
)

// AccessError reports a failed read or write of the settings file.
type AccessError struct {
	Op   string
	Path string
	Err  error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("config %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *AccessError) Unwrap() error { return e.Err }

// Store is the named-setting store. Values are strings persisted in .env format.
// It is not safe for concurrent use; the event loop owns it.
type Store struct {
	path string
	data map[string]string
}

func NewStore(path string) *Store {
	return &Store{path: path, data: map[string]string{}}
}

func (s *Store) Path() string { return s.path }

// Load replaces the in-memory values with the file contents.
// A missing file is an empty store, not an error.
func (s *Store) Load() error {
	values, err := godotenv.Read(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.data = map[string]string{}
			return nil
		}
		return &AccessError{Op: "load", Path: s.path, Err: err}
	}
	s.data = values
	return nil
}

// Save writes every value back to the file, creating its directory if needed.
func (s *Store) Save() error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &AccessError{Op: "save", Path: s.path, Err: err}
		}
	}
	if err := godotenv.Write(s.data, s.path); err != nil {
		return &AccessError{Op: "save", Path: s.path, Err: err}
	}
	return nil
}

func (s *Store) Get(key string) (string, bool) {
	v, ok := s.data[key]
	return v, ok
}

func (s *Store) Set(key, value string) {
	s.data[key] = value
}

// SetDefault stores value only when key is absent. It reports whether it wrote.
func (s *Store) SetDefault(key, value string) bool {
	if _, ok := s.data[key]; ok {
		return false
	}
	s.data[key] = value
	return true
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
