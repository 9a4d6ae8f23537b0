// Package settings persists user-facing options in a flat JSON key-value
// file. The orchestrator never reads it directly; callers assemble a
// models.PipelineConfig from it per invocation.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Keys of the settings file.
const (
	KeyWorkDirectory     = "work_directory"
	KeyArbiterNaming     = "arbitter_name"
	KeyMergeObligations  = "merge_obligations"
	KeyInsertSignature   = "insert_signature"
	KeySaveBaseStatement = "save_base_statement"
	KeyResaveRCI         = "resave_rci"
	KeyShowResaveButton  = "show_btn_resave"
)

// Store reads and writes one settings file. A missing file behaves as an
// empty store; the file is created on the first Set.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) load() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	values := map[string]any{}
	if err := json.Unmarshal(data, &values); err != nil {
		// A corrupt settings file means lost preferences, not a dead
		// application. Start over.
		return map[string]any{}, nil
	}
	return values, nil
}

func (s *Store) save(values map[string]any) error {
	data, err := json.MarshalIndent(values, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create settings directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// Set stores one value, creating the file when absent.
func (s *Store) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value
	return s.save(values)
}

// String returns the string value under key, or "" when missing or not a
// string.
func (s *Store) String(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return ""
	}
	v, _ := values[key].(string)
	return v
}

// Bool returns the boolean value under key; missing or mistyped means false.
func (s *Store) Bool(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return false
	}
	v, _ := values[key].(bool)
	return v
}

// All returns a copy of every stored value.
func (s *Store) All() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// WorkDirectory returns the configured working folder, or "".
func (s *Store) WorkDirectory() string {
	return s.String(KeyWorkDirectory)
}

// SetWorkDirectory stores the working folder path.
func (s *Store) SetWorkDirectory(path string) error {
	return s.Set(KeyWorkDirectory, path)
}
