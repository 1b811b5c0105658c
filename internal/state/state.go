// Package state remembers where the viewer was for each export it has shown.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
)

const (
	appName       = "spex"
	stateFileName = "view_state.json"
	hashBytes     = 8192 // header plus the first rows of the table
)

// ViewState is what the viewer restores for a single export.
type ViewState struct {
	Row          int  `json:"row"`
	ShowMetadata bool `json:"show_metadata"`
}

// StateStore persists ViewState keyed by content hash.
type StateStore struct {
	path string
	data map[string]ViewState
	mu   sync.RWMutex
}

// NewStateStore creates or loads state from XDG_STATE_HOME/spex/
func NewStateStore() (*StateStore, error) {
	dir := getStateDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	store := &StateStore{
		path: filepath.Join(dir, stateFileName),
		data: make(map[string]ViewState),
	}
	if err := store.load(); err != nil {
		// corrupt state file: start over
		store.data = make(map[string]ViewState)
	}
	return store, nil
}

// getStateDir returns XDG_STATE_HOME/spex or ~/.local/state/spex
func getStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", appName)
}

// ComputeHash identifies an export by the sha256 of its first 8KB, so a
// renamed copy keeps its state.
func ComputeHash(filename string) (string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, hashBytes)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}

	hash := sha256.Sum256(buf[:n])
	return hex.EncodeToString(hash[:16]), nil
}

// Get returns the saved state, or the zero ViewState with ok false.
func (s *StateStore) Get(hash string) (ViewState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[hash]
	return v, ok
}

// Row returns the saved table row for hash, or 0.
func (s *StateStore) Row(hash string) int {
	v, _ := s.Get(hash)
	return v.Row
}

// Set saves the state for hash and writes the store to disk.
func (s *StateStore) Set(hash string, v ViewState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[hash] = v
	return s.save()
}

// Clear removes the saved state for hash.
func (s *StateStore) Clear(hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, hash)
	return s.save()
}

func (s *StateStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &s.data)
}

func (s *StateStore) save() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
