// Package kv is the on-device key-value mirror: JSON-serialized arrays under
// the keys "expense", "income", and "goals", persisted one file per key. It is
// a snapshot cache refreshed from the canonical store, never a second source
// of truth.
package kv

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Well-known snapshot keys.
const (
	KeyExpense = "expense"
	KeyIncome  = "income"
	KeyGoals   = "goals"
)

type Store struct {
	mu  sync.Mutex
	dir string
}

// New opens (and creates if needed) the snapshot directory.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Set marshals v and atomically replaces the key's file so readers never see
// a half-written snapshot.
func (s *Store) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal snapshot %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write snapshot %q: %w", key, err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("replace snapshot %q: %w", key, err)
	}
	return nil
}

// Get unmarshals the key's snapshot into v. A missing key is not an error;
// ok reports whether a snapshot existed.
func (s *Store) Get(key string, v any) (ok bool, err error) {
	s.mu.Lock()
	data, err := os.ReadFile(s.path(key))
	s.mu.Unlock()

	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read snapshot %q: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("unmarshal snapshot %q: %w", key, err)
	}
	return true, nil
}

// Raw returns the key's snapshot bytes as stored, for handing to clients
// without a decode/encode round trip. Missing keys return ok=false.
func (s *Store) Raw(key string) (data []byte, ok bool, err error) {
	s.mu.Lock()
	data, err = os.ReadFile(s.path(key))
	s.mu.Unlock()

	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot %q: %w", key, err)
	}
	return data, true, nil
}

// Delete removes the key's snapshot. Deleting a missing key is a no-op.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete snapshot %q: %w", key, err)
	}
	return nil
}
