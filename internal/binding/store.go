package binding

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// Binding holds the single group this bot instance monitors and the user
// who receives its reports. Nil means "not bound yet".
type Binding struct {
	GroupID *int64 `json:"group_id"`
	AdminID *int64 `json:"admin_id"`
}

// Store keeps the binding in memory and mirrors every mutation to a JSON
// file. Mutations are serialized behind one mutex.
type Store struct {
	path string

	mu      sync.Mutex
	current Binding
}

// Open loads the binding from path. A missing or unreadable file is not an
// error: the bot simply starts unbound.
func Open(path string) *Store {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("read binding file %s: %v, starting unbound", path, err)
		}
		return s
	}
	if err := json.Unmarshal(data, &s.current); err != nil {
		log.Printf("parse binding file %s: %v, starting unbound", path, err)
		s.current = Binding{}
	}
	return s
}

// Binding returns a copy of the current binding.
func (s *Store) Binding() Binding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// GroupID returns the bound group id, if any.
func (s *Store) GroupID() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current.GroupID == nil {
		return 0, false
	}
	return *s.current.GroupID, true
}

// AdminID returns the bound admin id, if any.
func (s *Store) AdminID() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current.AdminID == nil {
		return 0, false
	}
	return *s.current.AdminID, true
}

// SetGroupID binds the group and persists the binding.
func (s *Store) SetGroupID(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.GroupID = &id
	return s.persistLocked()
}

// SetAdminID binds the report recipient and persists the binding.
func (s *Store) SetAdminID(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.AdminID = &id
	return s.persistLocked()
}

// persistLocked writes the binding to a temp file in the target directory
// and renames it over the destination, so a crash mid-write never leaves a
// partial file behind. Caller must hold s.mu.
func (s *Store) persistLocked() error {
	data, err := json.Marshal(s.current)
	if err != nil {
		return fmt.Errorf("marshal binding: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp binding file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write binding file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close binding file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace binding file: %w", err)
	}
	return nil
}
