// Package marks persists which sessions the user has bookmarked.
package marks

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where marks are kept unless configured otherwise.
const DefaultPath = "~/.config/agentview/marks.yaml"

// Store reads and toggles the marked state of a session.
type Store interface {
	IsMarked(sessionID string) bool
	Toggle(sessionID string) (bool, error)
}

// FileStore is a Store backed by a flat YAML map of session id to the time
// it was marked.
type FileStore struct {
	path  string
	marks map[string]string
	now   func() time.Time
}

// Open loads the store at path. A missing file is an empty store.
func Open(path string) (*FileStore, error) {
	path = expandPath(path)
	s := &FileStore{path: path, marks: map[string]string{}, now: time.Now}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read marks file: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.marks); err != nil {
		return nil, fmt.Errorf("failed to parse marks file %s: %w", path, err)
	}
	if s.marks == nil {
		s.marks = map[string]string{}
	}
	return s, nil
}

// IsMarked reports whether sessionID is marked.
func (s *FileStore) IsMarked(sessionID string) bool {
	_, ok := s.marks[sessionID]
	return ok
}

// Toggle flips the mark for sessionID, saves the file and returns the new state.
func (s *FileStore) Toggle(sessionID string) (bool, error) {
	marked := !s.IsMarked(sessionID)
	if marked {
		s.marks[sessionID] = s.now().UTC().Format(time.RFC3339)
	} else {
		delete(s.marks, sessionID)
	}
	if err := s.save(); err != nil {
		// keep memory in step with disk
		if marked {
			delete(s.marks, sessionID)
		} else {
			s.marks[sessionID] = s.now().UTC().Format(time.RFC3339)
		}
		return !marked, err
	}
	return marked, nil
}

// List returns the marked session ids in sorted order.
func (s *FileStore) List() []string {
	ids := make([]string, 0, len(s.marks))
	for id := range s.marks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *FileStore) save() error {
	data, err := yaml.Marshal(s.marks)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create marks directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write marks file: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return home + path[1:]
		}
	}
	return path
}
