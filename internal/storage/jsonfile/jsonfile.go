// Package jsonfile appends session summaries to a single JSON array file.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/cory-johannsen/outplay/internal/game/session"
)

// Store appends to the JSON array at path. A missing or empty file reads as
// an empty array.
//
// Store is safe for concurrent use within one process.
type Store struct {
	mu   sync.Mutex
	path string
}

// New creates a Store for path. The file is not touched until Append.
//
// Precondition: path must be non-empty.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("jsonfile: path must not be empty")
	}
	return &Store{path: path}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Append adds sum to the end of the array and rewrites the file through a
// temporary sibling, so a failed write leaves the previous file intact.
//
// Postcondition: List() ends with sum, or an error is returned and the file is unchanged.
func (s *Store) Append(ctx context.Context, sum session.Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return err
	}
	all = append(all, sum)

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: encoding summaries: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("jsonfile: creating %q: %w", dir, err)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("jsonfile: creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("jsonfile: writing %q: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("jsonfile: closing %q: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("jsonfile: replacing %q: %w", s.path, err)
	}
	return nil
}

// List returns every stored summary, oldest first.
func (s *Store) List(ctx context.Context) ([]session.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *Store) read() ([]session.Summary, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("jsonfile: reading %q: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var all []session.Summary
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("jsonfile: %q is not a summary array: %w", s.path, err)
	}
	return all, nil
}
