package credstore

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/hnrobert/equidash/internal/datafs"
)

const defaultPerm os.FileMode = 0644

type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// Load reads the whole table under a shared lock.
func (s *Store) Load() (*Table, error) {
	b, err := datafs.ReadFile(s.path)
	if err != nil {
		return nil, s.readErr(err)
	}
	return Decode(bytes.NewReader(b))
}

// Save replaces the backing file with t.
func (s *Store) Save(t *Table) error {
	data, err := t.Bytes()
	if err != nil {
		return err
	}
	perm, err := datafs.FilePerm(s.path, defaultPerm)
	if err != nil {
		return err
	}
	if err := datafs.WriteFileAtomic(s.path, data, perm); err != nil {
		return fmt.Errorf("write credential store: %w", err)
	}
	return nil
}

// Update loads the table, applies fn and saves the result while holding the
// exclusive lock. If fn fails nothing is written and its error is returned.
func (s *Store) Update(fn func(t *Table) error) error {
	err := datafs.Exclusive(s.path, func(f *datafs.File) error {
		b, err := f.Read()
		if err != nil {
			return s.readErr(err)
		}
		t, err := Decode(bytes.NewReader(b))
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
		data, err := t.Bytes()
		if err != nil {
			return err
		}
		perm, err := datafs.FilePerm(f.Path(), defaultPerm)
		if err != nil {
			return err
		}
		if err := f.WriteAtomic(data, perm); err != nil {
			return fmt.Errorf("write credential store: %w", err)
		}
		return nil
	})
	var missing *StoreMissingError
	if err != nil && !errors.As(err, &missing) && errors.Is(err, os.ErrNotExist) {
		// the lock file could not be created: the data directory is gone
		return &StoreMissingError{Path: s.path}
	}
	return err
}

func (s *Store) readErr(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return &StoreMissingError{Path: s.path}
	}
	return fmt.Errorf("read credential store: %w", err)
}
