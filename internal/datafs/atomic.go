package datafs

import (
	"os"
	"path/filepath"
	"sync"
)

var globalMu sync.Mutex
var fileMu = map[string]*sync.RWMutex{}

func muFor(path string) *sync.RWMutex {
	globalMu.Lock()
	defer globalMu.Unlock()
	if m := fileMu[path]; m != nil {
		return m
	}
	m := &sync.RWMutex{}
	fileMu[path] = m
	return m
}

// File is a handle to a data file whose exclusive lock is already held.
type File struct {
	path string
}

func (f *File) Path() string { return f.path }

func (f *File) Read() ([]byte, error) {
	return os.ReadFile(f.path)
}

func (f *File) WriteAtomic(data []byte, perm os.FileMode) error {
	return writeAtomic(f.path, data, perm)
}

func ReadFile(path string) ([]byte, error) {
	clean, err := Clean(path)
	if err != nil {
		return nil, err
	}
	m := muFor(clean)
	m.RLock()
	defer m.RUnlock()

	unlock, err := lockFile(clean, false)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return os.ReadFile(clean)
}

// Exclusive runs fn while holding the write lock for path.
func Exclusive(path string, fn func(f *File) error) error {
	clean, err := Clean(path)
	if err != nil {
		return err
	}
	m := muFor(clean)
	m.Lock()
	defer m.Unlock()

	unlock, err := lockFile(clean, true)
	if err != nil {
		return err
	}
	defer unlock()
	return fn(&File{path: clean})
}

func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	return Exclusive(path, func(f *File) error {
		return f.WriteAtomic(data, perm)
	})
}

// writeAtomic replaces path with data. On any failure the previous content
// of path is left untouched.
func writeAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".equidash-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}
