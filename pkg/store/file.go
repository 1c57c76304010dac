package store

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/jumpingbeanltd/price-dashboard/pkg/errors"
)

// File is a Store backed by a YAML file on disk. The whole map is loaded
// at open and rewritten on every mutation; the expected population is a
// few hundred overrides at most.
type File struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// OpenFile opens or creates a file-backed store at path.
func OpenFile(path string) (*File, error) {
	f := &File{
		path:   path,
		values: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return f, nil
	}
	if err != nil {
		return nil, errors.NewConfigError("store", "reading "+path, err)
	}

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &f.values); err != nil {
			return nil, errors.WrapParse("yaml", path, err)
		}
	}
	if f.values == nil {
		f.values = make(map[string]string)
	}

	return f, nil
}

// Get returns the value for key and whether it was present.
func (f *File) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok, nil
}

// Set stores a value under key and flushes to disk.
func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	return f.flush()
}

// Delete removes key and flushes to disk.
func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[key]; !ok {
		return nil
	}
	delete(f.values, key)
	return f.flush()
}

// Keys returns all stored keys, sorted.
func (f *File) Keys() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.values))
	for k := range f.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// flush writes the whole map to disk. Caller holds the lock.
func (f *File) flush() error {
	data, err := yaml.Marshal(f.values)
	if err != nil {
		return errors.NewConfigError("store", "encoding "+f.path, err)
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.NewConfigError("store", "creating "+dir, err)
		}
	}

	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return errors.NewConfigError("store", "writing "+f.path, err)
	}
	return nil
}
