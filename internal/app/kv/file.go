package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File keeps every entry in a single JSON object on disk.
// The whole file is rewritten on each change.
type File struct {
	mu      sync.RWMutex
	path    string
	entries map[string]string
}

// NewFile opens the store at path, loading existing entries if the file exists.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("file kv backend requires a path")
	}

	f := &File{path: path, entries: make(map[string]string)}
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) load() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", f.path, err)
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &f.entries); err != nil {
		return fmt.Errorf("decode %s: %w", f.path, err)
	}
	if f.entries == nil {
		f.entries = make(map[string]string)
	}
	return nil
}

// persistLocked writes the entries to a temporary file and renames it over the target.
func (f *File) persistLocked() error {
	data, err := json.MarshalIndent(f.entries, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create kv dir: %w", err)
		}
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	return os.Rename(tmp, f.path)
}

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	v, ok := f.entries[key]
	return v, ok, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, existed := f.entries[key]
	f.entries[key] = value

	if err := f.persistLocked(); err != nil {
		if existed {
			f.entries[key] = prev
		} else {
			delete(f.entries, key)
		}
		return err
	}
	return nil
}

func (f *File) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, existed := f.entries[key]
	if !existed {
		return nil
	}
	delete(f.entries, key)

	if err := f.persistLocked(); err != nil {
		f.entries[key] = prev
		return err
	}
	return nil
}

func (f *File) Close() error { return nil }
